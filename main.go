package main

import "github.com/dotcommander/topical/cmd"

func main() {
	cmd.Execute()
}
