package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootPath     string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
	failBelow    string
	storePath    string
	catalogName  string
)

// exitFunc allows tests to intercept os.Exit
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "topical",
	Short: "Topical - audit and planning tool for topical maps",
	Long: `Topical manages topical maps (core and outer topics with enforced
structural invariants) and audits content documents against weighted
rule catalogs.

By default, topical audits the whole workspace and reports scored results.
Use the topics, brief, and rules commands for focused operations.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAudit(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "", "Workspace root directory (auto-detected if not specified)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file for reports (requires --format)")
	rootCmd.PersistentFlags().StringVarP(&failBelow, "fail-below", "", "", "Fail when any subject grades below this letter (A|B|C|D)")
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "", "", "Path to the topic map database")
	rootCmd.PersistentFlags().StringVarP(&catalogName, "catalog", "c", "", "Rule catalog for audits (page|eav|moneypage|brief or user-registered)")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("failBelow", rootCmd.PersistentFlags().Lookup("fail-below"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("audit.catalog", rootCmd.PersistentFlags().Lookup("catalog"))
}

func initConfig() {
	configPaths := []string{".topicalrc.json", ".topicalrc.yaml", ".topicalrc.yml"}
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				os.Exit(1)
			}
			break
		}
	}
}
