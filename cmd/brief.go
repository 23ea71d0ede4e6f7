package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/topical/internal/brief"
	"github.com/dotcommander/topical/internal/config"
	"github.com/dotcommander/topical/internal/discovery"
	"github.com/dotcommander/topical/internal/format"
	"github.com/dotcommander/topical/internal/frontend"
	"github.com/dotcommander/topical/internal/types"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Work with content briefs",
}

var briefScoreCmd = &cobra.Command{
	Use:   "score [paths...]",
	Short: "Score brief documents for completeness",
	Long: `The score command reads brief markdown documents (briefs/**/*.md), whose
YAML frontmatter carries the tracked brief fields, and reports a weighted
completeness score, a level (complete|partial|empty), and the missing
fields ordered by the weight they would recover.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBriefScore(args)
	},
}

var (
	fmtWrite bool
	fmtDiff  bool
)

var briefFmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Canonicalize brief document formatting",
	Long: `The fmt command rewrites brief frontmatter into canonical field order
(identity fields first, then the tracked completeness fields) and
normalizes whitespace. Without --write it only reports which files would
change; with --diff it prints the changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBriefFmt(args)
	},
}

func init() {
	rootCmd.AddCommand(briefCmd)
	briefCmd.AddCommand(briefScoreCmd, briefFmtCmd)

	briefFmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write formatted content back to the files")
	briefFmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "Print diffs instead of file names")
}

func runBriefFmt(paths []string) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	briefPaths, err := resolveBriefPaths(cfg, paths)
	if err != nil {
		return err
	}

	changed := 0
	for _, path := range briefPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", path, err)
		}
		formatted, err := format.FormatBrief(string(raw))
		if err != nil {
			return fmt.Errorf("error formatting %s: %w", path, err)
		}
		if formatted == string(raw) {
			continue
		}
		changed++
		switch {
		case fmtWrite:
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("error writing %s: %w", path, err)
			}
			if !cfg.Quiet {
				fmt.Printf("formatted %s\n", path)
			}
		case fmtDiff:
			fmt.Print(format.Diff(string(raw), formatted, path))
		default:
			fmt.Println(path)
		}
	}
	if !fmtWrite && changed > 0 {
		exitFunc(1)
	}
	return nil
}

func resolveBriefPaths(cfg *config.Config, paths []string) ([]string, error) {
	if len(paths) > 0 {
		return paths, nil
	}
	fd := discovery.NewFileDiscovery(cfg.Root, cfg.Exclude)
	files, err := fd.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("error discovering files: %w", err)
	}
	var briefPaths []string
	for _, file := range files {
		if file.Type == types.DocBrief {
			briefPaths = append(briefPaths, filepath.Join(cfg.Root, file.Path))
		}
	}
	return briefPaths, nil
}

func runBriefScore(paths []string) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	briefPaths, err := resolveBriefPaths(cfg, paths)
	if err != nil {
		return err
	}
	if len(briefPaths) == 0 {
		if !cfg.Quiet {
			fmt.Println("No brief documents found.")
		}
		return nil
	}

	incomplete := 0
	for _, path := range briefPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("error reading %s: %w", path, err)
		}
		b, err := frontend.ParseBrief(string(raw))
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", path, err)
		}
		completeness, err := brief.Score(b)
		if err != nil {
			return fmt.Errorf("error scoring %s: %w", path, err)
		}
		if completeness.Level != types.LevelComplete {
			incomplete++
		}
		printCompleteness(path, completeness, cfg.Verbose)
	}

	if !cfg.Quiet && len(briefPaths) > 1 {
		fmt.Printf("\n%d briefs scored, %d incomplete\n", len(briefPaths), incomplete)
	}
	return nil
}

func printCompleteness(path string, c brief.Completeness, verbose bool) {
	fmt.Printf("%s: %d (%s)\n", path, c.Score, c.Level)
	if len(c.MissingFields) == 0 {
		return
	}
	if verbose {
		for _, gap := range c.MissingFields {
			fmt.Printf("  missing %s (%s, weight %.0f)\n", gap.ID, gap.Name, gap.Weight)
		}
		return
	}
	ids := make([]string, len(c.MissingFields))
	for i, gap := range c.MissingFields {
		ids[i] = gap.ID
	}
	fmt.Printf("  missing: %s\n", strings.Join(ids, ", "))
}
