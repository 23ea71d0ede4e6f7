package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dotcommander/topical/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect rule catalogs",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rule catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := rules.NewRegistry()
		for _, name := range registry.Names() {
			catalog, _ := registry.Catalog(name)
			fmt.Printf("%-12s %d categories, %d rules\n", name, len(catalog.Shares), len(catalog.Rules))
		}
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <catalog>",
	Short: "Show the rules of one catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := rules.NewRegistry()
		catalog, ok := registry.Catalog(args[0])
		if !ok {
			return fmt.Errorf("unknown catalog: %s", args[0])
		}
		printCatalog(catalog)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesShowCmd)
}

func printCatalog(catalog *rules.Catalog) {
	fmt.Printf("%s\n\n", catalog.Name)
	for _, category := range catalog.Categories() {
		fmt.Printf("%s (%d%% of overall)\n", category, catalog.Shares[category])
		categoryRules := catalog.RulesByCategory(category)
		sort.Slice(categoryRules, func(i, j int) bool { return categoryRules[i].ID < categoryRules[j].ID })
		for _, r := range categoryRules {
			critical := ""
			if r.Critical {
				critical = " CRITICAL"
			}
			fmt.Printf("  %-28s %-8s w%-5.1f %s%s\n", r.ID, r.Threshold.Kind, r.Weight, r.Severity, critical)
		}
		fmt.Println()
	}
}
