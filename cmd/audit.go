package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/topical/internal/audit"
	"github.com/dotcommander/topical/internal/baseline"
	"github.com/dotcommander/topical/internal/config"
	"github.com/dotcommander/topical/internal/discovery"
	"github.com/dotcommander/topical/internal/git"
	"github.com/dotcommander/topical/internal/hierarchy"
	"github.com/dotcommander/topical/internal/outputters"
	"github.com/dotcommander/topical/internal/project"
	"github.com/dotcommander/topical/internal/rules"
	"github.com/dotcommander/topical/internal/schema"
	"github.com/dotcommander/topical/internal/store"
	"github.com/dotcommander/topical/internal/types"
)

var (
	baselinePath   = ".topical-baseline.json"
	useBaseline    bool
	createBaseline bool
	changedOnly    bool
	stagedOnly     bool
)

var auditCmd = &cobra.Command{
	Use:   "audit [paths...]",
	Short: "Audit fact documents against the configured rule catalog",
	Long: `The audit command discovers fact documents (facts/**/*.yaml), evaluates
each subject against the configured rule catalog, and reports weighted
per-category scores, letter grades, and findings.

Topic map documents are schema-validated, user catalogs under catalogs/
are registered, and hub/spoke advisories from the topic store are folded
into the report.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAudit(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&baselinePath, "baseline", ".topical-baseline.json", "Baseline file path")
	auditCmd.Flags().BoolVar(&useBaseline, "use-baseline", false, "Ignore findings recorded in the baseline")
	auditCmd.Flags().BoolVar(&createBaseline, "create-baseline", false, "Record current findings as the baseline")
	auditCmd.Flags().BoolVar(&changedOnly, "changed", false, "Audit only documents with uncommitted changes")
	auditCmd.Flags().BoolVar(&stagedOnly, "staged", false, "Audit only documents staged in git")
}

func runAudit(paths []string) error {
	cfg, err := config.LoadConfig(rootPath)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if cfg.Verbose && !cfg.Quiet {
		if info, err := project.Detect(cfg.Root); err == nil {
			fmt.Printf("Workspace: %s (store=%t, git=%t, dirs=%s)\n",
				info.Root, info.HasStore, info.HasGit, strings.Join(info.Dirs, ","))
		}
	}

	validator := schema.NewValidator()
	if err := validator.LoadSchemas(); err != nil {
		return fmt.Errorf("error loading schemas: %w", err)
	}

	registry := rules.NewRegistry()

	fd := discovery.NewFileDiscovery(cfg.Root, cfg.Exclude)
	files, err := fd.DiscoverFiles()
	if err != nil {
		return fmt.Errorf("error discovering files: %w", err)
	}
	files = filterPaths(files, paths)
	files, err = filterGit(files, cfg.Root)
	if err != nil {
		return err
	}

	var subjects []audit.Subject
	var extra []types.Finding

	// Register user catalogs first so facts can reference them.
	for _, file := range files {
		if file.Type != types.DocCatalog {
			continue
		}
		findings, err := registerCatalog(registry, validator, cfg.Root, file.Path)
		if err != nil {
			return err
		}
		extra = append(extra, findings...)
	}

	for _, path := range cfg.Audit.ExtraCatalogs {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Root, path)
		}
		rel, _ := filepath.Rel(cfg.Root, path)
		findings, err := registerCatalog(registry, validator, cfg.Root, rel)
		if err != nil {
			return err
		}
		extra = append(extra, findings...)
	}

	for _, file := range files {
		abs := filepath.Join(cfg.Root, file.Path)
		switch file.Type {
		case types.DocFacts:
			subject, findings, err := loadFactsDoc(abs, file.Path)
			if err != nil {
				return err
			}
			extra = append(extra, findings...)
			if subject != nil {
				subjects = append(subjects, *subject)
			}
		case types.DocTopicMap:
			raw, err := os.ReadFile(abs)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", file.Path, err)
			}
			findings, err := validator.ValidateYAML(file.Path, raw, file.Type)
			if err != nil {
				return fmt.Errorf("error validating %s: %w", file.Path, err)
			}
			extra = append(extra, findings...)
		}
	}

	advisories, err := storeAdvisories(cfg)
	if err != nil {
		return err
	}
	extra = append(extra, advisories...)

	orchestrator, err := audit.NewOrchestrator(registry, cfg.Audit.Catalog)
	if err != nil {
		return fmt.Errorf("error creating orchestrator: %w", err)
	}
	summary, err := orchestrator.Run(subjects, extra)
	if err != nil {
		return fmt.Errorf("error running audit: %w", err)
	}

	// Baseline handling follows create-before-fail ordering.
	baselineFile := baselinePath
	if !filepath.IsAbs(baselineFile) {
		baselineFile = filepath.Join(cfg.Root, baselineFile)
	}

	var ignored int
	if useBaseline {
		if _, err := os.Stat(baselineFile); err == nil {
			b, err := baseline.LoadBaseline(baselineFile)
			if err != nil {
				if !cfg.Quiet {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load baseline: %v\n", err)
				}
			} else {
				ignored = filterSummary(summary, b)
			}
		}
	}

	outputter := outputters.NewOutputter(cfg)
	if err := outputter.Format(summary, cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}

	if createBaseline {
		b := baseline.CreateBaseline(allFindings(summary))
		b.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		if err := b.SaveBaseline(baselineFile); err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		if !cfg.Quiet {
			fmt.Printf("\nBaseline created: %s (%d findings)\n", baselineFile, len(b.Fingerprints))
		}
		return nil
	}

	if useBaseline && ignored > 0 && !cfg.Quiet {
		fmt.Printf("\n%d baseline findings ignored\n", ignored)
	}

	if summary.CriticalSubjects > 0 {
		exitFunc(1)
	}
	if cfg.FailBelow != "" && gradesBelow(summary, cfg.FailBelow) {
		exitFunc(1)
	}
	return nil
}

// filterGit narrows the file set to git-changed or git-staged documents when
// --changed or --staged is given.
func filterGit(files []discovery.File, root string) ([]discovery.File, error) {
	if !changedOnly && !stagedOnly {
		return files, nil
	}
	var absPaths []string
	var err error
	if stagedOnly {
		absPaths, err = git.StagedFiles(root)
	} else {
		absPaths, err = git.ChangedFiles(root)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing git changes: %w", err)
	}
	wanted := make(map[string]bool, len(absPaths))
	for _, p := range absPaths {
		wanted[p] = true
	}
	var kept []discovery.File
	for _, file := range files {
		if wanted[filepath.Join(root, file.Path)] {
			kept = append(kept, file)
		}
	}
	return kept, nil
}

// filterPaths keeps only files under the requested paths; empty means all.
func filterPaths(files []discovery.File, paths []string) []discovery.File {
	if len(paths) == 0 {
		return files
	}
	var kept []discovery.File
	for _, file := range files {
		for _, p := range paths {
			p = filepath.Clean(p)
			if file.Path == p || isUnder(file.Path, p) {
				kept = append(kept, file)
				break
			}
		}
	}
	return kept
}

func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && !startsWithDotDot(rel)
}

func startsWithDotDot(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// factsDoc is the on-disk shape of a facts document.
type factsDoc struct {
	Subject string         `yaml:"subject"`
	Facts   map[string]any `yaml:"facts"`
}

// loadFactsDoc parses a facts YAML document into an audit subject. A parse
// failure is reported as a finding rather than aborting the run.
func loadFactsDoc(absPath, relPath string) (*audit.Subject, []types.Finding, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading %s: %w", relPath, err)
	}
	var doc factsDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, []types.Finding{{
			Subject:  relPath,
			RuleID:   "facts-parse",
			Category: "syntax",
			Message:  fmt.Sprintf("invalid facts document: %v", err),
			Severity: types.SeverityError,
		}}, nil
	}
	name := doc.Subject
	if name == "" {
		name = relPath
	}
	facts, err := audit.ParseFacts(doc.Facts)
	if err != nil {
		return nil, []types.Finding{{
			Subject:  name,
			RuleID:   "facts-parse",
			Category: "syntax",
			Message:  err.Error(),
			Severity: types.SeverityError,
		}}, nil
	}
	return &audit.Subject{Name: name, Facts: facts}, nil, nil
}

// registerCatalog schema-validates and registers one user catalog file.
func registerCatalog(registry *rules.Registry, validator *schema.Validator, root, relPath string) ([]types.Finding, error) {
	abs := filepath.Join(root, relPath)
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", relPath, err)
	}
	findings, err := validator.ValidateYAML(relPath, raw, types.DocCatalog)
	if err != nil {
		return nil, fmt.Errorf("error validating %s: %w", relPath, err)
	}
	if len(findings) > 0 {
		return findings, nil
	}
	catalog, err := rules.ParseCatalog(raw)
	if err != nil {
		return []types.Finding{{
			Subject:  relPath,
			RuleID:   "catalog-parse",
			Category: "syntax",
			Message:  err.Error(),
			Severity: types.SeverityError,
		}}, nil
	}
	if err := registry.Register(catalog); err != nil {
		return nil, fmt.Errorf("error registering catalog %s: %w", relPath, err)
	}
	return nil, nil
}

// storeAdvisories loads the topic store, if present, and collects hub/spoke
// advisories across all maps.
func storeAdvisories(cfg *config.Config) ([]types.Finding, error) {
	path := cfg.Store.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Root, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	db, err := store.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}
	defer db.Close()

	mgr, err := db.LoadManager()
	if err != nil {
		return nil, fmt.Errorf("error loading topic maps: %w", err)
	}
	records, err := db.Maps()
	if err != nil {
		return nil, fmt.Errorf("error listing maps: %w", err)
	}
	var findings []types.Finding
	for _, record := range records {
		view, err := mgr.View(record.ID)
		if err != nil {
			return nil, err
		}
		findings = append(findings, hierarchy.Advisories(view, cfg.Hierarchy.MinSpokes)...)
	}
	return findings, nil
}

// filterSummary drops baseline-known findings from the summary in place and
// recomputes the totals. Returns the number of findings removed.
func filterSummary(summary *audit.Summary, b *baseline.Baseline) int {
	removed := 0
	summary.TotalFindings = 0
	summary.TotalErrors = 0
	summary.TotalWarnings = 0
	summary.TotalAdvisories = 0
	for i := range summary.Results {
		kept, ignored := b.Filter(summary.Results[i].Findings)
		summary.Results[i].Findings = kept
		removed += ignored
		for _, f := range kept {
			summary.TotalFindings++
			switch f.Severity {
			case types.SeverityError:
				summary.TotalErrors++
			case types.SeverityWarning:
				summary.TotalWarnings++
			case types.SeverityAdvisory:
				summary.TotalAdvisories++
			}
		}
	}
	return removed
}

// allFindings flattens every finding in the summary.
func allFindings(summary *audit.Summary) []types.Finding {
	var all []types.Finding
	for _, result := range summary.Results {
		all = append(all, result.Findings...)
	}
	return all
}

var gradeRank = map[string]int{"A": 4, "B": 3, "C": 2, "D": 1, "F": 0}

// gradesBelow reports whether any scored subject grades below the floor.
func gradesBelow(summary *audit.Summary, floor string) bool {
	want, ok := gradeRank[floor]
	if !ok {
		return false
	}
	for _, result := range summary.Results {
		if result.Score == nil || !result.Score.Scored {
			continue
		}
		if gradeRank[result.Score.Grade] < want {
			return true
		}
	}
	return false
}
