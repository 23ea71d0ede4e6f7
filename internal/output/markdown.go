package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/topical/internal/audit"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	quiet      bool
	verbose    bool
	outputFile string
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(quiet, verbose bool, outputFile string) *MarkdownFormatter {
	return &MarkdownFormatter{
		quiet:      quiet,
		verbose:    verbose,
		outputFile: outputFile,
	}
}

// Format formats the audit summary as Markdown
func (f *MarkdownFormatter) Format(summary *audit.Summary) error {
	var builder strings.Builder

	// Header
	builder.WriteString("# Topical Audit Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("**Catalog:** %s\n\n", summary.Catalog))
	builder.WriteString(fmt.Sprintf("**Duration:** %v\n\n", time.Since(summary.StartTime).Round(time.Millisecond)))
	builder.WriteString(strings.Repeat("-", 50) + "\n\n")

	// Summary Table
	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Metric | Count |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| Subjects Audited | %d |\n", summary.TotalSubjects))
	builder.WriteString(fmt.Sprintf("| Findings | %d |\n", summary.TotalFindings))
	builder.WriteString(fmt.Sprintf("| Errors | %d |\n", summary.TotalErrors))
	builder.WriteString(fmt.Sprintf("| Warnings | %d |\n", summary.TotalWarnings))
	builder.WriteString(fmt.Sprintf("| Advisories | %d |\n", summary.TotalAdvisories))
	builder.WriteString(fmt.Sprintf("| Critical Subjects | %d |\n", summary.CriticalSubjects))
	builder.WriteString("\n")

	// Detailed Results
	builder.WriteString("## Results\n\n")

	if len(summary.Results) == 0 {
		builder.WriteString("*No subjects found to audit.*\n")
	} else {
		for _, result := range summary.Results {
			f.writeSubject(&builder, result)
		}
	}

	content := builder.String()
	if f.outputFile == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(f.outputFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("error writing report file: %w", err)
	}
	if !f.quiet {
		fmt.Printf("Report written to %s\n", f.outputFile)
	}
	return nil
}

// writeSubject writes one subject's section
func (f *MarkdownFormatter) writeSubject(builder *strings.Builder, result audit.SubjectResult) {
	builder.WriteString(fmt.Sprintf("### %s\n\n", result.Subject))

	if result.Score != nil && result.Score.Scored {
		builder.WriteString(fmt.Sprintf("**Score:** %d (%s)", result.Score.Overall, result.Score.Grade))
		if result.Score.CriticalFailure {
			builder.WriteString(" — **CRITICAL FAILURE**")
		}
		builder.WriteString("\n\n")

		categories := make([]string, 0, len(result.Score.Categories))
		for category := range result.Score.Categories {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		builder.WriteString("| Category | Score | Share |\n")
		builder.WriteString("|----------|-------|-------|\n")
		for _, category := range categories {
			cs := result.Score.Categories[category]
			if cs.Score == nil {
				builder.WriteString(fmt.Sprintf("| %s | n/a | %d%% |\n", category, cs.Share))
				continue
			}
			builder.WriteString(fmt.Sprintf("| %s | %d | %d%% |\n", category, *cs.Score, cs.Share))
		}
		builder.WriteString("\n")
	}

	if len(result.Findings) == 0 {
		builder.WriteString("No findings.\n\n")
		return
	}
	for _, finding := range result.Findings {
		builder.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", finding.RuleID, finding.Severity, finding.Message))
	}
	builder.WriteString("\n")
}
