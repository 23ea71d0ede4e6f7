package output

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/topical/internal/audit"
	"github.com/dotcommander/topical/internal/types"
)

// ConsoleFormatter formats audit summaries for console display
type ConsoleFormatter struct {
	quiet     bool
	verbose   bool
	colorize  bool
	startTime time.Time
}

// NewConsoleFormatter creates a new ConsoleFormatter
func NewConsoleFormatter(quiet, verbose bool) *ConsoleFormatter {
	return &ConsoleFormatter{
		quiet:     quiet,
		verbose:   verbose,
		colorize:  true,
		startTime: time.Now(),
	}
}

// Format formats the audit summary for console output
func (f *ConsoleFormatter) Format(summary *audit.Summary) error {
	if f.quiet {
		// Only the exit code matters in quiet mode
		return nil
	}

	f.printSubjectResults(summary)
	f.printSummary(summary)
	f.printConclusion(summary)

	return nil
}

// printSubjectResults prints the per-subject scores and findings
func (f *ConsoleFormatter) printSubjectResults(summary *audit.Summary) {
	for _, result := range summary.Results {
		hasFindings := len(result.Findings) > 0
		if !hasFindings && !f.verbose {
			continue
		}

		status := "✓"
		if result.Score != nil && result.Score.CriticalFailure {
			status = "✗"
		} else if hasFindings {
			status = "⚠"
		}

		var subjectStyle lipgloss.Style
		if f.colorize {
			switch {
			case result.Score != nil && result.Score.CriticalFailure:
				subjectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
			case hasFindings:
				subjectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
			default:
				subjectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
			}
		}

		fmt.Printf("%s %s%s\n", subjectStyle.Render(status), result.Subject, f.gradeBadge(result.Score))

		if f.verbose && result.Score != nil {
			f.printCategories(result.Score)
		}
		for _, finding := range result.Findings {
			f.printFinding(finding)
		}
	}
}

// gradeBadge renders " [87 B]" after the subject, plus the critical flag.
func (f *ConsoleFormatter) gradeBadge(score *audit.Score) string {
	if score == nil || !score.Scored {
		return ""
	}
	badge := fmt.Sprintf(" [%d %s]", score.Overall, score.Grade)
	if score.CriticalFailure {
		badge += " CRITICAL"
	}
	if !f.colorize {
		return badge
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	if score.CriticalFailure || score.Grade == "F" {
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	} else if score.Grade == "C" || score.Grade == "D" {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	}
	return style.Render(badge)
}

// printCategories prints the per-category breakdown
func (f *ConsoleFormatter) printCategories(score *audit.Score) {
	categories := make([]string, 0, len(score.Categories))
	for category := range score.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		cs := score.Categories[category]
		if cs.Score == nil {
			fmt.Printf("    %s: n/a (no applicable rules)\n", category)
			continue
		}
		fmt.Printf("    %s: %d (%.0f/%.0f, share %d%%)\n", category, *cs.Score, cs.Earned, cs.Possible, cs.Share)
	}
}

// printFinding prints a finding with severity styling
func (f *ConsoleFormatter) printFinding(finding types.Finding) {
	var style lipgloss.Style
	if f.colorize {
		switch finding.Severity {
		case types.SeverityError:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
		case types.SeverityWarning:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
		default:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("7")) // gray
		}
	}

	prefix := "    "
	switch finding.Severity {
	case types.SeverityError:
		prefix = "    ✘ "
	case types.SeverityWarning:
		prefix = "    ⚠ "
	case types.SeverityAdvisory:
		prefix = "    · "
	}

	fmt.Printf("%s%s: %s\n", prefix, style.Render(finding.RuleID), finding.Message)
}

// printSummary prints the summary statistics
func (f *ConsoleFormatter) printSummary(summary *audit.Summary) {
	if summary.TotalFindings == 0 {
		return
	}

	duration := time.Since(f.startTime)
	fmt.Printf("\n%d subjects, %d errors, %d warnings, %d advisories (%v)\n",
		summary.TotalSubjects,
		summary.TotalErrors, summary.TotalWarnings, summary.TotalAdvisories,
		duration.Round(time.Millisecond))
}

// printConclusion prints the conclusion message
func (f *ConsoleFormatter) printConclusion(summary *audit.Summary) {
	if len(summary.Results) > 0 {
		fmt.Println()
	}

	if summary.TotalFindings == 0 {
		if f.colorize {
			style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
			fmt.Printf("%s\n", style.Render("✓ All passed"))
		} else {
			fmt.Println("✓ All passed")
		}
	} else if summary.CriticalSubjects > 0 {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
		msg := fmt.Sprintf("✗ %d subject(s) with critical failures", summary.CriticalSubjects)
		if f.colorize {
			msg = style.Render(msg)
		}
		fmt.Println(msg)
	}
}
