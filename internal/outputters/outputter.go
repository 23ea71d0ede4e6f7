package outputters

import (
	"fmt"
	"time"

	"github.com/dotcommander/topical/internal/audit"
	"github.com/dotcommander/topical/internal/config"
	"github.com/dotcommander/topical/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
}

// NewOutputter creates a new Outputter
func NewOutputter(config *config.Config) *Outputter {
	return &Outputter{
		config: config,
	}
}

// Format formats the audit summary using the configured format
func (o *Outputter) Format(summary *audit.Summary, format string) error {
	if summary.StartTime.IsZero() {
		summary.StartTime = time.Now()
	}

	switch format {
	case "console":
		formatter := output.NewConsoleFormatter(o.config.Quiet, o.config.Verbose)
		return formatter.Format(summary)
	case "json":
		formatter := output.NewJSONFormatter(o.config.Quiet, true, o.config.Output)
		return formatter.Format(summary)
	case "markdown":
		formatter := output.NewMarkdownFormatter(o.config.Quiet, o.config.Verbose, o.config.Output)
		return formatter.Format(summary)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
