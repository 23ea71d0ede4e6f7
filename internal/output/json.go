package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dotcommander/topical/internal/audit"
	"github.com/dotcommander/topical/internal/types"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	quiet      bool
	indent     bool
	outputFile string
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(quiet bool, indent bool, outputFile string) *JSONFormatter {
	return &JSONFormatter{
		quiet:      quiet,
		indent:     indent,
		outputFile: outputFile,
	}
}

// JSONReport is the top-level report document
type JSONReport struct {
	Header  JSONHeader            `json:"header"`
	Summary JSONSummary           `json:"summary"`
	Results []audit.SubjectResult `json:"results"`
}

// JSONHeader identifies the tool run
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Catalog   string `json:"catalog"`
	Timestamp string `json:"timestamp"`
}

// JSONSummary carries the run totals
type JSONSummary struct {
	TotalSubjects    int    `json:"total_subjects"`
	TotalFindings    int    `json:"total_findings"`
	TotalErrors      int    `json:"total_errors"`
	TotalWarnings    int    `json:"total_warnings"`
	TotalAdvisories  int    `json:"total_advisories"`
	CriticalSubjects int    `json:"critical_subjects"`
	Duration         string `json:"duration"`
}

// Format formats the audit summary as JSON
func (f *JSONFormatter) Format(summary *audit.Summary) error {
	report := JSONReport{
		Header: JSONHeader{
			Tool:      "topical",
			Version:   "1.0.0",
			Catalog:   summary.Catalog,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Summary: JSONSummary{
			TotalSubjects:    summary.TotalSubjects,
			TotalFindings:    summary.TotalFindings,
			TotalErrors:      summary.TotalErrors,
			TotalWarnings:    summary.TotalWarnings,
			TotalAdvisories:  summary.TotalAdvisories,
			CriticalSubjects: summary.CriticalSubjects,
			Duration:         time.Since(summary.StartTime).Round(time.Millisecond).String(),
		},
		Results: summary.Results,
	}

	// Findings slices must never serialize as null
	for i := range report.Results {
		if report.Results[i].Findings == nil {
			report.Results[i].Findings = []types.Finding{}
		}
	}

	var data []byte
	var err error
	if f.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}

	if f.outputFile == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(f.outputFile, data, 0644); err != nil {
		return fmt.Errorf("error writing report file: %w", err)
	}
	if !f.quiet {
		fmt.Printf("Report written to %s\n", f.outputFile)
	}
	return nil
}
