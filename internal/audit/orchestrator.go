package audit

import (
	"fmt"
	"time"

	"github.com/dotcommander/topical/internal/rules"
	"github.com/dotcommander/topical/internal/types"
)

// Subject is one thing to audit: a named bundle of already-extracted facts.
type Subject struct {
	Name  string
	Facts Facts
}

// SubjectResult holds one subject's score and the findings derived from its
// failed rules.
type SubjectResult struct {
	Subject  string          `json:"subject"`
	Score    *Score          `json:"score"`
	Findings []types.Finding `json:"findings"`
}

// Summary accumulates an audit run across subjects.
type Summary struct {
	Catalog          string          `json:"catalog"`
	StartTime        time.Time       `json:"start_time"`
	TotalSubjects    int             `json:"total_subjects"`
	TotalFindings    int             `json:"total_findings"`
	TotalErrors      int             `json:"total_errors"`
	TotalWarnings    int             `json:"total_warnings"`
	TotalAdvisories  int             `json:"total_advisories"`
	CriticalSubjects int             `json:"critical_subjects"`
	Results          []SubjectResult `json:"results"`
}

// Orchestrator runs one catalog over a batch of subjects and accumulates a
// summary. It holds no mutable state between runs.
type Orchestrator struct {
	registry *rules.Registry
	catalog  string
}

// NewOrchestrator returns an orchestrator for a named catalog.
func NewOrchestrator(registry *rules.Registry, catalog string) (*Orchestrator, error) {
	if _, ok := registry.Catalog(catalog); !ok {
		return nil, &rules.ConfigError{Catalog: catalog, Reason: "unknown catalog"}
	}
	return &Orchestrator{registry: registry, catalog: catalog}, nil
}

// Run audits every subject and returns the accumulated summary. Advisory
// findings supplied by the caller (for example hub/spoke warnings from the
// hierarchy) are appended to the matching subject's findings.
func (o *Orchestrator) Run(subjects []Subject, extra []types.Finding) (*Summary, error) {
	catalog, _ := o.registry.Catalog(o.catalog)

	summary := &Summary{Catalog: o.catalog, StartTime: time.Now()}
	byName := make(map[string]int, len(subjects))

	for _, s := range subjects {
		score, err := AuditSubject(catalog, s.Facts)
		if err != nil {
			return nil, fmt.Errorf("auditing %q: %w", s.Name, err)
		}
		result := SubjectResult{
			Subject:  s.Name,
			Score:    score,
			Findings: Findings(s.Name, catalog, score),
		}
		byName[s.Name] = len(summary.Results)
		summary.Results = append(summary.Results, result)
		if score.CriticalFailure {
			summary.CriticalSubjects++
		}
	}

	for _, f := range extra {
		if i, ok := byName[f.Subject]; ok {
			summary.Results[i].Findings = append(summary.Results[i].Findings, f)
		} else {
			summary.Results = append(summary.Results, SubjectResult{Subject: f.Subject, Findings: []types.Finding{f}})
		}
	}

	summary.TotalSubjects = len(subjects)
	for _, r := range summary.Results {
		for _, f := range r.Findings {
			summary.TotalFindings++
			switch f.Severity {
			case types.SeverityError:
				summary.TotalErrors++
			case types.SeverityWarning:
				summary.TotalWarnings++
			default:
				summary.TotalAdvisories++
			}
		}
	}
	return summary, nil
}

// Findings converts a score's failed and partial rules into findings.
func Findings(subject string, catalog *rules.Catalog, score *Score) []types.Finding {
	var findings []types.Finding
	for _, res := range score.Results {
		if res.Status != types.StatusFail && res.Status != types.StatusPartial {
			continue
		}
		r, _ := catalog.RuleByID(res.RuleID)
		severity := r.Severity
		if severity == "" {
			severity = types.SeverityWarning
		}
		findings = append(findings, types.Finding{
			Subject:  subject,
			RuleID:   res.RuleID,
			Category: res.Category,
			Message:  res.Message,
			Severity: severity,
		})
	}
	return findings
}
