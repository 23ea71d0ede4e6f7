package audit

import (
	"math"

	"github.com/dotcommander/topical/internal/rules"
	"github.com/dotcommander/topical/internal/types"
)

// CategoryScore is the rolled-up result for one category. Score is nil when
// no rule in the category was applicable; such categories are excluded from
// the overall blend rather than counted as 0 or 100.
type CategoryScore struct {
	Score    *int    `json:"score"`
	Earned   float64 `json:"earned"`
	Possible float64 `json:"possible"`
	Share    int     `json:"share"`
}

// Score is the aggregated outcome for one subject.
type Score struct {
	Overall          int                      `json:"overall"`
	Grade            string                   `json:"grade"`
	Scored           bool                     `json:"scored"`
	Categories       map[string]CategoryScore `json:"categories"`
	CriticalFailure  bool                     `json:"critical_failure"`
	CriticalFailures []string                 `json:"critical_failures,omitempty"`
	Results          []Result                 `json:"results"`
}

// gradeThresholds maps descending score floors to letter grades. A score
// exactly on a floor takes the higher grade.
var gradeThresholds = []struct {
	floor int
	grade string
}{
	{90, "A"},
	{80, "B"},
	{70, "C"},
	{60, "D"},
}

// GradeFromScore returns the letter grade for an overall score.
func GradeFromScore(score int) string {
	for _, t := range gradeThresholds {
		if score >= t.floor {
			return t.grade
		}
	}
	return "F"
}

// Aggregate rolls rule results into per-category and overall scores using
// the catalog's category shares. Categories with no applicable rule report a
// nil score and the remaining shares are renormalized. A failed critical
// rule sets CriticalFailure independently of the numeric score.
func Aggregate(c *rules.Catalog, results []Result) (*Score, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	score := &Score{
		Categories: make(map[string]CategoryScore, len(c.Shares)),
		Results:    results,
	}

	earned := make(map[string]float64)
	possible := make(map[string]float64)
	for _, res := range results {
		if res.Critical && res.Status == types.StatusFail {
			score.CriticalFailure = true
			score.CriticalFailures = append(score.CriticalFailures, res.RuleID)
		}
		if res.Status == types.StatusNotApplicable {
			continue
		}
		earned[res.Category] += res.Contribution
		possible[res.Category] += res.Weight
	}

	var weighted, shareSum float64
	for category, share := range c.Shares {
		cs := CategoryScore{Share: share, Earned: earned[category], Possible: possible[category]}
		if cs.Possible > 0 {
			v := roundPct(cs.Earned, cs.Possible)
			cs.Score = &v
			weighted += float64(v) * float64(share)
			shareSum += float64(share)
		}
		score.Categories[category] = cs
	}

	if shareSum > 0 {
		score.Scored = true
		score.Overall = int(math.Round(weighted / shareSum))
		score.Grade = GradeFromScore(score.Overall)
	}

	return score, nil
}

// AuditSubject evaluates every rule of the catalog against the subject's
// facts and aggregates the results. Unknown fact keys are ignored; rules
// without a fact come out not-applicable.
func AuditSubject(c *rules.Catalog, facts Facts) (*Score, error) {
	results := make([]Result, 0, len(c.Rules))
	for _, r := range c.Rules {
		fact, ok := facts[r.ID]
		res, err := Evaluate(r, fact, ok)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return Aggregate(c, results)
}

func roundPct(earned, possible float64) int {
	return int(math.Round(100 * earned / possible))
}
