// Package brief scores content briefs for completeness. It is a
// specialization of the generic audit engine: every tracked field maps to a
// boolean rule in the brief catalog, with the fact "field is non-empty".
package brief

import (
	"sort"
	"strings"

	"github.com/dotcommander/topical/internal/audit"
	"github.com/dotcommander/topical/internal/rules"
	"github.com/dotcommander/topical/internal/types"
)

// Brief is a content brief. Fields maps tracked field ids (the rule ids of
// the brief catalog) to their values; any field may be absent or empty.
type Brief struct {
	ID      string         `json:"id" yaml:"id"`
	TopicID string         `json:"topic_id" yaml:"topic_id"`
	Fields  map[string]any `json:"fields" yaml:"fields"`
}

// FieldGap names one missing field, carrying its weight so callers can
// prioritize repairs.
type FieldGap struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Completeness is the three-level completeness result for a brief.
type Completeness struct {
	Score         int        `json:"score"`
	Level         string     `json:"level"`
	MissingFields []FieldGap `json:"missing_fields"`
}

// Score computes weighted completeness for a brief. A nil brief means "no
// brief exists" and is reported as empty with every field missing.
// MissingFields is ordered by descending weight (most impactful gaps first);
// equally weighted fields keep catalog order.
func Score(b *Brief) (Completeness, error) {
	catalog, _ := rules.Builtin(rules.CatalogBrief)

	facts := make(audit.Facts, len(catalog.Rules))
	for _, r := range catalog.Rules {
		var v any
		if b != nil {
			v = b.Fields[r.ID]
		}
		facts[r.ID] = audit.Bool(present(v))
	}

	score, err := audit.AuditSubject(catalog, facts)
	if err != nil {
		return Completeness{}, err
	}

	var missing []FieldGap
	for _, res := range score.Results {
		if res.Status != types.StatusFail {
			continue
		}
		r, _ := catalog.RuleByID(res.RuleID)
		missing = append(missing, FieldGap{ID: r.ID, Name: r.Name, Weight: r.Weight})
	}
	sort.SliceStable(missing, func(i, j int) bool { return missing[i].Weight > missing[j].Weight })

	c := Completeness{Score: score.Overall, MissingFields: missing}
	switch {
	case c.Score >= 90:
		c.Level = types.LevelComplete
	case c.Score > 0:
		c.Level = types.LevelPartial
	default:
		c.Level = types.LevelEmpty
	}
	return c, nil
}

// present reports whether a field value counts as filled: non-empty strings,
// non-empty slices and maps. Everything else non-nil counts as filled.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case []any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
