// Package rules provides the static catalogs of weighted audit rules and the
// lookup surface over them. Catalogs are immutable configuration: loaded once,
// never edited at runtime.
package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Threshold kinds. A rule's threshold decides how its fact is judged.
const (
	KindMax     = "max"     // fact <= Value passes
	KindMin     = "min"     // fact >= Value passes
	KindRange   = "range"   // Min <= fact <= Max passes
	KindBoolean = "boolean" // truthy fact passes
	KindVerdict = "verdict" // externally judged pass/partial/fail
)

// Threshold defines how a rule's fact is evaluated.
type Threshold struct {
	Kind  string  `yaml:"kind" json:"kind"`
	Value float64 `yaml:"value,omitempty" json:"value,omitempty"`
	Min   float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Rule is a single weighted audit criterion.
type Rule struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Category  string    `yaml:"category" json:"category"`
	Severity  string    `yaml:"severity" json:"severity"`
	Weight    float64   `yaml:"weight" json:"weight"`
	Threshold Threshold `yaml:"threshold" json:"threshold"`
	Critical  bool      `yaml:"critical,omitempty" json:"critical,omitempty"`
}

// Catalog is an ordered rule library plus the weight share each category
// contributes to the overall score. Shares are percentages and must sum to 100.
type Catalog struct {
	Name   string         `yaml:"name" json:"name"`
	Shares map[string]int `yaml:"shares" json:"shares"`
	Rules  []Rule         `yaml:"rules" json:"rules"`
}

// RuleByID returns the rule with the given id.
func (c *Catalog) RuleByID(id string) (Rule, bool) {
	for _, r := range c.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// RulesByCategory returns the rules of one category in catalog order.
func (c *Catalog) RulesByCategory(category string) []Rule {
	var out []Rule
	for _, r := range c.Rules {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns the category names in first-appearance order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.Rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}

// TotalWeight returns the sum of rule weights within a category. Rules in a
// category are additive: this is the maximum raw score when every rule passes.
func (c *Catalog) TotalWeight(category string) float64 {
	var total float64
	for _, r := range c.Rules {
		if r.Category == category {
			total += r.Weight
		}
	}
	return total
}

// ConfigError reports a malformed catalog. Configuration problems are surfaced
// immediately and never defaulted to a numeric score.
type ConfigError struct {
	Catalog string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("catalog %q: %s", e.Catalog, e.Reason)
}

// knownKinds lists the threshold kinds the evaluator understands.
var knownKinds = map[string]bool{
	KindMax:     true,
	KindMin:     true,
	KindRange:   true,
	KindBoolean: true,
	KindVerdict: true,
}

// Validate checks catalog consistency: shares sum to 100, every category
// carrying a share has at least one rule, rule ids are unique, threshold
// kinds are known, weights are positive.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return &ConfigError{Catalog: "(unnamed)", Reason: "catalog name is required"}
	}

	shareSum := 0
	for _, share := range c.Shares {
		shareSum += share
	}
	if shareSum != 100 {
		return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("category shares sum to %d, want 100", shareSum)}
	}

	ruled := make(map[string]bool)
	ids := make(map[string]bool)
	for _, r := range c.Rules {
		if r.ID == "" {
			return &ConfigError{Catalog: c.Name, Reason: "rule with empty id"}
		}
		if ids[r.ID] {
			return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("duplicate rule id %q", r.ID)}
		}
		ids[r.ID] = true
		if !knownKinds[r.Threshold.Kind] {
			return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("rule %q: unknown threshold kind %q", r.ID, r.Threshold.Kind)}
		}
		if r.Weight <= 0 {
			return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("rule %q: weight must be positive", r.ID)}
		}
		if r.Threshold.Kind == KindRange && r.Threshold.Min > r.Threshold.Max {
			return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("rule %q: range min %g exceeds max %g", r.ID, r.Threshold.Min, r.Threshold.Max)}
		}
		if _, ok := c.Shares[r.Category]; !ok {
			return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("rule %q: category %q has no weight share", r.ID, r.Category)}
		}
		ruled[r.Category] = true
	}

	var empty []string
	for category, share := range c.Shares {
		if share > 0 && !ruled[category] {
			empty = append(empty, category)
		}
	}
	if len(empty) > 0 {
		sort.Strings(empty)
		return &ConfigError{Catalog: c.Name, Reason: fmt.Sprintf("categories with a weight share but no rules: %s", strings.Join(empty, ", "))}
	}

	return nil
}
