// Package audit implements the weighted rule evaluation and score
// aggregation engine. Evaluation is pure: no I/O, no shared mutable state,
// safe to run across any number of subjects concurrently.
package audit

import "fmt"

// Fact kinds. A fact is the measured input a rule is judged against.
const (
	FactNumber  = "number"
	FactBool    = "bool"
	FactVerdict = "verdict"
)

// Verdict values for externally judged rules. The judgment itself is made
// outside the engine (typically by an AI reviewer) and arrives here as an
// already-decided value; the engine only blends it.
const (
	VerdictPass    = "pass"
	VerdictPartial = "partial"
	VerdictFail    = "fail"
)

// Fact is a closed tagged union: a scalar measurement, a boolean, or an
// externally judged verdict.
type Fact struct {
	Kind    string
	Number  float64
	Bool    bool
	Verdict string
}

// Number returns a numeric fact.
func Number(v float64) Fact {
	return Fact{Kind: FactNumber, Number: v}
}

// Bool returns a boolean fact.
func Bool(v bool) Fact {
	return Fact{Kind: FactBool, Bool: v}
}

// Verdict returns an externally judged fact.
func Verdict(v string) Fact {
	return Fact{Kind: FactVerdict, Verdict: v}
}

// Facts maps rule ids to their measured facts. A rule whose id is absent is
// not applicable to the subject.
type Facts map[string]Fact

// ParseFact converts a loosely typed value (as decoded from a YAML or JSON
// fact document) into a Fact. Strings must be verdict values.
func ParseFact(v any) (Fact, error) {
	switch x := v.(type) {
	case bool:
		return Bool(x), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case float64:
		return Number(x), nil
	case string:
		switch x {
		case VerdictPass, VerdictPartial, VerdictFail:
			return Verdict(x), nil
		}
		return Fact{}, fmt.Errorf("invalid verdict %q: want pass, partial or fail", x)
	default:
		return Fact{}, fmt.Errorf("unsupported fact value %v (%T)", v, v)
	}
}

// ParseFacts converts a decoded fact document into Facts.
func ParseFacts(raw map[string]any) (Facts, error) {
	facts := make(Facts, len(raw))
	for key, v := range raw {
		f, err := ParseFact(v)
		if err != nil {
			return nil, fmt.Errorf("fact %q: %w", key, err)
		}
		facts[key] = f
	}
	return facts, nil
}
