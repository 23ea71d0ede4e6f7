package audit

import (
	"fmt"

	"github.com/dotcommander/topical/internal/rules"
	"github.com/dotcommander/topical/internal/types"
)

// Result is the outcome of evaluating one rule against one fact.
type Result struct {
	RuleID       string  `json:"rule_id"`
	Category     string  `json:"category"`
	Status       string  `json:"status"`
	Contribution float64 `json:"contribution"`
	Weight       float64 `json:"weight"`
	Critical     bool    `json:"critical"`
	Message      string  `json:"message,omitempty"`
}

// ConfigurationError reports a rule/fact combination the engine cannot
// evaluate. It is surfaced immediately, never defaulted to a score.
type ConfigurationError struct {
	RuleID string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.RuleID, e.Reason)
}

// Evaluate judges one rule against one fact. The second argument reports
// whether the fact was present at all; an absent fact yields a
// not-applicable result which the aggregator excludes from both the earned
// and the possible side of its category.
func Evaluate(r rules.Rule, fact Fact, present bool) (Result, error) {
	res := Result{
		RuleID:   r.ID,
		Category: r.Category,
		Weight:   r.Weight,
		Critical: r.Critical,
	}

	if !present {
		res.Status = types.StatusNotApplicable
		return res, nil
	}

	switch r.Threshold.Kind {
	case rules.KindMax:
		n, err := numeric(r, fact)
		if err != nil {
			return Result{}, err
		}
		if n <= r.Threshold.Value {
			pass(&res)
		} else {
			fail(&res, fmt.Sprintf("%s: %g exceeds maximum %g", r.Name, n, r.Threshold.Value))
		}

	case rules.KindMin:
		n, err := numeric(r, fact)
		if err != nil {
			return Result{}, err
		}
		if n >= r.Threshold.Value {
			pass(&res)
		} else {
			fail(&res, fmt.Sprintf("%s: %g below minimum %g", r.Name, n, r.Threshold.Value))
		}

	case rules.KindRange:
		n, err := numeric(r, fact)
		if err != nil {
			return Result{}, err
		}
		if n >= r.Threshold.Min && n <= r.Threshold.Max {
			pass(&res)
		} else {
			fail(&res, fmt.Sprintf("%s: %g outside range %g-%g", r.Name, n, r.Threshold.Min, r.Threshold.Max))
		}

	case rules.KindBoolean:
		if fact.Kind != FactBool {
			return Result{}, &ConfigurationError{RuleID: r.ID, Reason: fmt.Sprintf("boolean threshold given %s fact", fact.Kind)}
		}
		if fact.Bool {
			pass(&res)
		} else {
			fail(&res, fmt.Sprintf("%s: missing", r.Name))
		}

	case rules.KindVerdict:
		if fact.Kind != FactVerdict {
			return Result{}, &ConfigurationError{RuleID: r.ID, Reason: fmt.Sprintf("verdict threshold given %s fact", fact.Kind)}
		}
		switch fact.Verdict {
		case VerdictPass:
			pass(&res)
		case VerdictPartial:
			res.Status = types.StatusPartial
			res.Contribution = r.Weight * 0.5
			res.Message = fmt.Sprintf("%s: partial", r.Name)
		case VerdictFail:
			fail(&res, fmt.Sprintf("%s: judged failing", r.Name))
		default:
			return Result{}, &ConfigurationError{RuleID: r.ID, Reason: fmt.Sprintf("invalid verdict %q", fact.Verdict)}
		}

	default:
		return Result{}, &ConfigurationError{RuleID: r.ID, Reason: fmt.Sprintf("unknown threshold kind %q", r.Threshold.Kind)}
	}

	return res, nil
}

// numeric extracts the numeric value for max/min/range thresholds.
func numeric(r rules.Rule, fact Fact) (float64, error) {
	if fact.Kind != FactNumber {
		return 0, &ConfigurationError{RuleID: r.ID, Reason: fmt.Sprintf("%s threshold given %s fact", r.Threshold.Kind, fact.Kind)}
	}
	return fact.Number, nil
}

func pass(res *Result) {
	res.Status = types.StatusPass
	res.Contribution = res.Weight
}

func fail(res *Result, msg string) {
	res.Status = types.StatusFail
	res.Contribution = 0
	res.Message = msg
}
