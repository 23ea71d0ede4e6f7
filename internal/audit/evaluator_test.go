package audit

import (
	"errors"
	"testing"

	"github.com/dotcommander/topical/internal/rules"
	"github.com/dotcommander/topical/internal/types"
)

func TestEvaluateThresholdKinds(t *testing.T) {
	tests := []struct {
		name             string
		rule             rules.Rule
		fact             Fact
		wantStatus       string
		wantContribution float64
	}{
		{
			"max pass on boundary",
			rules.Rule{ID: "r", Weight: 20, Threshold: rules.Threshold{Kind: rules.KindMax, Value: 150}},
			Number(150),
			types.StatusPass, 20,
		},
		{
			"max fail above",
			rules.Rule{ID: "r", Weight: 20, Threshold: rules.Threshold{Kind: rules.KindMax, Value: 150}},
			Number(151),
			types.StatusFail, 0,
		},
		{
			"min pass on boundary",
			rules.Rule{ID: "r", Weight: 10, Threshold: rules.Threshold{Kind: rules.KindMin, Value: 3}},
			Number(3),
			types.StatusPass, 10,
		},
		{
			"min fail below",
			rules.Rule{ID: "r", Weight: 10, Threshold: rules.Threshold{Kind: rules.KindMin, Value: 3}},
			Number(2),
			types.StatusFail, 0,
		},
		{
			"range pass inside",
			rules.Rule{ID: "r", Weight: 5, Threshold: rules.Threshold{Kind: rules.KindRange, Min: 50, Max: 60}},
			Number(55),
			types.StatusPass, 5,
		},
		{
			"range pass on lower bound",
			rules.Rule{ID: "r", Weight: 5, Threshold: rules.Threshold{Kind: rules.KindRange, Min: 50, Max: 60}},
			Number(50),
			types.StatusPass, 5,
		},
		{
			"range fail outside",
			rules.Rule{ID: "r", Weight: 5, Threshold: rules.Threshold{Kind: rules.KindRange, Min: 50, Max: 60}},
			Number(61),
			types.StatusFail, 0,
		},
		{
			"boolean pass",
			rules.Rule{ID: "r", Weight: 15, Threshold: rules.Threshold{Kind: rules.KindBoolean}},
			Bool(true),
			types.StatusPass, 15,
		},
		{
			"boolean fail",
			rules.Rule{ID: "r", Weight: 15, Threshold: rules.Threshold{Kind: rules.KindBoolean}},
			Bool(false),
			types.StatusFail, 0,
		},
		{
			"verdict pass",
			rules.Rule{ID: "r", Weight: 8, Threshold: rules.Threshold{Kind: rules.KindVerdict}},
			Verdict(VerdictPass),
			types.StatusPass, 8,
		},
		{
			"verdict partial earns half weight",
			rules.Rule{ID: "r", Weight: 8, Threshold: rules.Threshold{Kind: rules.KindVerdict}},
			Verdict(VerdictPartial),
			types.StatusPartial, 4,
		},
		{
			"verdict fail",
			rules.Rule{ID: "r", Weight: 8, Threshold: rules.Threshold{Kind: rules.KindVerdict}},
			Verdict(VerdictFail),
			types.StatusFail, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.rule, tt.fact, true)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.Contribution != tt.wantContribution {
				t.Errorf("Contribution = %g, want %g", got.Contribution, tt.wantContribution)
			}
		})
	}
}

func TestEvaluateMissingFact(t *testing.T) {
	r := rules.Rule{ID: "r", Weight: 20, Threshold: rules.Threshold{Kind: rules.KindMax, Value: 150}}

	got, err := Evaluate(r, Fact{}, false)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Status != types.StatusNotApplicable {
		t.Errorf("Status = %q, want %q", got.Status, types.StatusNotApplicable)
	}
	if got.Contribution != 0 {
		t.Errorf("Contribution = %g, want 0", got.Contribution)
	}
}

func TestEvaluateConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		rule rules.Rule
		fact Fact
	}{
		{
			"numeric threshold with bool fact",
			rules.Rule{ID: "r", Weight: 1, Threshold: rules.Threshold{Kind: rules.KindMax, Value: 1}},
			Bool(true),
		},
		{
			"boolean threshold with number fact",
			rules.Rule{ID: "r", Weight: 1, Threshold: rules.Threshold{Kind: rules.KindBoolean}},
			Number(1),
		},
		{
			"verdict threshold with number fact",
			rules.Rule{ID: "r", Weight: 1, Threshold: rules.Threshold{Kind: rules.KindVerdict}},
			Number(1),
		},
		{
			"invalid verdict value",
			rules.Rule{ID: "r", Weight: 1, Threshold: rules.Threshold{Kind: rules.KindVerdict}},
			Fact{Kind: FactVerdict, Verdict: "maybe"},
		},
		{
			"unknown threshold kind",
			rules.Rule{ID: "r", Weight: 1, Threshold: rules.Threshold{Kind: "fuzzy"}},
			Number(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.rule, tt.fact, true)
			if err == nil {
				t.Fatal("Evaluate() expected error, got nil")
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error type = %T, want *ConfigurationError", err)
			}
		})
	}
}

func TestEvaluateCriticalCarriesThrough(t *testing.T) {
	r := rules.Rule{ID: "canonical", Weight: 15, Critical: true, Threshold: rules.Threshold{Kind: rules.KindBoolean}}

	got, err := Evaluate(r, Bool(false), true)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !got.Critical {
		t.Error("Critical not carried to result")
	}
	if got.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", got.Status)
	}
}

func TestParseFact(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantKind string
		wantErr  bool
	}{
		{"bool", true, FactBool, false},
		{"int", 42, FactNumber, false},
		{"float", 1.5, FactNumber, false},
		{"verdict pass", "pass", FactVerdict, false},
		{"verdict partial", "partial", FactVerdict, false},
		{"arbitrary string", "yes", "", true},
		{"unsupported type", []string{"x"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFact(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFact(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil && got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}
