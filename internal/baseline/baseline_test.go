package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dotcommander/topical/internal/types"
)

func sampleFindings() []types.Finding {
	return []types.Finding{
		{Subject: "pages/a.html", RuleID: "internal-links", Category: "links",
			Message: "Internal link count under cap: 200 exceeds maximum 150", Severity: types.SeverityWarning},
		{Subject: "pages/b.html", RuleID: "canonical-present", Category: "technical",
			Message: "Canonical URL present: missing", Severity: types.SeverityError},
	}
}

func TestCreateBaseline(t *testing.T) {
	findings := sampleFindings()
	b := CreateBaseline(findings)

	if b.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", b.Version)
	}
	if len(b.Fingerprints) != 2 {
		t.Errorf("Fingerprints = %d, want 2", len(b.Fingerprints))
	}
	for _, f := range findings {
		if !b.IsKnown(f) {
			t.Errorf("IsKnown(%s) = false, want true", f.RuleID)
		}
	}

	// Duplicates collapse to one fingerprint.
	dup := CreateBaseline(append(findings, findings[0]))
	if len(dup.Fingerprints) != 2 {
		t.Errorf("Fingerprints with duplicate = %d, want 2", len(dup.Fingerprints))
	}
}

// Measured values may drift without invalidating the baseline match: only
// the message shape is fingerprinted, not the numbers in it.
func TestIsKnownToleratesValueDrift(t *testing.T) {
	b := CreateBaseline(sampleFindings())

	drifted := types.Finding{Subject: "pages/a.html", RuleID: "internal-links", Category: "links",
		Message: "Internal link count under cap: 173 exceeds maximum 150"}
	if !b.IsKnown(drifted) {
		t.Error("IsKnown() = false for value-drifted finding, want true")
	}

	moved := drifted
	moved.Subject = "pages/c.html"
	if b.IsKnown(moved) {
		t.Error("IsKnown() = true for a different subject, want false")
	}
}

func TestFilter(t *testing.T) {
	findings := sampleFindings()
	b := CreateBaseline(findings[:1])

	kept, ignored := b.Filter(findings)
	if ignored != 1 {
		t.Errorf("ignored = %d, want 1", ignored)
	}
	if len(kept) != 1 || kept[0].RuleID != "canonical-present" {
		t.Errorf("kept = %v, want the canonical-present finding", kept)
	}
}

func TestSaveAndLoadBaseline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.json")

	b := CreateBaseline(sampleFindings())
	if err := b.SaveBaseline(path); err != nil {
		t.Fatalf("SaveBaseline() error = %v", err)
	}

	loaded, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("LoadBaseline() error = %v", err)
	}
	if len(loaded.Fingerprints) != len(b.Fingerprints) {
		t.Errorf("loaded fingerprints = %d, want %d", len(loaded.Fingerprints), len(b.Fingerprints))
	}
	for _, f := range sampleFindings() {
		if !loaded.IsKnown(f) {
			t.Errorf("loaded.IsKnown(%s) = false, want true", f.RuleID)
		}
	}
}

func TestLoadBaselineErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadBaseline(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadBaseline() expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBaseline(bad); err == nil {
		t.Error("LoadBaseline() expected error for malformed JSON")
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"numbers replaced", "count 42 exceeds 10", "count N exceeds N"},
		{"decimals replaced", "score 0.85 below 0.9", "score N below N"},
		{"quoted strings replaced", `slug "coffee-brewing" already in use`, `slug "*" already in use`},
		{"whitespace collapsed", "a   b\t c", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeMessage(tt.in); got != tt.want {
				t.Errorf("normalizeMessage(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
