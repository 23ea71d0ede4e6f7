// Package baseline lets a team accept the current audit findings and only
// fail on new ones.
package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dotcommander/topical/internal/types"
)

// Baseline represents a snapshot of known findings that should be ignored
type Baseline struct {
	Version      string   `json:"version"`
	CreatedAt    string   `json:"created_at"`
	Fingerprints []string `json:"fingerprints"`
	index        map[string]bool // For fast lookup
}

// CreateBaseline creates a new baseline from a list of findings
func CreateBaseline(findings []types.Finding) *Baseline {
	fingerprints := make([]string, 0, len(findings))
	index := make(map[string]bool)

	for _, f := range findings {
		fp := fingerprint(f)
		if !index[fp] {
			fingerprints = append(fingerprints, fp)
			index[fp] = true
		}
	}

	// Sort for deterministic output
	sort.Strings(fingerprints)

	return &Baseline{
		Version:      "1.0",
		Fingerprints: fingerprints,
		index:        index,
	}
}

// LoadBaseline loads a baseline from a JSON file
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse baseline file: %w", err)
	}

	// Build index for fast lookup
	b.index = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.index[fp] = true
	}

	return &b, nil
}

// SaveBaseline saves the baseline to a JSON file
func (b *Baseline) SaveBaseline(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline file: %w", err)
	}

	return nil
}

// IsKnown checks if a finding is in the baseline
func (b *Baseline) IsKnown(f types.Finding) bool {
	if b.index == nil {
		return false
	}
	return b.index[fingerprint(f)]
}

// Filter removes known findings, returning the survivors and the count of
// ignored findings.
func (b *Baseline) Filter(findings []types.Finding) ([]types.Finding, int) {
	var kept []types.Finding
	ignored := 0
	for _, f := range findings {
		if b.IsKnown(f) {
			ignored++
			continue
		}
		kept = append(kept, f)
	}
	return kept, ignored
}

// fingerprint creates a stable hash of a finding for comparison.
// Uses: subject + rule id + category + normalized message pattern.
func fingerprint(f types.Finding) string {
	// Normalize the message so measured values can drift without breaking
	// the match.
	msg := normalizeMessage(f.Message)

	data := fmt.Sprintf("%s|%s|%s|%s", f.Subject, f.RuleID, f.Category, msg)

	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// normalizeMessage normalizes finding messages to create stable patterns.
// Replaces specific values with placeholders to match similar findings.
func normalizeMessage(msg string) string {
	// Replace double-quoted strings with placeholder
	msg = regexp.MustCompile(`"[^"]+"`).ReplaceAllString(msg, `"*"`)

	// Replace numbers (including decimals) with placeholder
	msg = regexp.MustCompile(`\b\d+(\.\d+)?\b`).ReplaceAllString(msg, `N`)

	// Normalize whitespace
	msg = strings.Join(strings.Fields(msg), " ")

	return msg
}
