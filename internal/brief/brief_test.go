package brief

import (
	"testing"

	"github.com/dotcommander/topical/internal/types"
)

// A brief with only a meta description earns exactly that field's weight:
// score 10, level partial, and the gaps ordered by the weight they would
// recover with catalog order breaking ties.
func TestScoreMetaDescriptionOnly(t *testing.T) {
	b := &Brief{
		ID:      "b1",
		TopicID: "t1",
		Fields:  map[string]any{"meta-description": "A fine description."},
	}

	c, err := Score(b)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if c.Score != 10 {
		t.Errorf("Score = %d, want 10", c.Score)
	}
	if c.Level != types.LevelPartial {
		t.Errorf("Level = %q, want partial", c.Level)
	}

	wantGaps := []string{"outline", "serp-analysis", "contextual-bridge",
		"key-takeaways", "internal-links", "visuals"}
	if len(c.MissingFields) != len(wantGaps) {
		t.Fatalf("MissingFields = %d, want %d", len(c.MissingFields), len(wantGaps))
	}
	for i, id := range wantGaps {
		if c.MissingFields[i].ID != id {
			t.Errorf("MissingFields[%d] = %q, want %q", i, c.MissingFields[i].ID, id)
		}
	}
	// The heaviest gap leads.
	if c.MissingFields[0].Weight != 25 {
		t.Errorf("MissingFields[0].Weight = %g, want 25", c.MissingFields[0].Weight)
	}
}

func TestScoreNilBriefIsEmpty(t *testing.T) {
	c, err := Score(nil)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if c.Score != 0 {
		t.Errorf("Score = %d, want 0", c.Score)
	}
	if c.Level != types.LevelEmpty {
		t.Errorf("Level = %q, want empty", c.Level)
	}
	if len(c.MissingFields) != 7 {
		t.Errorf("MissingFields = %d, want all 7", len(c.MissingFields))
	}
}

func TestScoreLevels(t *testing.T) {
	all := map[string]any{
		"outline":           []string{"h2: intro"},
		"serp-analysis":     "competitor notes",
		"contextual-bridge": "bridge copy",
		"meta-description":  "desc",
		"key-takeaways":     []string{"one"},
		"internal-links":    []string{"/hub"},
		"visuals":           "diagram plan",
	}

	tests := []struct {
		name      string
		drop      []string
		wantLevel string
	}{
		{"everything filled", nil, types.LevelComplete},
		{"one light field missing", []string{"visuals"}, types.LevelComplete},
		{"outline missing", []string{"outline"}, types.LevelPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := make(map[string]any, len(all))
			for k, v := range all {
				fields[k] = v
			}
			for _, k := range tt.drop {
				delete(fields, k)
			}
			c, err := Score(&Brief{Fields: fields})
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if c.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q (score %d)", c.Level, tt.wantLevel, c.Score)
			}
		})
	}
}

func TestPresent(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"whitespace string", "   ", false},
		{"string", "x", true},
		{"empty any slice", []any{}, false},
		{"any slice", []any{1}, true},
		{"empty string slice", []string{}, false},
		{"string slice", []string{"x"}, true},
		{"empty map", map[string]any{}, false},
		{"map", map[string]any{"k": 1}, true},
		{"number", 0, true},
		{"bool false", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := present(tt.value); got != tt.want {
				t.Errorf("present(%v) = %t, want %t", tt.value, got, tt.want)
			}
		})
	}
}
