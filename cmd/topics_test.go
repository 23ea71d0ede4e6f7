package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/dotcommander/topical/internal/hierarchy"
)

func TestParseReassign(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"single pair", []string{"t-2=t-9"}, map[string]string{"t-2": "t-9"}, false},
		{"multiple pairs", []string{"t-2=t-9", "t-3=t-9"}, map[string]string{"t-2": "t-9", "t-3": "t-9"}, false},
		{"missing separator", []string{"t-2"}, nil, true},
		{"empty child", []string{"=t-9"}, nil, true},
		{"empty parent", []string{"t-2="}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReassign(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseReassign(%v) error = %v, wantErr %v", tt.pairs, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseReassign(%v) = %v, want %v", tt.pairs, got, tt.want)
			}
			for child, parent := range tt.want {
				if got[child] != parent {
					t.Errorf("parseReassign(%v)[%q] = %q, want %q", tt.pairs, child, got[child], parent)
				}
			}
		})
	}
}

func TestPrintTree(t *testing.T) {
	view := hierarchy.View{
		MapID:    "coffee",
		Revision: 4,
		Topics: []hierarchy.Topic{
			{ID: "c-1", Title: "Coffee Brewing", Slug: "coffee-brewing", Type: "core", Class: "informational"},
			{ID: "o-1", ParentID: "c-1", Title: "French Press", Slug: "coffee-brewing/french-press", Type: "outer"},
			{ID: "o-2", ParentID: "c-1", Title: "Aeropress", Slug: "coffee-brewing/aeropress", Type: "outer", Orphaned: true},
			{ID: "o-3", Title: "Grinder Reviews", Slug: "grinder-reviews", Type: "outer", Orphaned: true},
		},
	}

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	printTree(view)

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	output := buf.String()

	wantLines := []string{
		"coffee (revision 4)",
		"coffee-brewing [informational]",
		"  coffee-brewing/aeropress [orphaned]",
		"  coffee-brewing/french-press",
		"grinder-reviews (standalone) [orphaned]",
	}
	gotLines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	if len(gotLines) != len(wantLines) {
		t.Fatalf("printTree output = %q, want %d lines", output, len(wantLines))
	}
	for i, want := range wantLines {
		if gotLines[i] != want {
			t.Errorf("line %d = %q, want %q", i, gotLines[i], want)
		}
	}
}
