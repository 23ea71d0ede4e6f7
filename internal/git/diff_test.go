package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsDocument(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		// Topic maps
		{"topic map", "topics/coffee.yaml", true},
		{"topic map yml", "topics/coffee.yml", true},
		{"topic map nested", "topics/archive/coffee.yaml", true},

		// Facts and catalogs
		{"facts file", "facts/pages/home.yaml", true},
		{"catalog", "catalogs/local-pages.yaml", true},

		// Briefs
		{"brief", "briefs/french-press.md", true},
		{"brief nested", "briefs/drafts/espresso.md", true},

		// Irrelevant files
		{"markdown outside briefs", "topics/notes.md", false},
		{"yaml outside document dirs", "config/settings.yaml", false},
		{"readme", "README.md", false},
		{"go source", "main.go", false},
		{"json in facts", "facts/pages/home.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsDocument(tt.path)
			if result != tt.expected {
				t.Errorf("IsDocument(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestFilterDocuments(t *testing.T) {
	tmpDir := t.TempDir()

	// true means the filter should keep the file
	testFiles := map[string]bool{
		"topics/coffee.yaml":     true,
		"briefs/french-press.md": true,
		"facts/pages/home.yaml":  true,
		"README.md":              false,
		"main.go":                false,
	}

	for path := range testFiles {
		fullPath := filepath.Join(tmpDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", fullPath, err)
		}
	}

	gitOutput := `topics/coffee.yaml
briefs/french-press.md
facts/pages/home.yaml
topics/deleted.yaml
README.md
main.go`

	filtered, err := filterDocuments(gitOutput, tmpDir)
	if err != nil {
		t.Fatalf("filterDocuments failed: %v", err)
	}

	expectedCount := 0
	for _, keep := range testFiles {
		if keep {
			expectedCount++
		}
	}
	if len(filtered) != expectedCount {
		t.Errorf("got %d files, want %d", len(filtered), expectedCount)
	}

	for _, absPath := range filtered {
		relPath, err := filepath.Rel(tmpDir, absPath)
		if err != nil {
			t.Errorf("failed to compute relative path: %v", err)
			continue
		}
		relPath = filepath.ToSlash(relPath)

		keep, exists := testFiles[relPath]
		if !exists {
			t.Errorf("unexpected file in results: %s", relPath)
		} else if !keep {
			t.Errorf("file should have been filtered out: %s", relPath)
		}
	}
}

func TestIsGitRepo(t *testing.T) {
	tmpDir := t.TempDir()
	if IsGitRepo(tmpDir) {
		t.Error("IsGitRepo should return false for non-git directory")
	}

	cmd := exec.Command("git", "init")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		t.Skip("git not available, skipping git tests")
		return
	}

	if !IsGitRepo(tmpDir) {
		t.Error("IsGitRepo should return true after git init")
	}
}

func TestStagedFilesNonGitRepo(t *testing.T) {
	tmpDir := t.TempDir()

	files, err := StagedFiles(tmpDir)
	if err != nil {
		t.Fatalf("StagedFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files outside a git repo, got %v", files)
	}

	files, err = ChangedFiles(tmpDir)
	if err != nil {
		t.Fatalf("ChangedFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files outside a git repo, got %v", files)
	}
}

func TestGitIntegration(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := exec.Command("git", "init")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		t.Skip("git not available, skipping integration test")
		return
	}

	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
	} {
		c := exec.Command("git", args...)
		c.Dir = tmpDir
		_ = c.Run()
	}

	topicPath := filepath.Join(tmpDir, "topics", "coffee.yaml")
	if err := os.MkdirAll(filepath.Dir(topicPath), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(topicPath, []byte("map: coffee\n"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("# README"), 0644); err != nil {
		t.Fatalf("failed to create README: %v", err)
	}

	cmd = exec.Command("git", "add", ".")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		t.Fatalf("git add failed: %v", err)
	}

	staged, err := StagedFiles(tmpDir)
	if err != nil {
		t.Fatalf("StagedFiles failed: %v", err)
	}

	// Only the topic map counts; README.md is not a workspace document
	if len(staged) != 1 {
		t.Errorf("expected 1 staged file, got %d: %v", len(staged), staged)
	}
	if len(staged) > 0 && !strings.Contains(staged[0], "coffee.yaml") {
		t.Errorf("expected coffee.yaml in staged files, got %s", staged[0])
	}

	// Pre-first-commit, changed files fall back to everything tracked
	changed, err := ChangedFiles(tmpDir)
	if err != nil {
		t.Fatalf("ChangedFiles failed: %v", err)
	}
	if len(changed) != 1 {
		t.Errorf("expected 1 changed file, got %d: %v", len(changed), changed)
	}
}
