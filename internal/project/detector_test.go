package project

import (
	"os"
	"path/filepath"
	"testing"
)

// TestFindWorkspaceRoot tests workspace root detection climbing up the tree
func TestFindWorkspaceRoot(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (string, string) // returns (startPath, expectedRoot)
	}{
		{
			name: "finds root with config file",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				if err := os.WriteFile(filepath.Join(tmpDir, ".topicalrc.yaml"), []byte("format: console\n"), 0644); err != nil {
					t.Fatalf("failed to create config: %v", err)
				}
				subDir := filepath.Join(tmpDir, "briefs", "drafts")
				if err := os.MkdirAll(subDir, 0755); err != nil {
					t.Fatalf("failed to create subdirectory: %v", err)
				}
				return subDir, tmpDir
			},
		},
		{
			name: "finds root with store file",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				if err := os.WriteFile(filepath.Join(tmpDir, "topical.db"), []byte{}, 0644); err != nil {
					t.Fatalf("failed to create store: %v", err)
				}
				subDir := filepath.Join(tmpDir, "nested", "deep")
				if err := os.MkdirAll(subDir, 0755); err != nil {
					t.Fatalf("failed to create subdirectory: %v", err)
				}
				return subDir, tmpDir
			},
		},
		{
			name: "finds root with topics directory",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				if err := os.Mkdir(filepath.Join(tmpDir, "topics"), 0755); err != nil {
					t.Fatalf("failed to create topics dir: %v", err)
				}
				subDir := filepath.Join(tmpDir, "facts")
				if err := os.MkdirAll(subDir, 0755); err != nil {
					t.Fatalf("failed to create subdirectory: %v", err)
				}
				return subDir, tmpDir
			},
		},
		{
			name: "no markers - returns start path",
			setupFunc: func(t *testing.T) (string, string) {
				tmpDir := t.TempDir()
				subDir := filepath.Join(tmpDir, "no-markers")
				if err := os.MkdirAll(subDir, 0755); err != nil {
					t.Fatalf("failed to create subdirectory: %v", err)
				}
				return subDir, subDir
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			startPath, expectedRoot := tt.setupFunc(t)

			root, err := FindWorkspaceRoot(startPath)
			if err != nil {
				t.Fatalf("FindWorkspaceRoot() error = %v", err)
			}
			if root != expectedRoot {
				t.Errorf("FindWorkspaceRoot() = %q, want %q", root, expectedRoot)
			}
		})
	}
}

func TestDetect(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "topical.db"), []byte{}, 0644); err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	for _, dir := range []string{"topics", "briefs"} {
		if err := os.Mkdir(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	info, err := Detect(tmpDir)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.Root != tmpDir {
		t.Errorf("Root = %q, want %q", info.Root, tmpDir)
	}
	if !info.HasStore {
		t.Error("HasStore = false, want true")
	}
	if info.HasGit {
		t.Error("HasGit = true, want false")
	}
	if len(info.Dirs) != 2 {
		t.Errorf("Dirs = %v, want [topics briefs]", info.Dirs)
	}
}

func TestDetectEmptyWorkspace(t *testing.T) {
	tmpDir := t.TempDir()

	info, err := Detect(tmpDir)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if info.HasStore || info.HasGit || len(info.Dirs) != 0 {
		t.Errorf("expected empty info, got %+v", info)
	}
}
