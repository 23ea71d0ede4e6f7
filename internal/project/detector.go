package project

import (
	"os"
	"path/filepath"
)

// Info contains information about the detected workspace.
// Named 'Info' instead of 'WorkspaceInfo' to avoid stuttering (project.Info).
type Info struct {
	Root     string
	HasStore bool
	HasGit   bool
	Dirs     []string
}

// workspaceMarkers are files/directories that identify a topical workspace root.
var workspaceMarkers = []string{
	".topicalrc.json",
	".topicalrc.yaml",
	".topicalrc.yml",
	"topical.db",
	"topics",
}

// FindWorkspaceRoot searches for a workspace root starting from the given
// path and climbing up the directory tree if needed.
func FindWorkspaceRoot(startPath string) (string, error) {
	// Convert to absolute path
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", err
	}

	// Climb up the directory tree
	currentDir := absPath
	for {
		if isWorkspaceRoot(currentDir) {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			// Reached filesystem root
			break
		}
		currentDir = parent
	}

	// Default to the starting directory if no workspace root found
	return absPath, nil
}

// isWorkspaceRoot determines if a directory is a workspace root
func isWorkspaceRoot(path string) bool {
	for _, marker := range workspaceMarkers {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return true
		}
	}
	return false
}

// Detect collects workspace information at the given path.
func Detect(rootPath string) (*Info, error) {
	info := &Info{Root: rootPath}

	if _, err := os.Stat(filepath.Join(rootPath, "topical.db")); err == nil {
		info.HasStore = true
	}
	if _, err := os.Stat(filepath.Join(rootPath, ".git")); err == nil {
		info.HasGit = true
	}

	for _, dir := range []string{"topics", "briefs", "facts", "catalogs"} {
		if st, err := os.Stat(filepath.Join(rootPath, dir)); err == nil && st.IsDir() {
			info.Dirs = append(info.Dirs, dir)
		}
	}

	return info, nil
}
