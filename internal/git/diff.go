package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// StagedFiles returns absolute paths of staged workspace documents.
// Returns an empty slice if not in a git repository.
func StagedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}
	cmd := exec.Command("git", "diff", "--name-only", "--staged")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff --staged failed: %w: %s", err, output)
	}
	return filterDocuments(string(output), rootPath)
}

// ChangedFiles returns absolute paths of all uncommitted workspace documents
// (staged + unstaged). Returns an empty slice if not in a git repository.
func ChangedFiles(rootPath string) ([]string, error) {
	if !IsGitRepo(rootPath) {
		return []string{}, nil
	}

	checkCmd := exec.Command("git", "rev-parse", "HEAD")
	checkCmd.Dir = rootPath
	if err := checkCmd.Run(); err != nil {
		// No commits yet, fall back to all tracked files.
		cmd := exec.Command("git", "ls-files")
		cmd.Dir = rootPath
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("git ls-files failed: %w: %s", err, output)
		}
		return filterDocuments(string(output), rootPath)
	}

	cmd := exec.Command("git", "diff", "--name-only", "HEAD")
	cmd.Dir = rootPath
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git diff HEAD failed: %w: %s", err, output)
	}
	return filterDocuments(string(output), rootPath)
}

// IsGitRepo checks if the given directory is within a git repository.
func IsGitRepo(rootPath string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = rootPath
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// filterDocuments filters git output to workspace documents that still
// exist. Git reports deletions too; those are dropped.
func filterDocuments(gitOutput, rootPath string) ([]string, error) {
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(gitOutput), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(rootPath, line)
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			continue
		}
		if !IsDocument(line) {
			continue
		}
		files = append(files, absPath)
	}
	return files, nil
}

// IsDocument checks whether a path looks like an auditable workspace
// document: yaml under topics/, facts/, or catalogs/, or markdown under
// briefs/.
func IsDocument(relPath string) bool {
	ext := filepath.Ext(strings.ToLower(relPath))
	for _, component := range strings.Split(filepath.ToSlash(relPath), "/") {
		switch component {
		case "topics", "facts", "catalogs":
			if ext == ".yaml" || ext == ".yml" {
				return true
			}
		case "briefs":
			if ext == ".md" {
				return true
			}
		}
	}
	return false
}
