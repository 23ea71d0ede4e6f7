// Package discovery finds topical workspace documents: topic-map files,
// brief markdown documents, fact bundles and user rule catalogs.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dotcommander/topical/internal/types"
)

// TypePattern maps a glob pattern to a document type for type detection.
// Patterns are matched in order; first match wins.
type TypePattern struct {
	Pattern string
	DocType string
}

// typePatterns defines the canonical patterns for detecting document types.
// These patterns mirror those used in DiscoverFiles() for consistency.
// Order matters: more specific patterns should come first.
var typePatterns = []TypePattern{
	{"topics/**/*.yaml", types.DocTopicMap},
	{"topics/**/*.yml", types.DocTopicMap},
	{"briefs/**/*.md", types.DocBrief},
	{"facts/**/*.yaml", types.DocFacts},
	{"facts/**/*.yml", types.DocFacts},
	{"catalogs/**/*.yaml", types.DocCatalog},
	{"catalogs/**/*.yml", types.DocCatalog},
}

// DocTypeEntry defines the discovery configuration for a document type.
// New document types are added here; DiscoverFiles needs no change.
type DocTypeEntry struct {
	Type     string
	Patterns []string
}

// DefaultDocTypes is the registry of document types and their discovery patterns.
var DefaultDocTypes = []DocTypeEntry{
	{Type: types.DocTopicMap, Patterns: []string{"topics/**/*.yaml", "topics/**/*.yml"}},
	{Type: types.DocBrief, Patterns: []string{"briefs/**/*.md"}},
	{Type: types.DocFacts, Patterns: []string{"facts/**/*.yaml", "facts/**/*.yml"}},
	{Type: types.DocCatalog, Patterns: []string{"catalogs/**/*.yaml", "catalogs/**/*.yml"}},
}

// File is one discovered workspace document.
type File struct {
	Path string
	Type string
}

// FileDiscovery walks a workspace root for topical documents.
type FileDiscovery struct {
	root    string
	exclude []string
}

// NewFileDiscovery creates a FileDiscovery rooted at root. Exclude patterns
// are doublestar globs relative to the root.
func NewFileDiscovery(root string, exclude []string) *FileDiscovery {
	return &FileDiscovery{root: root, exclude: exclude}
}

// DiscoverFiles returns every matching document under the root as root-
// relative paths, sorted for deterministic runs.
func (fd *FileDiscovery) DiscoverFiles() ([]File, error) {
	seen := make(map[string]bool)
	var files []File

	fsys := os.DirFS(fd.root)
	for _, entry := range DefaultDocTypes {
		for _, pattern := range entry.Patterns {
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", pattern, err)
			}
			for _, rel := range matches {
				if seen[rel] || fd.excluded(rel) {
					continue
				}
				seen[rel] = true
				files = append(files, File{Path: filepath.FromSlash(rel), Type: entry.Type})
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// DetectDocType determines the document type from a file path using the same
// patterns as DiscoverFiles, falling back to extension heuristics for files
// outside the standard directories.
func DetectDocType(absPath, rootPath string) (string, error) {
	relPath, err := filepath.Rel(rootPath, absPath)
	if err != nil {
		return "", fmt.Errorf("cannot compute relative path from %s to %s: %w", rootPath, absPath, err)
	}
	relPath = filepath.ToSlash(relPath)
	if strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("file is outside workspace root: %s", absPath)
	}

	for _, tp := range typePatterns {
		matched, err := doublestar.Match(tp.Pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return tp.DocType, nil
		}
	}

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".md":
		return types.DocBrief, nil
	case ".yaml", ".yml":
		return "", fmt.Errorf(
			"cannot determine type: %s is a YAML file but not in topics/, facts/, or catalogs/. "+
				"Use --type to specify (topicmap, facts, catalog)", relPath)
	default:
		return "", fmt.Errorf("unsupported file type: %s. topical reads .yaml and .md documents only", relPath)
	}
}

// excluded reports whether a relative path matches any exclude pattern.
func (fd *FileDiscovery) excluded(relPath string) bool {
	for _, pattern := range fd.exclude {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}
