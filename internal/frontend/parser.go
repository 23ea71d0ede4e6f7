// Package frontend parses brief markdown documents: YAML frontmatter for the
// tracked brief fields, markdown body for the outline.
package frontend

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/topical/internal/brief"
)

// Frontmatter represents parsed frontmatter data
type Frontmatter struct {
	Data map[string]interface{}
	Body string
}

// ParseYAMLFrontmatter extracts YAML frontmatter from markdown content
func ParseYAMLFrontmatter(content string) (*Frontmatter, error) {
	// Split content by ---
	parts := strings.SplitN(content, "---", 3)

	// If we have less than 3 parts, there's no frontmatter
	if len(parts) < 3 {
		return &Frontmatter{
			Data: make(map[string]interface{}),
			Body: content,
		}, nil
	}

	// The frontmatter is the part between the first pair of ---
	frontmatterYAML := parts[1]
	body := parts[2]

	// Parse YAML content
	var data map[string]interface{}
	if err := yaml.Unmarshal([]byte(frontmatterYAML), &data); err != nil {
		return nil, err
	}

	return &Frontmatter{
		Data: data,
		Body: body,
	}, nil
}

// ParseBrief converts a brief markdown document into a Brief. Frontmatter
// keys become brief fields; a non-empty markdown body becomes the outline
// field unless the frontmatter already carries one.
func ParseBrief(content string) (*brief.Brief, error) {
	fm, err := ParseYAMLFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("parsing brief frontmatter: %w", err)
	}

	b := &brief.Brief{Fields: make(map[string]any, len(fm.Data))}
	for key, v := range fm.Data {
		switch key {
		case "id":
			b.ID, _ = v.(string)
		case "topic":
			b.TopicID, _ = v.(string)
		default:
			b.Fields[normalizeField(key)] = v
		}
	}

	if body := strings.TrimSpace(fm.Body); body != "" {
		if _, ok := b.Fields["outline"]; !ok {
			b.Fields["outline"] = body
		}
	}
	return b, nil
}

// normalizeField maps frontmatter key spellings onto the brief catalog's
// rule ids (kebab-case).
func normalizeField(key string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	return key
}
