package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// briefFieldOrder is the canonical frontmatter field order for brief
// documents: identity first, then the tracked completeness fields in
// catalog order. Unknown fields follow alphabetically.
var briefFieldOrder = []string{
	"id", "topic", "title",
	"outline", "serp-analysis", "contextual-bridge", "meta-description",
	"key-takeaways", "internal-links", "visuals",
}

// FormatBrief canonicalizes a brief markdown document: frontmatter fields
// reordered, trailing whitespace stripped, no blank lines between the
// frontmatter and the body, one trailing newline. On error the original
// content is
// returned unchanged.
func FormatBrief(content string) (string, error) {
	fm, body, hasFrontmatter, err := splitFrontmatter(content)
	if err != nil {
		return content, err
	}
	if !hasFrontmatter {
		return normalizeMarkdown(content, false), nil
	}
	normalized, err := normalizeFrontmatter(fm, briefFieldOrder)
	if err != nil {
		return content, err
	}
	return "---\n" + normalized + "\n---" + normalizeMarkdown(body, true), nil
}

// splitFrontmatter extracts the frontmatter block and body without fully
// parsing the YAML.
func splitFrontmatter(content string) (frontmatter, body string, hasFrontmatter bool, err error) {
	trimmed := strings.TrimLeft(content, " \t")
	if !strings.HasPrefix(trimmed, "---") {
		return "", content, false, nil
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return "", content, false, fmt.Errorf("unclosed frontmatter (missing closing ---)")
	}
	return parts[1], parts[2], true, nil
}

// normalizeFrontmatter reorders frontmatter fields: priority fields first in
// the given order, the rest alphabetically.
func normalizeFrontmatter(yamlContent string, priorityFields []string) (string, error) {
	data := make(map[string]any)
	if err := yaml.Unmarshal([]byte(yamlContent), &data); err != nil {
		return "", err
	}

	var orderedKeys []string
	seen := make(map[string]bool, len(priorityFields))
	for _, key := range priorityFields {
		seen[key] = true
		if _, exists := data[key]; exists {
			orderedKeys = append(orderedKeys, key)
		}
	}
	var otherKeys []string
	for key := range data {
		if !seen[key] {
			otherKeys = append(otherKeys, key)
		}
	}
	sort.Strings(otherKeys)
	orderedKeys = append(orderedKeys, otherKeys...)

	// Encode field by field to preserve the ordering.
	var buf bytes.Buffer
	for _, key := range orderedKeys {
		var fieldBuf bytes.Buffer
		enc := yaml.NewEncoder(&fieldBuf)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{key: data[key]}); err != nil {
			return "", err
		}
		buf.WriteString(strings.TrimSuffix(fieldBuf.String(), "\n"))
		buf.WriteString("\n")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// normalizeMarkdown strips trailing whitespace per line and pins the blank
// line after frontmatter and the trailing newline.
func normalizeMarkdown(body string, hasFrontmatter bool) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	result := strings.Join(lines, "\n")
	if hasFrontmatter {
		result = "\n" + strings.TrimLeft(result, "\n")
	}
	return strings.TrimRight(result, "\n") + "\n"
}

// Diff computes a simple line diff between original and formatted content.
// Returns empty string if contents are identical.
func Diff(original, formatted, filename string) string {
	if original == formatted {
		return ""
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("--- %s\n", filename))
	buf.WriteString(fmt.Sprintf("+++ %s (formatted)\n", filename))

	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")
	maxLen := len(origLines)
	if len(fmtLines) > maxLen {
		maxLen = len(fmtLines)
	}
	for i := 0; i < maxLen; i++ {
		var origLine, fmtLine string
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}
		if origLine != fmtLine {
			if origLine != "" {
				buf.WriteString(fmt.Sprintf("- %s\n", origLine))
			}
			if fmtLine != "" {
				buf.WriteString(fmt.Sprintf("+ %s\n", fmtLine))
			}
		}
	}
	return buf.String()
}
