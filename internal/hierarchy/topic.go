// Package hierarchy owns the topic graph: a two-level hierarchy of core
// (pillar) topics and outer (supporting) topics. All structural mutations go
// through the Manager, which enforces the invariants:
//
//   - a core topic has no parent
//   - slugs are unique within a map, case-insensitively
//   - an outer topic's parent, when set, is a core topic in the same map
//

// Every structural mutation is guarded by a per-map revision counter; a
// mutation submitted with a stale revision fails with ConflictError.
package hierarchy

import (
	"regexp"
	"strings"
	"time"
)

// Topic is one entry in a topical map.
type Topic struct {
	ID             string    `json:"id" yaml:"id"`
	MapID          string    `json:"map_id" yaml:"map_id"`
	ParentID       string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title          string    `json:"title" yaml:"title"`
	Slug           string    `json:"slug" yaml:"slug"`
	Description    string    `json:"description,omitempty" yaml:"description,omitempty"`
	Type           string    `json:"type" yaml:"type"`
	Class          string    `json:"class" yaml:"class"`
	CanonicalQuery string    `json:"canonical_query,omitempty" yaml:"canonical_query,omitempty"`
	QueryNetwork   []string  `json:"query_network,omitempty" yaml:"query_network,omitempty"`
	URLSlugHint    string    `json:"url_slug_hint,omitempty" yaml:"url_slug_hint,omitempty"`
	Freshness      string    `json:"freshness,omitempty" yaml:"freshness,omitempty"`
	Orphaned       bool      `json:"orphaned,omitempty" yaml:"orphaned,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}

// IsCore reports whether the topic is a pillar.
func (t *Topic) IsCore() bool {
	return t.Type == "core"
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title: lowercased, non-alphanumeric
// runs collapsed to single hyphens, edges trimmed.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// childSlug joins a parent slug with a slugified title. Standalone topics
// and core topics carry the bare slug.
func childSlug(parentSlug, title string) string {
	base := Slugify(title)
	if parentSlug == "" {
		return base
	}
	return parentSlug + "/" + base
}
