// Package types provides shared types used across the topical codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

// Finding represents a single audit finding or validation problem.
type Finding struct {
	Subject  string
	RuleID   string
	Category string
	Message  string
	Severity string // error, warning, advisory
	Line     int
}

// Severity level constants.
const (
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityAdvisory = "advisory"
)

// Topic type constants: core topics are root pillars, outer topics hang off
// a core parent (or stand alone with no parent).
const (
	TopicCore  = "core"
	TopicOuter = "outer"
)

// Topic class constants, an axis independent of core/outer.
const (
	ClassMonetization  = "monetization"
	ClassInformational = "informational"
)

// Freshness constants. Informational only; nothing in the core branches on them.
const (
	FreshnessEvergreen = "evergreen"
	FreshnessStandard  = "standard"
)

// Audit status constants.
const (
	StatusPass          = "pass"
	StatusFail          = "fail"
	StatusPartial       = "partial"
	StatusNotApplicable = "not-applicable"
)

// Brief completeness level constants.
const (
	LevelComplete = "complete"
	LevelPartial  = "partial"
	LevelEmpty    = "empty"
)

// Document type constants for discovered workspace files.
const (
	DocTopicMap = "topicmap"
	DocBrief    = "brief"
	DocFacts    = "facts"
	DocCatalog  = "catalog"
)
