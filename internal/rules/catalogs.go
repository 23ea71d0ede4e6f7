package rules

import "github.com/dotcommander/topical/internal/types"

// Built-in catalog names.
const (
	CatalogPage      = "page"
	CatalogEAV       = "eav"
	CatalogMoneyPage = "moneypage"
	CatalogBrief     = "brief"
)

// Page audit category names.
const (
	CategoryTechnical = "technical"
	CategorySemantic  = "semantic"
	CategoryLinks     = "links"
	CategoryContent   = "content"
	CategoryVisual    = "visual"
)

// pageCatalog covers the five page-audit phases. Deterministic thresholds
// where a formula exists; verdict rules where the judgment is made outside
// the engine and passed in as an already-decided value.
var pageCatalog = Catalog{
	Name: CatalogPage,
	Shares: map[string]int{
		CategoryTechnical: 20,
		CategorySemantic:  25,
		CategoryLinks:     20,
		CategoryContent:   25,
		CategoryVisual:    10,
	},
	Rules: []Rule{
		// Technical
		{ID: "title-present", Name: "Title tag present", Category: CategoryTechnical, Severity: types.SeverityError, Weight: 20, Threshold: Threshold{Kind: KindBoolean}, Critical: true},
		{ID: "title-length", Name: "Title length in range", Category: CategoryTechnical, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindRange, Min: 30, Max: 65}},
		{ID: "canonical-present", Name: "Canonical URL present", Category: CategoryTechnical, Severity: types.SeverityError, Weight: 15, Threshold: Threshold{Kind: KindBoolean}, Critical: true},
		{ID: "meta-description-length", Name: "Meta description length in range", Category: CategoryTechnical, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindRange, Min: 70, Max: 160}},
		{ID: "status-ok", Name: "Page returns 200", Category: CategoryTechnical, Severity: types.SeverityError, Weight: 20, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "render-time-ms", Name: "Render time under budget", Category: CategoryTechnical, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindMax, Value: 2500}},

		// Semantic
		{ID: "h1-unique", Name: "Single H1 heading", Category: CategorySemantic, Severity: types.SeverityError, Weight: 20, Threshold: Threshold{Kind: KindBoolean}, Critical: true},
		{ID: "heading-order", Name: "Heading order is logical", Category: CategorySemantic, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindVerdict}},
		{ID: "query-in-title", Name: "Canonical query in title", Category: CategorySemantic, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "query-network-coverage", Name: "Query network coverage", Category: CategorySemantic, Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindMin, Value: 0.6}},
		{ID: "entity-completeness", Name: "Entity coverage is complete", Category: CategorySemantic, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindVerdict}},
		{ID: "intent-match", Name: "Content matches search intent", Category: CategorySemantic, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindVerdict}},

		// Links
		{ID: "internal-links", Name: "Internal link count under cap", Category: CategoryLinks, Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindMax, Value: 150}},
		{ID: "broken-links", Name: "No broken links", Category: CategoryLinks, Severity: types.SeverityError, Weight: 20, Threshold: Threshold{Kind: KindMax, Value: 0}},
		{ID: "anchor-descriptive", Name: "Anchor text is descriptive", Category: CategoryLinks, Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindVerdict}},
		{ID: "hub-link-present", Name: "Links up to its hub page", Category: CategoryLinks, Severity: types.SeverityWarning, Weight: 25, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "outbound-authority", Name: "Outbound authority citations", Category: CategoryLinks, Severity: types.SeverityAdvisory, Weight: 20, Threshold: Threshold{Kind: KindMin, Value: 2}},

		// Content
		{ID: "word-count", Name: "Word count meets minimum", Category: CategoryContent, Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindMin, Value: 800}},
		{ID: "contextual-bridge", Name: "Contextual bridge present", Category: CategoryContent, Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "readability", Name: "Readability score in range", Category: CategoryContent, Severity: types.SeverityAdvisory, Weight: 15, Threshold: Threshold{Kind: KindRange, Min: 50, Max: 70}},
		{ID: "content-uniqueness", Name: "Content is unique", Category: CategoryContent, Severity: types.SeverityError, Weight: 25, Threshold: Threshold{Kind: KindVerdict}},
		{ID: "content-age-days", Name: "Content freshness", Category: CategoryContent, Severity: types.SeverityAdvisory, Weight: 20, Threshold: Threshold{Kind: KindMax, Value: 365}},

		// Visual / schema
		{ID: "alt-coverage", Name: "Image alt coverage", Category: CategoryVisual, Severity: types.SeverityWarning, Weight: 30, Threshold: Threshold{Kind: KindMin, Value: 0.9}},
		{ID: "schema-present", Name: "Structured data present", Category: CategoryVisual, Severity: types.SeverityWarning, Weight: 30, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "media-relevance", Name: "Media supports the copy", Category: CategoryVisual, Severity: types.SeverityAdvisory, Weight: 40, Threshold: Threshold{Kind: KindVerdict}},
	},
}

// eavCatalog checks entity-attribute-value consistency across a topic's pages.
var eavCatalog = Catalog{
	Name:   CatalogEAV,
	Shares: map[string]int{"consistency": 100},
	Rules: []Rule{
		{ID: "attribute-coverage", Name: "Attribute coverage", Category: "consistency", Severity: types.SeverityWarning, Weight: 30, Threshold: Threshold{Kind: KindMin, Value: 0.8}},
		{ID: "value-consistency", Name: "Values agree across pages", Category: "consistency", Severity: types.SeverityError, Weight: 30, Threshold: Threshold{Kind: KindVerdict}, Critical: true},
		{ID: "unit-consistency", Name: "Units are consistent", Category: "consistency", Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "stale-values", Name: "No stale attribute values", Category: "consistency", Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindMax, Value: 0}},
	},
}

// moneyPageCatalog audits monetization pages against the commercial pillars.
var moneyPageCatalog = Catalog{
	Name: CatalogMoneyPage,
	Shares: map[string]int{
		"commercial-intent": 40,
		"trust":             30,
		"conversion-path":   30,
	},
	Rules: []Rule{
		{ID: "transactional-query", Name: "Targets a transactional query", Category: "commercial-intent", Severity: types.SeverityError, Weight: 25, Threshold: Threshold{Kind: KindBoolean}, Critical: true},
		{ID: "comparison-coverage", Name: "Covers comparison angles", Category: "commercial-intent", Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindVerdict}},
		{ID: "pricing-present", Name: "Pricing information present", Category: "commercial-intent", Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "review-signals", Name: "Review signals present", Category: "trust", Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindMin, Value: 3}},
		{ID: "author-credentials", Name: "Author credentials shown", Category: "trust", Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "cta-present", Name: "Call to action present", Category: "conversion-path", Severity: types.SeverityError, Weight: 25, Threshold: Threshold{Kind: KindBoolean}, Critical: true},
		{ID: "cta-above-fold", Name: "CTA above the fold", Category: "conversion-path", Severity: types.SeverityAdvisory, Weight: 10, Threshold: Threshold{Kind: KindVerdict}},
	},
}

// briefCatalog tracks the content-brief fields. Boolean thresholds only: the
// brief completeness scorer is a specialization of this catalog where the
// fact for each rule is "field is non-empty". Catalog order is the tiebreak
// for equally weighted missing fields.
var briefCatalog = Catalog{
	Name:   CatalogBrief,
	Shares: map[string]int{"completeness": 100},
	Rules: []Rule{
		{ID: "outline", Name: "Structured outline", Category: "completeness", Severity: types.SeverityError, Weight: 25, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "serp-analysis", Name: "SERP analysis", Category: "completeness", Severity: types.SeverityWarning, Weight: 20, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "contextual-bridge", Name: "Contextual bridge", Category: "completeness", Severity: types.SeverityWarning, Weight: 15, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "meta-description", Name: "Meta description", Category: "completeness", Severity: types.SeverityWarning, Weight: 10, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "key-takeaways", Name: "Key takeaways", Category: "completeness", Severity: types.SeverityAdvisory, Weight: 10, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "internal-links", Name: "Internal link plan", Category: "completeness", Severity: types.SeverityAdvisory, Weight: 10, Threshold: Threshold{Kind: KindBoolean}},
		{ID: "visuals", Name: "Visuals plan", Category: "completeness", Severity: types.SeverityAdvisory, Weight: 10, Threshold: Threshold{Kind: KindBoolean}},
	},
}

// builtins maps catalog names to the built-in catalogs.
var builtins = map[string]*Catalog{
	CatalogPage:      &pageCatalog,
	CatalogEAV:       &eavCatalog,
	CatalogMoneyPage: &moneyPageCatalog,
	CatalogBrief:     &briefCatalog,
}

// Builtin returns a built-in catalog by name.
func Builtin(name string) (*Catalog, bool) {
	c, ok := builtins[name]
	return c, ok
}

// BuiltinNames returns the built-in catalog names in stable order.
func BuiltinNames() []string {
	return []string{CatalogPage, CatalogEAV, CatalogMoneyPage, CatalogBrief}
}
