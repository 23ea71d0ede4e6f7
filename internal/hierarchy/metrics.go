package hierarchy

import (
	"fmt"
	"sort"

	"github.com/dotcommander/topical/internal/types"
)

// DefaultMinSpokes is the advisory floor for spokes under a monetization
// pillar.
const DefaultMinSpokes = 7

// HubMetrics describes one core topic's spoke fan-out.
type HubMetrics struct {
	TopicID string `json:"topic_id"`
	Title   string `json:"title"`
	Class   string `json:"class"`
	Spokes  int    `json:"spokes"`
}

// MapMetrics is the derived structure report for one map.
type MapMetrics struct {
	MapID      string       `json:"map_id"`
	CoreCount  int          `json:"core_count"`
	OuterCount int          `json:"outer_count"`
	Standalone int          `json:"standalone"` // outer topics with no parent
	Orphaned   int          `json:"orphaned"`   // flagged by a merge or delete
	Hubs       []HubMetrics `json:"hubs"`
}

// Metrics computes hub/spoke counts for a map snapshot.
func Metrics(view View) MapMetrics {
	m := MapMetrics{MapID: view.MapID}
	spokes := make(map[string]int)
	for _, t := range view.Topics {
		if t.IsCore() {
			m.CoreCount++
			continue
		}
		m.OuterCount++
		if t.ParentID == "" {
			m.Standalone++
			if t.Orphaned {
				m.Orphaned++
			}
			continue
		}
		spokes[t.ParentID]++
	}
	for _, t := range view.Topics {
		if !t.IsCore() {
			continue
		}
		m.Hubs = append(m.Hubs, HubMetrics{TopicID: t.ID, Title: t.Title, Class: t.Class, Spokes: spokes[t.ID]})
	}
	sort.Slice(m.Hubs, func(i, j int) bool { return m.Hubs[i].Title < m.Hubs[j].Title })
	return m
}

// Advisories flags monetization pillars with fewer than minSpokes supporting
// topics. Advisory only: nothing here ever blocks a mutation.
func Advisories(view View, minSpokes int) []types.Finding {
	if minSpokes <= 0 {
		minSpokes = DefaultMinSpokes
	}
	var findings []types.Finding
	for _, hub := range Metrics(view).Hubs {
		if hub.Class != types.ClassMonetization || hub.Spokes >= minSpokes {
			continue
		}
		findings = append(findings, types.Finding{
			Subject:  hub.Title,
			RuleID:   "hub-spoke-ratio",
			Category: "structure",
			Severity: types.SeverityAdvisory,
			Message:  fmt.Sprintf("monetization pillar has %d supporting topics, below the minimum of %d", hub.Spokes, minSpokes),
		})
	}
	return findings
}
