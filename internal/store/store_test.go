package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dotcommander/topical/internal/brief"
	"github.com/dotcommander/topical/internal/hierarchy"
	"github.com/dotcommander/topical/internal/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "topical.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testView() hierarchy.View {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return hierarchy.View{
		MapID:    "m",
		Revision: 3,
		Topics: []hierarchy.Topic{
			{
				ID: "core-1", MapID: "m", Title: "Coffee Brewing", Slug: "coffee-brewing",
				Type: types.TopicCore, Class: types.ClassMonetization,
				CanonicalQuery: "how to brew coffee",
				QueryNetwork:   []string{"coffee brewing guide", "brew coffee at home"},
				Freshness:      types.FreshnessEvergreen,
				CreatedAt:      base, UpdatedAt: base,
			},
			{
				ID: "o1", MapID: "m", ParentID: "core-1", Title: "Pour Over",
				Slug: "coffee-brewing/pour-over", Type: types.TopicOuter,
				Class: types.ClassInformational,
				CreatedAt: base.Add(time.Second), UpdatedAt: base.Add(time.Second),
			},
		},
	}
}

func TestSaveViewAndLoadManager(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveView(testView()); err != nil {
		t.Fatalf("SaveView() error = %v", err)
	}

	mgr, err := db.LoadManager()
	if err != nil {
		t.Fatalf("LoadManager() error = %v", err)
	}
	view, err := mgr.View("m")
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.Revision != 3 {
		t.Errorf("Revision = %d, want 3", view.Revision)
	}
	if len(view.Topics) != 2 {
		t.Fatalf("Topics = %d, want 2", len(view.Topics))
	}

	core := view.Topics[0]
	if core.ID != "core-1" || core.Slug != "coffee-brewing" {
		t.Errorf("first topic = %s/%s, want core-1/coffee-brewing", core.ID, core.Slug)
	}
	if len(core.QueryNetwork) != 2 {
		t.Errorf("QueryNetwork = %v, want 2 entries round-tripped", core.QueryNetwork)
	}
	if core.Class != types.ClassMonetization {
		t.Errorf("Class = %q, want monetization", core.Class)
	}
}

func TestSaveViewPrunesRemovedTopics(t *testing.T) {
	db := openTestDB(t)
	view := testView()
	if err := db.SaveView(view); err != nil {
		t.Fatal(err)
	}

	// Drop the outer topic from the snapshot and save again.
	view.Revision = 4
	view.Topics = view.Topics[:1]
	if err := db.SaveView(view); err != nil {
		t.Fatalf("SaveView() error = %v", err)
	}

	topics, err := db.TopicsByMap("m")
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].ID != "core-1" {
		t.Errorf("TopicsByMap = %v, want only core-1", topics)
	}

	record, err := db.GetMap("m")
	if err != nil {
		t.Fatal(err)
	}
	if record == nil || record.Revision != 4 {
		t.Errorf("GetMap revision = %v, want 4", record)
	}
}

func TestGetTopic(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveView(testView()); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetTopic("o1")
	if err != nil {
		t.Fatalf("GetTopic() error = %v", err)
	}
	if got == nil || got.ParentID != "core-1" {
		t.Errorf("GetTopic(o1) = %v, want parent core-1", got)
	}

	missing, err := db.GetTopic("ghost")
	if err != nil {
		t.Fatalf("GetTopic(ghost) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetTopic(ghost) = %v, want nil", missing)
	}
}

func TestBriefCRUD(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveView(testView()); err != nil {
		t.Fatal(err)
	}

	b := brief.Brief{
		ID:      "b1",
		TopicID: "o1",
		Fields:  map[string]any{"meta-description": "desc", "outline": "## intro"},
	}
	if err := db.SaveBrief(b); err != nil {
		t.Fatalf("SaveBrief() error = %v", err)
	}

	got, err := db.GetBrief("o1")
	if err != nil {
		t.Fatalf("GetBrief() error = %v", err)
	}
	if got == nil || got.Fields["meta-description"] != "desc" {
		t.Errorf("GetBrief = %v, want saved fields", got)
	}

	// Saving again for the same topic replaces, not duplicates.
	b.Fields["outline"] = "## revised"
	if err := db.SaveBrief(b); err != nil {
		t.Fatalf("SaveBrief() second error = %v", err)
	}
	got, _ = db.GetBrief("o1")
	if got.Fields["outline"] != "## revised" {
		t.Errorf("outline = %v, want revised value", got.Fields["outline"])
	}

	if err := db.DeleteBrief("o1"); err != nil {
		t.Fatalf("DeleteBrief() error = %v", err)
	}
	got, err = db.GetBrief("o1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("GetBrief after delete = %v, want nil", got)
	}
}

// Deleting a topic from the snapshot cascades to its brief through the
// foreign key.
func TestBriefCascadeOnTopicDelete(t *testing.T) {
	db := openTestDB(t)
	view := testView()
	if err := db.SaveView(view); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveBrief(brief.Brief{ID: "b1", TopicID: "o1", Fields: map[string]any{"outline": "x"}}); err != nil {
		t.Fatal(err)
	}

	view.Revision = 4
	view.Topics = view.Topics[:1] // o1 removed
	if err := db.SaveView(view); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetBrief("o1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("brief survived topic deletion: %v", got)
	}
}

func TestBriefSurvivesViewResave(t *testing.T) {
	db := openTestDB(t)
	view := testView()
	if err := db.SaveView(view); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveBrief(brief.Brief{ID: "b1", TopicID: "o1", Fields: map[string]any{"outline": "x"}}); err != nil {
		t.Fatal(err)
	}

	// Re-saving the view updates existing topic rows in place; the brief
	// attached to o1 must not be lost to the delete cascade.
	view.Revision = 4
	view.Topics[1].Title = "Pour Over Method"
	if err := db.SaveView(view); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetBrief("o1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("brief lost on view re-save")
	}
}

func TestMapsEmpty(t *testing.T) {
	db := openTestDB(t)
	maps, err := db.Maps()
	if err != nil {
		t.Fatalf("Maps() error = %v", err)
	}
	if len(maps) != 0 {
		t.Errorf("Maps() = %v, want empty", maps)
	}

	mgr, err := db.LoadManager()
	if err != nil {
		t.Fatalf("LoadManager() error = %v", err)
	}
	if _, err := mgr.View("anything"); err == nil {
		t.Error("View() on empty manager expected error")
	}
}
