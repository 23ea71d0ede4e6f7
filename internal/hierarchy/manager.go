package hierarchy

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/topical/internal/types"
)

// TopicInput carries the caller-supplied fields for a new topic.
type TopicInput struct {
	ID             string
	Title          string
	Description    string
	Type           string
	Class          string
	ParentID       string
	CanonicalQuery string
	QueryNetwork   []string
	URLSlugHint    string
	Freshness      string
}

// View is an immutable snapshot of one map's topic set after an operation.
// DeletedTopicIDs lists topics whose briefs the caller must cascade-delete;
// OrphanedTopicIDs lists outer topics whose parent was deleted and which
// were flagged orphaned rather than silently reparented.
type View struct {
	MapID            string
	Revision         uint64
	Topics           []Topic
	DeletedTopicIDs  []string
	OrphanedTopicIDs []string
}

type topicMap struct {
	id       string
	revision uint64
	topics   map[string]*Topic
}

// Manager owns all topic maps and serializes structural mutations per map.
// It performs no I/O; persistence of the returned views is the caller's job.
type Manager struct {
	mu   sync.Mutex
	maps map[string]*topicMap
	now  func() time.Time
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{
		maps: make(map[string]*topicMap),
		now:  time.Now,
	}
}

// CreateMap registers a new empty map.
func (mgr *Manager) CreateMap(mapID string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if _, ok := mgr.maps[mapID]; ok {
		return View{}, &InvariantError{Op: "create map", Reason: fmt.Sprintf("map %q already exists", mapID)}
	}
	m := &topicMap{id: mapID, topics: make(map[string]*Topic)}
	mgr.maps[mapID] = m
	return mgr.snapshot(m), nil
}

// View returns the current snapshot of a map.
func (mgr *Manager) View(mapID string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMap(mapID)
	if err != nil {
		return View{}, err
	}
	return mgr.snapshot(m), nil
}

// CreateTopic adds a topic to the map. Core topics may not carry a parent;
// an outer topic's parent, when given, must be an existing core topic in the
// same map; the derived slug must be unique within the map.
func (mgr *Manager) CreateTopic(mapID string, rev uint64, in TopicInput) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}

	const op = "create topic"
	if strings.TrimSpace(in.Title) == "" {
		return View{}, &InvariantError{Op: op, Reason: "title is required"}
	}
	if err := validType(op, in.Type); err != nil {
		return View{}, err
	}
	if in.Class != "" {
		if err := validClass(op, in.Class); err != nil {
			return View{}, err
		}
	}

	parentSlug := ""
	switch in.Type {
	case types.TopicCore:
		if in.ParentID != "" {
			return View{}, &InvariantError{Op: op, Reason: "a core topic cannot have a parent"}
		}
	case types.TopicOuter:
		if in.ParentID != "" {
			parent, ok := m.topics[in.ParentID]
			if !ok {
				return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("parent %q does not exist", in.ParentID)}
			}
			if !parent.IsCore() {
				return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("parent %q is not a core topic", in.ParentID)}
			}
			parentSlug = parent.Slug
		}
	}

	slug := childSlug(parentSlug, in.Title)
	if err := mgr.checkSlugFree(m, op, slug, nil); err != nil {
		return View{}, err
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := m.topics[id]; ok {
		return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic id %q already exists", id)}
	}

	class := in.Class
	if class == "" {
		class = types.ClassInformational
	}

	now := mgr.now()
	m.topics[id] = &Topic{
		ID:             id,
		MapID:          mapID,
		ParentID:       in.ParentID,
		Title:          in.Title,
		Slug:           slug,
		Description:    in.Description,
		Type:           in.Type,
		Class:          class,
		CanonicalQuery: in.CanonicalQuery,
		QueryNetwork:   in.QueryNetwork,
		URLSlugHint:    in.URLSlugHint,
		Freshness:      in.Freshness,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.revision++
	return mgr.snapshot(m), nil
}

// DeleteTopic removes a topic. Its brief must be cascade-deleted by the
// caller (reported via DeletedTopicIDs). Outer children of a deleted core
// topic are flagged orphaned, never silently reparented.
func (mgr *Manager) DeleteTopic(mapID string, rev uint64, topicID string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}
	if _, ok := m.topics[topicID]; !ok {
		return View{}, &NotFoundError{Kind: "topic", ID: topicID}
	}

	orphaned := mgr.orphanChildren(m, map[string]bool{topicID: true})
	delete(m.topics, topicID)
	m.revision++

	view := mgr.snapshot(m)
	view.DeletedTopicIDs = []string{topicID}
	view.OrphanedTopicIDs = orphaned
	return view, nil
}

// Promote turns an outer topic into a core pillar. Its parent link is
// cleared and its slug loses the parent prefix. Existing children keep their
// parent references untouched; a promotion adopts nobody.
func (mgr *Manager) Promote(mapID string, rev uint64, topicID string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}

	const op = "promote"
	t, ok := m.topics[topicID]
	if !ok {
		return View{}, &NotFoundError{Kind: "topic", ID: topicID}
	}
	if t.IsCore() {
		return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q is already core", topicID)}
	}

	slug := Slugify(t.Title)
	if err := mgr.checkSlugFree(m, op, slug, map[string]bool{topicID: true}); err != nil {
		return View{}, err
	}

	t.Type = types.TopicCore
	t.ParentID = ""
	t.Slug = slug
	t.Orphaned = false
	t.UpdatedAt = mgr.now()
	m.revision++
	return mgr.snapshot(m), nil
}

// Demote turns a core topic into an outer topic. When the topic still
// parents outer children, every child must be covered by the reassign map
// (child id to new core parent id) or the demotion is rejected: demoting
// may never orphan children implicitly. newParentID may be empty, leaving
// the demoted topic standalone.
func (mgr *Manager) Demote(mapID string, rev uint64, topicID, newParentID string, reassign map[string]string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}

	const op = "demote"
	t, ok := m.topics[topicID]
	if !ok {
		return View{}, &NotFoundError{Kind: "topic", ID: topicID}
	}
	if !t.IsCore() {
		return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q is not core", topicID)}
	}

	// Every current child needs an explicit new home.
	for id, child := range m.topics {
		if child.ParentID != topicID {
			continue
		}
		target, ok := reassign[id]
		if !ok {
			return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("child %q would be orphaned; reassign it first", id)}
		}
		if err := mgr.checkCoreParent(m, op, target, topicID); err != nil {
			return View{}, err
		}
	}
	for id := range reassign {
		child, ok := m.topics[id]
		if !ok {
			return View{}, &NotFoundError{Kind: "topic", ID: id}
		}
		if child.ParentID != topicID {
			return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q is not a child of %q", id, topicID)}
		}
	}

	var parentSlug string
	if newParentID != "" {
		if err := mgr.checkCoreParent(m, op, newParentID, topicID); err != nil {
			return View{}, err
		}
		parentSlug = m.topics[newParentID].Slug
	}

	// Stage every slug change, then verify uniqueness before touching state.
	changes := map[string]string{topicID: childSlug(parentSlug, t.Title)}
	for id, target := range reassign {
		changes[id] = childSlug(m.topics[target].Slug, m.topics[id].Title)
	}
	if err := mgr.checkStagedSlugs(m, op, changes, nil); err != nil {
		return View{}, err
	}

	now := mgr.now()
	for id, target := range reassign {
		child := m.topics[id]
		child.ParentID = target
		child.Slug = changes[id]
		child.Orphaned = false
		child.UpdatedAt = now
	}
	t.Type = types.TopicOuter
	t.ParentID = newParentID
	t.Slug = changes[topicID]
	t.UpdatedAt = now
	m.revision++
	return mgr.snapshot(m), nil
}

// Reparent moves an outer topic under a different core parent and
// recomputes its slug. Reparenting to the current parent is a no-op: same
// slug, no updatedAt bump, no revision advance.
func (mgr *Manager) Reparent(mapID string, rev uint64, topicID, newParentID string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}

	const op = "reparent"
	t, ok := m.topics[topicID]
	if !ok {
		return View{}, &NotFoundError{Kind: "topic", ID: topicID}
	}
	if t.IsCore() {
		return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q is core; only outer topics can be reparented", topicID)}
	}
	if err := mgr.checkCoreParent(m, op, newParentID, topicID); err != nil {
		return View{}, err
	}

	if t.ParentID == newParentID {
		return mgr.snapshot(m), nil
	}

	slug := childSlug(m.topics[newParentID].Slug, t.Title)
	if err := mgr.checkSlugFree(m, op, slug, map[string]bool{topicID: true}); err != nil {
		return View{}, err
	}

	t.ParentID = newParentID
	t.Slug = slug
	t.Orphaned = false
	t.UpdatedAt = mgr.now()
	m.revision++
	return mgr.snapshot(m), nil
}

// Merge atomically replaces a set of topics with one new core topic built
// from in. The merged-away topics are deleted (their briefs cascade via
// DeletedTopicIDs); surviving children of a merged-away parent are flagged
// orphaned. The intent judgment behind the merge is the caller's; the
// manager only performs the create-then-delete-set operation.
func (mgr *Manager) Merge(mapID string, rev uint64, topicIDs []string, in TopicInput) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}

	const op = "merge"
	if len(topicIDs) < 2 {
		return View{}, &InvariantError{Op: op, Reason: "merge needs at least two topics"}
	}
	deleted := make(map[string]bool, len(topicIDs))
	for _, id := range topicIDs {
		if _, ok := m.topics[id]; !ok {
			return View{}, &NotFoundError{Kind: "topic", ID: id}
		}
		if deleted[id] {
			return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q listed twice", id)}
		}
		deleted[id] = true
	}
	if strings.TrimSpace(in.Title) == "" {
		return View{}, &InvariantError{Op: op, Reason: "merged topic title is required"}
	}
	if in.Class != "" {
		if err := validClass(op, in.Class); err != nil {
			return View{}, err
		}
	}

	slug := Slugify(in.Title)
	if err := mgr.checkSlugFree(m, op, slug, deleted); err != nil {
		return View{}, err
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := m.topics[id]; ok && !deleted[id] {
		return View{}, &InvariantError{Op: op, Reason: fmt.Sprintf("topic id %q already exists", id)}
	}

	orphaned := mgr.orphanChildren(m, deleted)
	for tid := range deleted {
		delete(m.topics, tid)
	}

	class := in.Class
	if class == "" {
		class = types.ClassInformational
	}
	now := mgr.now()
	m.topics[id] = &Topic{
		ID:             id,
		MapID:          mapID,
		Title:          in.Title,
		Slug:           slug,
		Description:    in.Description,
		Type:           types.TopicCore,
		Class:          class,
		CanonicalQuery: in.CanonicalQuery,
		QueryNetwork:   in.QueryNetwork,
		URLSlugHint:    in.URLSlugHint,
		Freshness:      in.Freshness,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.revision++

	view := mgr.snapshot(m)
	view.DeletedTopicIDs = sortedKeys(deleted)
	view.OrphanedTopicIDs = orphaned
	return view, nil
}

// Classify sets the monetization/informational axis. It is a pure field
// mutation with no structural side effect, so it checks the caller's
// revision but does not advance it.
func (mgr *Manager) Classify(mapID string, rev uint64, topicID, class string) (View, error) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	m, err := mgr.getMapAt(mapID, rev)
	if err != nil {
		return View{}, err
	}

	const op = "classify"
	if err := validClass(op, class); err != nil {
		return View{}, err
	}
	t, ok := m.topics[topicID]
	if !ok {
		return View{}, &NotFoundError{Kind: "topic", ID: topicID}
	}
	if t.Class != class {
		t.Class = class
		t.UpdatedAt = mgr.now()
	}
	return mgr.snapshot(m), nil
}

// Restore seeds a map from persisted topics, verifying the invariants the
// rows were saved under still hold. Used when rebuilding a manager from the
// store; it is not a mutation and accepts the persisted revision as-is.
func (mgr *Manager) Restore(mapID string, revision uint64, topics []Topic) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	const op = "restore"
	if _, ok := mgr.maps[mapID]; ok {
		return &InvariantError{Op: op, Reason: fmt.Sprintf("map %q already exists", mapID)}
	}

	m := &topicMap{id: mapID, revision: revision, topics: make(map[string]*Topic, len(topics))}
	slugs := make(map[string]bool, len(topics))
	for i := range topics {
		t := topics[i]
		if _, ok := m.topics[t.ID]; ok {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("duplicate topic id %q", t.ID)}
		}
		if err := validType(op, t.Type); err != nil {
			return err
		}
		if t.IsCore() && t.ParentID != "" {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("core topic %q has a parent", t.ID)}
		}
		lower := strings.ToLower(t.Slug)
		if slugs[lower] {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("slug %q already in use", t.Slug)}
		}
		slugs[lower] = true
		m.topics[t.ID] = &t
	}
	for _, t := range m.topics {
		if t.ParentID == "" {
			continue
		}
		parent, ok := m.topics[t.ParentID]
		if !ok {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q references missing parent %q", t.ID, t.ParentID)}
		}
		if !parent.IsCore() {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("topic %q has non-core parent %q", t.ID, t.ParentID)}
		}
	}

	mgr.maps[mapID] = m
	return nil
}

// orphanChildren flags surviving outer children of the deleted set. They
// keep their current slug until the next reparent recomputes it.
func (mgr *Manager) orphanChildren(m *topicMap, deleted map[string]bool) []string {
	var orphaned []string
	now := mgr.now()
	for id, t := range m.topics {
		if deleted[id] || t.ParentID == "" || !deleted[t.ParentID] {
			continue
		}
		t.ParentID = ""
		t.Orphaned = true
		t.UpdatedAt = now
		orphaned = append(orphaned, id)
	}
	sort.Strings(orphaned)
	return orphaned
}

func (mgr *Manager) getMap(mapID string) (*topicMap, error) {
	m, ok := mgr.maps[mapID]
	if !ok {
		return nil, &NotFoundError{Kind: "map", ID: mapID}
	}
	return m, nil
}

func (mgr *Manager) getMapAt(mapID string, rev uint64) (*topicMap, error) {
	m, err := mgr.getMap(mapID)
	if err != nil {
		return nil, err
	}
	if rev != m.revision {
		return nil, &ConflictError{MapID: mapID, Given: rev, Current: m.revision}
	}
	return m, nil
}

// checkCoreParent verifies a candidate parent exists, is core, and is not
// the topic itself.
func (mgr *Manager) checkCoreParent(m *topicMap, op, parentID, selfID string) error {
	if parentID == selfID {
		return &InvariantError{Op: op, Reason: "a topic cannot be its own parent"}
	}
	parent, ok := m.topics[parentID]
	if !ok {
		return &InvariantError{Op: op, Reason: fmt.Sprintf("parent %q does not exist", parentID)}
	}
	if !parent.IsCore() {
		return &InvariantError{Op: op, Reason: fmt.Sprintf("parent %q is not a core topic", parentID)}
	}
	return nil
}

// checkSlugFree enforces case-insensitive slug uniqueness for a single new
// slug, ignoring the given ids.
func (mgr *Manager) checkSlugFree(m *topicMap, op, slug string, ignore map[string]bool) error {
	lower := strings.ToLower(slug)
	for id, t := range m.topics {
		if ignore[id] {
			continue
		}
		if strings.ToLower(t.Slug) == lower {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("slug %q already in use", slug)}
		}
	}
	return nil
}

// checkStagedSlugs enforces slug uniqueness for a batch of staged changes: each new
// slug must be free of unchanged topics and of the other staged slugs.
func (mgr *Manager) checkStagedSlugs(m *topicMap, op string, changes map[string]string, deleted map[string]bool) error {
	staged := make(map[string]string, len(changes))
	for id, slug := range changes {
		lower := strings.ToLower(slug)
		if prev, dup := staged[lower]; dup && prev != id {
			return &InvariantError{Op: op, Reason: fmt.Sprintf("slug %q already in use", slug)}
		}
		staged[lower] = id
	}
	ignore := make(map[string]bool, len(changes)+len(deleted))
	for id := range changes {
		ignore[id] = true
	}
	for id := range deleted {
		ignore[id] = true
	}
	for _, slug := range changes {
		if err := mgr.checkSlugFree(m, op, slug, ignore); err != nil {
			return err
		}
	}
	return nil
}

// snapshot returns a stable, value-copied view of the map, ordered by
// creation time then id.
func (mgr *Manager) snapshot(m *topicMap) View {
	topics := make([]Topic, 0, len(m.topics))
	for _, t := range m.topics {
		topics = append(topics, *t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if !topics[i].CreatedAt.Equal(topics[j].CreatedAt) {
			return topics[i].CreatedAt.Before(topics[j].CreatedAt)
		}
		return topics[i].ID < topics[j].ID
	})
	return View{MapID: m.id, Revision: m.revision, Topics: topics}
}

func validType(op, t string) error {
	if t != types.TopicCore && t != types.TopicOuter {
		return &InvariantError{Op: op, Reason: fmt.Sprintf("invalid topic type %q", t)}
	}
	return nil
}

func validClass(op, c string) error {
	if c != types.ClassMonetization && c != types.ClassInformational {
		return &InvariantError{Op: op, Reason: fmt.Sprintf("invalid topic class %q", c)}
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
