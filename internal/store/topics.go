package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dotcommander/topical/internal/hierarchy"
)

// scanTopic scans a row into a Topic. The row must have all 15 columns in
// standard order.
func scanTopic(scanner interface{ Scan(dest ...any) error }) (hierarchy.Topic, error) {
	var t hierarchy.Topic
	var parentID, description, canonicalQuery, network, slugHint, freshness sql.NullString
	var orphaned int
	var createdAt, updatedAt int64

	err := scanner.Scan(
		&t.ID, &t.MapID, &parentID, &t.Title, &t.Slug,
		&description, &t.Type, &t.Class, &canonicalQuery, &network,
		&slugHint, &freshness, &orphaned, &createdAt, &updatedAt,
	)
	if err != nil {
		return t, err
	}

	t.ParentID = parentID.String
	t.Description = description.String
	t.CanonicalQuery = canonicalQuery.String
	t.URLSlugHint = slugHint.String
	t.Freshness = freshness.String
	t.Orphaned = orphaned != 0
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	t.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if network.String != "" {
		if err := json.Unmarshal([]byte(network.String), &t.QueryNetwork); err != nil {
			return t, fmt.Errorf("decoding query network for %s: %w", t.ID, err)
		}
	}
	return t, nil
}

const topicColumns = `id, map_id, parent_id, title, slug,
	description, type, class, canonical_query, query_network,
	url_slug_hint, freshness, orphaned, created_at, updated_at`

// TopicsByMap returns every topic of a map ordered by creation time.
func (d *DB) TopicsByMap(mapID string) ([]hierarchy.Topic, error) {
	rows, err := d.conn.Query(
		`SELECT `+topicColumns+` FROM topics WHERE map_id = ? ORDER BY created_at, id`, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []hierarchy.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// GetTopic returns a single topic by id, or nil if not found.
func (d *DB) GetTopic(id string) (*hierarchy.Topic, error) {
	row := d.conn.QueryRow(`SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)

	t, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertTopic inserts or replaces one topic row.
func (d *DB) UpsertTopic(t hierarchy.Topic) error {
	network := ""
	if len(t.QueryNetwork) > 0 {
		raw, err := json.Marshal(t.QueryNetwork)
		if err != nil {
			return fmt.Errorf("encoding query network: %w", err)
		}
		network = string(raw)
	}

	_, err := d.conn.Exec(`
		INSERT INTO topics (`+topicColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			map_id = excluded.map_id,
			parent_id = excluded.parent_id,
			title = excluded.title,
			slug = excluded.slug,
			description = excluded.description,
			type = excluded.type,
			class = excluded.class,
			canonical_query = excluded.canonical_query,
			query_network = excluded.query_network,
			url_slug_hint = excluded.url_slug_hint,
			freshness = excluded.freshness,
			orphaned = excluded.orphaned,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		t.ID, t.MapID, nullable(t.ParentID), t.Title, t.Slug,
		nullable(t.Description), t.Type, t.Class, nullable(t.CanonicalQuery), nullable(network),
		nullable(t.URLSlugHint), nullable(t.Freshness), boolInt(t.Orphaned),
		t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli(),
	)
	return err
}

// DeleteTopic removes a topic row. The topic's brief goes with it via the
// foreign key cascade.
func (d *DB) DeleteTopic(id string) error {
	_, err := d.conn.Exec(`DELETE FROM topics WHERE id = ?`, id)
	return err
}

// DeleteTopicsByParent removes every topic under a parent.
func (d *DB) DeleteTopicsByParent(parentID string) error {
	_, err := d.conn.Exec(`DELETE FROM topics WHERE parent_id = ?`, parentID)
	return err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
