package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dotcommander/topical/internal/hierarchy"
)

// MapRecord pairs a map id with its last persisted revision.
type MapRecord struct {
	ID       string
	Revision uint64
}

// Maps returns all persisted maps.
func (d *DB) Maps() ([]MapRecord, error) {
	rows, err := d.conn.Query(`SELECT id, revision FROM maps ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var maps []MapRecord
	for rows.Next() {
		var m MapRecord
		if err := rows.Scan(&m.ID, &m.Revision); err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// GetMap returns one map record, or nil if not found.
func (d *DB) GetMap(id string) (*MapRecord, error) {
	row := d.conn.QueryRow(`SELECT id, revision FROM maps WHERE id = ?`, id)
	var m MapRecord
	if err := row.Scan(&m.ID, &m.Revision); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveView persists a hierarchy view as the new truth for its map: the map's
// revision, every topic in the snapshot, and the deletion of everything the
// snapshot no longer contains (cascading briefs).
func (d *DB) SaveView(view hierarchy.View) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO maps (id, revision) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET revision = excluded.revision`,
		view.MapID, view.Revision); err != nil {
		return fmt.Errorf("saving map %s: %w", view.MapID, err)
	}

	keep := make([]any, 0, len(view.Topics)+1)
	keep = append(keep, view.MapID)
	placeholders := ""
	for i, t := range view.Topics {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		keep = append(keep, t.ID)
	}
	query := `DELETE FROM topics WHERE map_id = ?`
	if len(view.Topics) > 0 {
		query += ` AND id NOT IN (` + placeholders + `)`
	}
	if _, err := tx.Exec(query, keep...); err != nil {
		return fmt.Errorf("pruning topics for %s: %w", view.MapID, err)
	}

	for _, t := range view.Topics {
		network := ""
		if len(t.QueryNetwork) > 0 {
			raw, jerr := json.Marshal(t.QueryNetwork)
			if jerr != nil {
				return fmt.Errorf("encoding query network: %w", jerr)
			}
			network = string(raw)
		}
		// ON CONFLICT upsert, not INSERT OR REPLACE: replace deletes the
		// old row first, which would cascade-delete the topic's brief.
		if _, err := tx.Exec(`
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
		); err != nil {
			return fmt.Errorf("saving topic %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// LoadManager rebuilds a hierarchy manager from every persisted map.
func (d *DB) LoadManager() (*hierarchy.Manager, error) {
	maps, err := d.Maps()
	if err != nil {
		return nil, err
	}

	mgr := hierarchy.NewManager()
	for _, m := range maps {
		topics, err := d.TopicsByMap(m.ID)
		if err != nil {
			return nil, err
		}
		if err := mgr.Restore(m.ID, m.Revision, topics); err != nil {
			return nil, fmt.Errorf("restoring map %s: %w", m.ID, err)
		}
	}
	return mgr, nil
}
