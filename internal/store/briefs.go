package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dotcommander/topical/internal/brief"
)

// GetBrief returns the brief for a topic, or nil when the topic has none.
func (d *DB) GetBrief(topicID string) (*brief.Brief, error) {
	row := d.conn.QueryRow(`SELECT id, topic_id, fields FROM briefs WHERE topic_id = ?`, topicID)

	var b brief.Brief
	var fields string
	if err := row.Scan(&b.ID, &b.TopicID, &fields); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &b.Fields); err != nil {
		return nil, fmt.Errorf("decoding brief fields for %s: %w", topicID, err)
	}
	return &b, nil
}

// SaveBrief inserts or replaces a topic's brief. Briefs are 1:1 with topics;
// a second save for the same topic overwrites the first.
func (d *DB) SaveBrief(b brief.Brief) error {
	fields, err := json.Marshal(b.Fields)
	if err != nil {
		return fmt.Errorf("encoding brief fields: %w", err)
	}
	_, err = d.conn.Exec(`
		INSERT INTO briefs (id, topic_id, fields) VALUES (?, ?, ?)
		ON CONFLICT(topic_id) DO UPDATE SET fields = excluded.fields`,
		b.ID, b.TopicID, string(fields))
	return err
}

// DeleteBrief removes a topic's brief.
func (d *DB) DeleteBrief(topicID string) error {
	_, err := d.conn.Exec(`DELETE FROM briefs WHERE topic_id = ?`, topicID)
	return err
}
