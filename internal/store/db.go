// Package store persists topic maps and briefs in SQLite. It implements the
// caller side of the persistence collaborator contract: the hierarchy
// manager and the scorers never import this package; they exchange plain
// value snapshots with it through the CLI.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	conn *sql.DB
	Path string
}

// OpenDB opens a SQLite database with WAL mode and foreign keys enabled,
// creating the schema when missing.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS maps (
	id TEXT PRIMARY KEY,
	revision INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS topics (
	id TEXT PRIMARY KEY,
	map_id TEXT NOT NULL REFERENCES maps(id) ON DELETE CASCADE,
	parent_id TEXT,
	title TEXT NOT NULL,
	slug TEXT NOT NULL,
	description TEXT,
	type TEXT NOT NULL,
	class TEXT NOT NULL,
	canonical_query TEXT,
	query_network TEXT,
	url_slug_hint TEXT,
	freshness TEXT,
	orphaned INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_topics_map ON topics(map_id);
CREATE INDEX IF NOT EXISTS idx_topics_parent ON topics(parent_id);

CREATE TABLE IF NOT EXISTS briefs (
	id TEXT PRIMARY KEY,
	topic_id TEXT NOT NULL UNIQUE REFERENCES topics(id) ON DELETE CASCADE,
	fields TEXT NOT NULL
);
`
