package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	archive "github.com/jason-riddle/archive-go"
)

// initialSchema contains the SQL for creating tables
const initialSchema = `-- Last successful document list per search query
CREATE TABLE IF NOT EXISTS snapshots (
    query TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    document_count INTEGER NOT NULL,
    fetched_at TEXT NOT NULL
);
`

// Snapshot is a persisted document list.
type Snapshot struct {
	Query     string             `json:"query"`
	Documents []archive.Document `json:"documents"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// NewDB creates a new database connection and runs migrations
func NewDB(dbPath string) (*DB, error) {
	// Ensure the data directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.runMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// runMigrations executes the SQL schema
func (db *DB) runMigrations() error {
	if _, err := db.conn.Exec(initialSchema); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Save stores docs as the latest list for query, replacing any previous one.
func (db *DB) Save(ctx context.Context, query string, docs []archive.Document) error {
	if docs == nil {
		docs = []archive.Document{}
	}

	payload, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO snapshots (query, payload, document_count, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			payload = excluded.payload,
			document_count = excluded.document_count,
			fetched_at = excluded.fetched_at
	`, query, string(payload), len(docs), db.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Load returns the stored list for query.
// Returns nil if no snapshot exists or it cannot be decoded (non-fatal).
// Undecodable rows are dropped.
func (db *DB) Load(ctx context.Context, query string) (*Snapshot, error) {
	var payload, fetchedAt string
	err := db.conn.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM snapshots WHERE query = ?`, query,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var docs []archive.Document
	if err := json.Unmarshal([]byte(payload), &docs); err != nil {
		// Invalid snapshot - treat as non-existent
		return nil, db.Delete(ctx, query)
	}

	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, db.Delete(ctx, query)
	}

	return &Snapshot{Query: query, Documents: docs, FetchedAt: ts}, nil
}

// Delete removes the stored list for query.
func (db *DB) Delete(ctx context.Context, query string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM snapshots WHERE query = ?`, query); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// IsStale reports whether the snapshot is older than ttl.
func IsStale(s *Snapshot, ttl time.Duration) bool {
	if s == nil {
		return true
	}
	return time.Since(s.FetchedAt) > ttl
}
