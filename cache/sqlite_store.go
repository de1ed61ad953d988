// ABOUTME: SQLite-backed Store for prompt caches shared by concurrent runs.
// ABOUTME: One kv table in WAL mode; Put is a single INSERT OR REPLACE.
package cache

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists cache entries in a SQLite database. Unlike FileStore
// it stays efficient as the cache grows and is safe to share between
// concurrently running pipelines, since each Put is its own transaction.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the cache database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads all entries.
func (s *SQLiteStore) Load() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM entries")
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entries[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache entries: %w", err)
	}
	return entries, nil
}

// Put records one entry, replacing any previous value for the key.
func (s *SQLiteStore) Put(key, value string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO entries (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
