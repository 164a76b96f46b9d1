package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the fingerprint database at path.
func New(path string) (*sql.DB, error) {
	// busy_timeout is per connection, so it rides on the DSN
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets fingerprint lookups proceed while another request records an entry
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the fingerprints table and its content hash index if missing.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS fingerprints (
			path TEXT PRIMARY KEY,
			quick_key TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			probe_hash TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			modified_at_ns INTEGER NOT NULL,
			changed_at_ns INTEGER NOT NULL DEFAULT 0,
			recorded_at_ns INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fingerprints_content_hash ON fingerprints (content_hash);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate fingerprints schema: %w", err)
		}
	}

	return nil
}
