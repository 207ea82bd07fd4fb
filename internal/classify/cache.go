// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache persists backend classifications in a SQLite database keyed by
// the request fingerprint, so re-running the engine with the LLM backend
// does not re-pay the per-event rate limit for unchanged events. The
// cache is optional; a run without one is fully stateless.
type Cache struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS classifications (
	fingerprint   TEXT PRIMARY KEY,
	specific_type TEXT NOT NULL,
	category      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	reasoning     TEXT NOT NULL DEFAULT '',
	backend       TEXT NOT NULL,
	created_at    TEXT NOT NULL
);`

// OpenCache opens or creates the classification cache at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get looks up a cached classification by fingerprint. ok is false on a
// miss; only validated backend output is ever stored, so hits need no
// re-validation.
func (c *Cache) Get(fingerprint string) (cls Classification, backend string, ok bool, err error) {
	row := c.db.QueryRow(
		`SELECT specific_type, category, confidence, reasoning, backend
		 FROM classifications WHERE fingerprint = ?`, fingerprint)

	err = row.Scan(&cls.SpecificType, &cls.Category, &cls.Confidence, &cls.Reasoning, &backend)
	if errors.Is(err, sql.ErrNoRows) {
		return Classification{}, "", false, nil
	}
	if err != nil {
		return Classification{}, "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return cls, backend, true, nil
}

// Put stores a validated backend classification.
func (c *Cache) Put(fingerprint string, cls Classification, backend string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO classifications
		 (fingerprint, specific_type, category, confidence, reasoning, backend, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fingerprint, cls.SpecificType, cls.Category, cls.Confidence, cls.Reasoning,
		backend, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
