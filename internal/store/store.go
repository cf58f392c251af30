// Package store is the device-local draft persistence layer: one row per
// domain key, holding the JSON array of records pending publication. Drafts
// never leave the device except through an explicit export.
package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Store handles draft database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Draft returns the stored collection for key. An absent or unparsable
// payload comes back as an empty collection — corruption is recoverable by
// construction, since the next save overwrites it wholesale.
func Draft[T any](s *Store, key string) []T {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM drafts WHERE key = ?", key).Scan(&payload)
	if err != nil {
		return []T{}
	}

	var recs []T
	if err := json.Unmarshal([]byte(payload), &recs); err != nil || recs == nil {
		return []T{}
	}
	return recs
}

// SaveDraft replaces the stored collection for key wholesale. Callers compute
// the full desired state before saving; there is no partial update.
func SaveDraft[T any](s *Store, key string, recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO drafts (key, payload, updated_at) VALUES (?, ?, ?)",
		key, string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Clear empties the draft for key. Equivalent to saving an empty collection.
func (s *Store) Clear(key string) error {
	return SaveDraft(s, key, []json.RawMessage{})
}
