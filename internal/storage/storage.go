// Package storage is the client's persistent key/value area, the terminal
// counterpart of a browser's local storage.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SessionKey is where the chat session identifier is kept
const SessionKey = "llm_session_id"

// Item is a single stored key/value pair
type Item struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Store is implemented by every local storage backend
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Items(ctx context.Context) ([]Item, error)
}

var _ Store = (*DuckDBStore)(nil)

// DuckDBStore keeps items in a DuckDB table
type DuckDBStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewDuckDBStore creates the backing table if needed
func NewDuckDBStore(ctx context.Context, db *sql.DB) (*DuckDBStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS local_storage (
			key VARCHAR PRIMARY KEY,
			value VARCHAR NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create local_storage table: %w", err)
	}
	return &DuckDBStore{db: db, now: time.Now}, nil
}

// GetItem returns the value for key and whether it exists
func (s *DuckDBStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem inserts or replaces the value for key
func (s *DuckDBStore) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key; removing a missing key is not an error
func (s *DuckDBStore) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// Items lists everything in the store ordered by key
func (s *DuckDBStore) Items(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM local_storage ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Key, &item.Value, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
