// Package sqlite persists the discovery log in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/sentinel/pkg/sentinel/discovery"
	"github.com/cognicore/sentinel/pkg/sentinel/store"
)

// sqliteStore implements store.Store using SQLite.
type sqliteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite discovery log with WAL mode
// enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	topic TEXT NOT NULL,
	key TEXT NOT NULL,
	hits INTEGER NOT NULL,
	first_seen TEXT NOT NULL,
	promoted_at TEXT NOT NULL,
	samples TEXT NOT NULL DEFAULT '[]',
	record_ids TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_events_key ON events(key);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Append implements store.Store (and discovery.EventSink).
func (s *sqliteStore) Append(ctx context.Context, e discovery.Event) error {
	samples, err := json.Marshal(e.Samples)
	if err != nil {
		return fmt.Errorf("sqlite: marshal samples: %w", err)
	}
	recordIDs, err := json.Marshal(e.RecordIDs)
	if err != nil {
		return fmt.Errorf("sqlite: marshal record ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (topic, key, hits, first_seen, promoted_at, samples, record_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Topic, e.Key, e.Hits,
		e.FirstSeen.UTC().Format(time.RFC3339Nano),
		e.Promoted.UTC().Format(time.RFC3339Nano),
		string(samples), string(recordIDs),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append event: %w", err)
	}
	return nil
}

// Events implements store.Store.
func (s *sqliteStore) Events(ctx context.Context) ([]discovery.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic, key, hits, first_seen, promoted_at, samples, record_ids
		FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query events: %w", err)
	}
	defer rows.Close()

	var events []discovery.Event
	for rows.Next() {
		var (
			e                   discovery.Event
			firstSeen, promoted string
			samples, recordIDs  string
		)
		if err := rows.Scan(&e.Topic, &e.Key, &e.Hits, &firstSeen, &promoted, &samples, &recordIDs); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}
		if e.FirstSeen, err = time.Parse(time.RFC3339Nano, firstSeen); err != nil {
			return nil, fmt.Errorf("sqlite: parse first_seen: %w", err)
		}
		if e.Promoted, err = time.Parse(time.RFC3339Nano, promoted); err != nil {
			return nil, fmt.Errorf("sqlite: parse promoted_at: %w", err)
		}
		if err := json.Unmarshal([]byte(samples), &e.Samples); err != nil {
			return nil, fmt.Errorf("sqlite: parse samples: %w", err)
		}
		if err := json.Unmarshal([]byte(recordIDs), &e.RecordIDs); err != nil {
			return nil, fmt.Errorf("sqlite: parse record ids: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Topics implements store.Store.
func (s *sqliteStore) Topics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("sqlite: scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}
