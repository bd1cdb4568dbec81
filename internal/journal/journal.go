// Package journal persists ambient state events to a SQLite database so the
// event log survives restarts.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/litescript/ls-ambient/internal/state"
)

// Journal is an append-only event store.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal at path. Use ":memory:" for a
// throwaway journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			scene_time INTEGER NOT NULL,
			old_phase TEXT,
			new_phase TEXT,
			location TEXT,
			message TEXT,
			recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_events_scene_time ON events(scene_time);
	`)
	if err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}
	return nil
}

// Append stores events in one transaction.
func (j *Journal) Append(events ...state.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO events (type, scene_time, old_phase, new_phase, location, message)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(string(e.Type), e.Timestamp.UnixNano(), e.OldPhase, e.NewPhase, e.Location, e.Message); err != nil {
			return fmt.Errorf("inserting %s event: %w", e.Type, err)
		}
	}
	return tx.Commit()
}

// Recent returns the last n events in chronological order.
func (j *Journal) Recent(n int) ([]state.Event, error) {
	rows, err := j.db.Query(`
		SELECT type, scene_time, old_phase, new_phase, location, message
		FROM (SELECT * FROM events ORDER BY id DESC LIMIT ?)
		ORDER BY id ASC
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []state.Event
	for rows.Next() {
		var (
			typ                        string
			sceneTime                  int64
			oldPhase, newPhase, locStr sql.NullString
			message                    sql.NullString
		)
		if err := rows.Scan(&typ, &sceneTime, &oldPhase, &newPhase, &locStr, &message); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, state.Event{
			Type:      state.EventType(typ),
			Timestamp: time.Unix(0, sceneTime).UTC(),
			OldPhase:  oldPhase.String,
			NewPhase:  newPhase.String,
			Location:  locStr.String,
			Message:   message.String,
		})
	}
	return events, rows.Err()
}

// Count returns the number of stored events.
func (j *Journal) Count() (int, error) {
	var n int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
