// Package tracedb archives captured trace events in SQLite.
package tracedb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"quasar/core"
)

//go:embed schema.sql
var schemaSQL string

// DB is an archive of capture sessions.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Session is one capture from a device.
type Session struct {
	ID        string
	Device    string
	Preset    string
	StartedAt time.Time
	Events    int
}

// Open creates or opens the archive at path. ":memory:" works for tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Begin starts a session for device and returns its id, a UUIDv7 so ids
// sort by start time.
func (d *DB) Begin(ctx context.Context, device, preset string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := d.db.ExecContext(ctx,
		"INSERT INTO sessions (id, device, preset, started_at) VALUES (?, ?, ?, ?)",
		id, device, preset, d.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	return id, nil
}

// SetPreset records the preset a device announced after the session
// started.
func (d *DB) SetPreset(ctx context.Context, session, preset string) error {
	_, err := d.db.ExecContext(ctx, "UPDATE sessions SET preset = ? WHERE id = ?", preset, session)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Append stores events after those already in the session.
func (d *DB) Append(ctx context.Context, session string, events ...core.Event) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq) + 1, 0) FROM events WHERE session_id = ?", session).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO events (session_id, seq, kind, tick, a, b) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		if _, err := stmt.ExecContext(ctx, session, next+int64(i), int(e.Kind), e.Tick, e.A, e.B); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}
	return tx.Commit()
}

// Sessions lists sessions, newest first.
func (d *DB) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT s.id, s.device, s.preset, s.started_at, COUNT(e.seq)
		FROM sessions s LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var started int64
		if err := rows.Scan(&s.ID, &s.Device, &s.Preset, &started, &s.Events); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.StartedAt = time.UnixMilli(started)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Events returns the events of a session in capture order.
func (d *DB) Events(ctx context.Context, session string) ([]core.Event, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT kind, tick, a, b FROM events WHERE session_id = ? ORDER BY seq", session)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []core.Event
	for rows.Next() {
		var e core.Event
		var kind int
		if err := rows.Scan(&kind, &e.Tick, &e.A, &e.B); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Kind = core.EventKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountKind returns how many events of kind a session holds.
func (d *DB) CountKind(ctx context.Context, session string, kind core.EventKind) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE session_id = ? AND kind = ?", session, int(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
