package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/san-kum/springlattice/internal/sink"
)

// EventLog stores drop-test threshold crossings in a SQLite table.
type EventLog struct {
	db *sql.DB
}

func NewEventLog(path string) (*EventLog, error) {
	if path == "" {
		path = "springlattice.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS drop_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		sim_time REAL NOT NULL,
		compression REAL NOT NULL,
		threshold REAL NOT NULL,
		drop_count INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create drop_events table: %w", err)
	}
	return &EventLog{db: db}, nil
}

func (e *EventLog) Record(ctx context.Context, ev sink.Event) error {
	if ev.RecordedAt.IsZero() {
		ev.RecordedAt = time.Now()
	}
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO drop_events (run_id, sim_time, compression, threshold, drop_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.RunID, ev.SimTime, ev.Compression, ev.Threshold, ev.Drop, ev.RecordedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert drop event: %w", err)
	}
	return nil
}

// List returns events in insertion order. An empty runID lists every run.
func (e *EventLog) List(ctx context.Context, runID string) ([]sink.Event, error) {
	query := `SELECT run_id, sim_time, compression, threshold, drop_count, recorded_at FROM drop_events`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id`

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select drop events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []sink.Event
	for rows.Next() {
		var (
			ev       sink.Event
			recorded int64
		)
		if err := rows.Scan(&ev.RunID, &ev.SimTime, &ev.Compression, &ev.Threshold, &ev.Drop, &recorded); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ev.RecordedAt = time.Unix(0, recorded)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (e *EventLog) Close() error { return e.db.Close() }
