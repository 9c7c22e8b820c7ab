// Package store writes SQLite snapshots of the event log for export.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tuifocus/internal/eventlog"
	"github.com/verte-zerg/tuifocus/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps a SQLite export database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			logged_at TEXT NOT NULL,
			day TEXT NOT NULL,
			event TEXT NOT NULL,
			session_type TEXT NOT NULL,
			duration_minutes REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);`,
		`CREATE INDEX IF NOT EXISTS idx_events_event ON events(event);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceEvents swaps the stored snapshot for records in one transaction.
func (s *Store) ReplaceEvents(ctx context.Context, records []model.EventRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (logged_at, day, event, session_type, duration_minutes)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx,
			rec.Timestamp.Format(eventlog.TimestampLayout),
			rec.Timestamp.Format("2006-01-02"),
			string(rec.Event),
			rec.SessionType,
			rec.DurationMinutes,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountEvents returns the number of stored records.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListDaily aggregates completed sessions per day, newest first.
func (s *Store) ListDaily(ctx context.Context, loc *time.Location) ([]model.DailyRow, error) {
	if loc == nil {
		loc = time.Local
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT day,
			COUNT(*),
			COALESCE(SUM(CASE WHEN session_type = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN session_type = ? THEN duration_minutes ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN session_type != ? THEN duration_minutes ELSE 0 END), 0)
		 FROM events
		 WHERE event = ?
		 GROUP BY day
		 ORDER BY day DESC`,
		string(model.SessionWork), string(model.SessionWork), string(model.SessionWork), string(model.EventCompleted),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.DailyRow
	for rows.Next() {
		var day string
		var row model.DailyRow
		if err := rows.Scan(&day, &row.TotalSessions, &row.WorkSessions, &row.WorkMinutes, &row.BreakMinutes); err != nil {
			return nil, err
		}
		date, err := time.ParseInLocation("2006-01-02", day, loc)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		row.Date = date
		out = append(out, row)
	}
	return out, rows.Err()
}
