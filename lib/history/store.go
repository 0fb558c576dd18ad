// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/dfolaunch/dfolaunch/lib/clock"
	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/sqlitepool"
)

// Outcome values stored per launch.
const (
	OutcomeRunning   = "running"
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// Failure kinds.
const (
	KindLaunch       = "launch"
	KindWindowMode   = "window_mode"
	KindFileSwap     = "file_swap"
	KindPopupKill    = "popup_kill"
	KindWindowResize = "window_resize"
)

// writeTimeout bounds each event's database write.
const writeTimeout = 5 * time.Second

var migrations = []string{`
CREATE TABLE launches (
	id             TEXT PRIMARY KEY,
	started_at     INTEGER NOT NULL,
	ended_at       INTEGER,
	furthest_rank  INTEGER NOT NULL DEFAULT 0,
	furthest_state TEXT NOT NULL DEFAULT 'none',
	outcome        TEXT NOT NULL DEFAULT 'running'
);
CREATE INDEX launches_started ON launches (started_at);
CREATE TABLE failures (
	id          INTEGER PRIMARY KEY,
	launch_id   TEXT NOT NULL REFERENCES launches (id),
	occurred_at INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	subject     TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL
);
CREATE INDEX failures_launch ON failures (launch_id);
`}

// Launch is one recorded launch.
type Launch struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time // zero while running
	FurthestState string
	Outcome       string
	FailureCount  int
}

// Failure is one reported problem.
type Failure struct {
	LaunchID   string
	OccurredAt time.Time
	Kind       string
	// Subject names what failed, such as the swap's normal path.
	Subject string
	Message string
}

// Store is a launch history database.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string, clk clock.Clock, logger *slog.Logger) (*Store, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(ctx, sqlitepool.Config{
		Path:       path,
		Logger:     logger,
		Migrations: migrations,
	})
	if err != nil {
		return nil, fmt.Errorf("opening launch history: %w", err)
	}
	return &Store{pool: pool, clock: clk, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Observe records event. It has the signature of a launcher
// subscriber; write errors are logged, never returned.
func (s *Store) Observe(event launcher.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.record(ctx, event); err != nil {
		s.logger.Warn("recording launch history", "launch_id", event.EventLaunchID(), "error", err)
	}
}

func (s *Store) record(ctx context.Context, event launcher.Event) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	switch event := event.(type) {
	case launcher.StateChanged:
		return recordStateChange(conn, event)
	case launcher.LaunchFailed:
		return s.recordLaunchFailure(conn, event)
	case *launcher.WindowModeFailed:
		return s.recordFailure(conn, event.LaunchID, KindWindowMode, event.Path, event.Err)
	case launcher.FileSwapFailed:
		return s.recordFailure(conn, event.LaunchID, KindFileSwap, event.Op+" "+event.Spec.Normal, event.Err)
	case launcher.PopupKillFailed:
		return s.recordFailure(conn, event.LaunchID, KindPopupKill, "", event.Err)
	case launcher.WindowResizeFailed:
		subject := fmt.Sprintf("%s %dx%d", event.Handle, event.Width, event.Height)
		return s.recordFailure(conn, event.LaunchID, KindWindowResize, subject, event.Err)
	}
	return nil
}

func recordStateChange(conn *sqlite.Conn, change launcher.StateChanged) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return err
	}
	defer endTransaction(&err)

	at := change.At.UnixNano()
	if err := ensureLaunch(conn, change.LaunchID, at); err != nil {
		return err
	}
	if change.To == launcher.StateNone {
		return sqlitex.Execute(conn, `
			UPDATE launches SET
				ended_at = ?,
				outcome = CASE
					WHEN outcome = 'failed' THEN 'failed'
					WHEN furthest_state = 'game_in_progress' THEN 'completed'
					ELSE 'aborted'
				END
			WHERE id = ?`,
			&sqlitex.ExecOptions{Args: []any{at, change.LaunchID}})
	}
	return sqlitex.Execute(conn, `
		UPDATE launches SET furthest_rank = ?, furthest_state = ?
		WHERE id = ? AND furthest_rank < ?`,
		&sqlitex.ExecOptions{Args: []any{int(change.To), change.To.String(), change.LaunchID, int(change.To)}})
}

func (s *Store) recordLaunchFailure(conn *sqlite.Conn, event launcher.LaunchFailed) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return err
	}
	defer endTransaction(&err)

	now := s.clock.Now().UnixNano()
	if err := ensureLaunch(conn, event.LaunchID, now); err != nil {
		return err
	}
	if err := sqlitex.Execute(conn, `UPDATE launches SET outcome = 'failed', ended_at = ? WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{now, event.LaunchID}}); err != nil {
		return err
	}
	return insertFailure(conn, event.LaunchID, now, KindLaunch, "", event.Err)
}

func (s *Store) recordFailure(conn *sqlite.Conn, launchID, kind, subject string, cause error) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return err
	}
	defer endTransaction(&err)

	now := s.clock.Now().UnixNano()
	if err := ensureLaunch(conn, launchID, now); err != nil {
		return err
	}
	return insertFailure(conn, launchID, now, kind, subject, cause)
}

func ensureLaunch(conn *sqlite.Conn, launchID string, at int64) error {
	return sqlitex.Execute(conn, `INSERT OR IGNORE INTO launches (id, started_at) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{launchID, at}})
}

func insertFailure(conn *sqlite.Conn, launchID string, at int64, kind, subject string, cause error) error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	return sqlitex.Execute(conn, `
		INSERT INTO failures (launch_id, occurred_at, kind, subject, message)
		VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{launchID, at, kind, subject, message}})
}

// Recent returns up to limit launches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Launch, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var launches []Launch
	err = sqlitex.Execute(conn, `
		SELECT l.id, l.started_at, l.ended_at, l.furthest_state, l.outcome,
			(SELECT count(*) FROM failures f WHERE f.launch_id = l.id)
		FROM launches l
		ORDER BY l.started_at DESC, l.rowid DESC
		LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				launch := Launch{
					ID:            stmt.ColumnText(0),
					StartedAt:     time.Unix(0, stmt.ColumnInt64(1)).UTC(),
					FurthestState: stmt.ColumnText(3),
					Outcome:       stmt.ColumnText(4),
					FailureCount:  stmt.ColumnInt(5),
				}
				if stmt.ColumnType(2) != sqlite.TypeNull {
					launch.EndedAt = time.Unix(0, stmt.ColumnInt64(2)).UTC()
				}
				launches = append(launches, launch)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("reading launch history: %w", err)
	}
	return launches, nil
}

// Failures returns the failures of one launch in the order they
// happened.
func (s *Store) Failures(ctx context.Context, launchID string) ([]Failure, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var failures []Failure
	err = sqlitex.Execute(conn, `
		SELECT occurred_at, kind, subject, message FROM failures
		WHERE launch_id = ? ORDER BY occurred_at, id`,
		&sqlitex.ExecOptions{
			Args: []any{launchID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				failures = append(failures, Failure{
					LaunchID:   launchID,
					OccurredAt: time.Unix(0, stmt.ColumnInt64(0)).UTC(),
					Kind:       stmt.ColumnText(1),
					Subject:    stmt.ColumnText(2),
					Message:    stmt.ColumnText(3),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("reading failures of %s: %w", launchID, err)
	}
	return failures, nil
}
