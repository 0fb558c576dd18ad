// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/dfolaunch/dfolaunch/lib/sqlitepool"
)

var migrations = []string{
	`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);`,
	`ALTER TABLE notes ADD COLUMN author TEXT NOT NULL DEFAULT '';`,
}

func open(t *testing.T, path string, migrations []string) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(context.Background(), sqlitepool.Config{Path: path, Migrations: migrations})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return pool
}

func TestPragmas(t *testing.T) {
	pool := open(t, filepath.Join(t.TempDir(), "test.db"), nil)
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	for pragma, want := range map[string]string{
		"PRAGMA journal_mode": "wal",
		"PRAGMA foreign_keys": "1",
		"PRAGMA synchronous":  "1",
	} {
		var got string
		err := sqlitex.ExecuteTransient(conn, pragma, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				got = stmt.ColumnText(0)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("%s: %v", pragma, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", pragma, got, want)
		}
	}
}

func TestMigrationsApplyIncrementally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first := open(t, path, migrations[:1])
	version, err := first.SchemaVersion(context.Background())
	if err != nil || version != 1 {
		t.Fatalf("SchemaVersion = %d, %v; want 1", version, err)
	}
	first.Close()

	second := open(t, path, migrations)
	defer second.Close()
	version, _ = second.SchemaVersion(context.Background())
	if version != 2 {
		t.Fatalf("SchemaVersion after upgrade = %d, want 2", version)
	}

	conn, err := second.Take(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer second.Put(conn)
	err = sqlitex.Execute(conn, "INSERT INTO notes (body, author) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{"hello", "neople"},
	})
	if err != nil {
		t.Fatalf("insert after migration: %v", err)
	}
}

func TestNewerSchemaIsRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	open(t, path, migrations).Close()

	_, err := sqlitepool.Open(context.Background(), sqlitepool.Config{Path: path, Migrations: migrations[:1]})
	if err == nil || !strings.Contains(err.Error(), "newer dfolaunch") {
		t.Fatalf("Open with fewer migrations = %v, want a newer-schema error", err)
	}
}

func TestFailedMigrationRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	broken := []string{migrations[0], `CREATE TABLE half (id INTEGER); THIS IS NOT SQL;`}

	if _, err := sqlitepool.Open(context.Background(), sqlitepool.Config{Path: path, Migrations: broken}); err == nil {
		t.Fatal("Open with a broken migration succeeded")
	}

	pool := open(t, path, migrations[:1])
	defer pool.Close()
	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Put(conn)
	var tables int
	err = sqlitex.ExecuteTransient(conn, "SELECT count(*) FROM sqlite_master WHERE name = 'half'", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tables = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if tables != 0 {
		t.Error("table from the failed migration survived")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := sqlitepool.Open(context.Background(), sqlitepool.Config{}); err == nil {
		t.Fatal("Open without a path succeeded")
	}
}
