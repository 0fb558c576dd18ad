// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens small SQLite databases for local state.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool, applies a fixed set
// of pragmas to every connection and brings the schema up to date on
// open. Callers write SQL directly with sqlitex; there is no query
// builder.
//
// # Migrations
//
// [Config.Migrations] is an append-only list of SQL scripts. PRAGMA
// user_version records how many have run; Open applies the rest, each
// in its own immediate transaction. A database whose user_version is
// higher than the list is long was written by a newer binary and is
// refused.
//
// # Pragmas
//
//   - journal_mode=WAL so a reader (dfolaunch history) never blocks the
//     running launcher's writes.
//   - synchronous=NORMAL: committed rows survive a process crash.
//   - busy_timeout=5000 for the rare concurrent writer.
//   - foreign_keys=ON.
package sqlitepool
