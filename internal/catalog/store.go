// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package catalog persists the normalized Gutenberg catalog in sqlite,
// grounded on spec.md §4.4's five-table schema. Upserts run inside
// transactions; upserts, search, statistics, and export all share a single
// connection -- this package deliberately does not pool connections,
// matching the reference behavior of disabling write-ahead-log pooling for
// this write-once-many-readers-later workload.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps one sqlite connection dedicated to the Gutenberg catalog.
type Store struct {
	db *sql.DB
}

// Open creates (if absent) and opens the catalog database at path,
// initializing its schema and enabling foreign key enforcement. The
// returned Store holds exactly one connection: the reference workload is
// serialized writes with occasional reads, not a pooled server workload.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=DELETE")
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw *sql.DB for callers (tests, maintenance tooling) that
// need a query Upsert/Search/Stats do not cover.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the connection is usable, used by the `health` CLI command.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
