// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"database/sql"
	"fmt"
	"strings"
)

const schemaVersion = 1

var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS ebooks (
		book_id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		language TEXT,
		language_short_code TEXT,
		publication_date TEXT,
		rights TEXT,
		download_count INTEGER,
		rdf_path TEXT,
		verified_utc TEXT,
		checksum TEXT,
		local_file_size_bytes INTEGER,
		created_utc TEXT NOT NULL,
		updated_utc TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ebook_authors (
		ebook_id INTEGER NOT NULL REFERENCES ebooks(book_id) ON DELETE CASCADE,
		author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
		PRIMARY KEY (ebook_id, author_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ebook_subjects (
		ebook_id INTEGER NOT NULL REFERENCES ebooks(book_id) ON DELETE CASCADE,
		subject TEXT NOT NULL,
		PRIMARY KEY (ebook_id, subject)
	)`,
	`CREATE TABLE IF NOT EXISTS ebook_bookshelves (
		ebook_id INTEGER NOT NULL REFERENCES ebooks(book_id) ON DELETE CASCADE,
		bookshelf TEXT NOT NULL,
		PRIMARY KEY (ebook_id, bookshelf)
	)`,
}

var createIndexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_ebooks_language ON ebooks(language)`,
	`CREATE INDEX IF NOT EXISTS idx_ebooks_language_code ON ebooks(language_short_code)`,
	`CREATE INDEX IF NOT EXISTS idx_ebooks_pubdate ON ebooks(publication_date)`,
	`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors(name)`,
	`CREATE INDEX IF NOT EXISTS idx_subjects_subject ON ebook_subjects(subject)`,
	`CREATE INDEX IF NOT EXISTS idx_bookshelves_bookshelf ON ebook_bookshelves(bookshelf)`,
}

// migrationColumns lists columns a newer schema version requires that an
// older database file may be missing. Each is added with ALTER TABLE ADD
// COLUMN, tolerating "duplicate column name" from a file already current.
var migrationColumns = []struct {
	table  string
	column string
	ddl    string
}{
	{"ebooks", "verified_utc", "ALTER TABLE ebooks ADD COLUMN verified_utc TEXT"},
	{"ebooks", "checksum", "ALTER TABLE ebooks ADD COLUMN checksum TEXT"},
	{"ebooks", "local_file_size_bytes", "ALTER TABLE ebooks ADD COLUMN local_file_size_bytes INTEGER"},
}

func initSchema(db *sql.DB) error {
	for _, stmt := range createTableStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, stmt := range createIndexStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return runMigrations(db)
}

// runMigrations adds columns that migrationColumns declares but the current
// file's schema lacks, ignoring the "duplicate column" error sqlite raises
// when a column already exists.
func runMigrations(db *sql.DB) error {
	for _, m := range migrationColumns {
		present, err := hasColumn(db, m.table, m.column)
		if err != nil {
			return fmt.Errorf("inspect column %s.%s: %w", m.table, m.column, err)
		}
		if present {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migrate %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
