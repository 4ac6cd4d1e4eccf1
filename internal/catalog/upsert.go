// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gutenbergsync/internal/rdfparse"
)

// Upsert writes one EbookRecord inside a single transaction: the ebooks
// row, each referenced author (found-or-inserted by name), and a freshly
// pruned set of association rows -- satisfying invariant 4 (association
// rows exactly reflect the most recent successful upsert).
func (s *Store) Upsert(ctx context.Context, rec rdfparse.EbookRecord) error {
	return s.UpsertBatch(ctx, []rdfparse.EbookRecord{rec})
}

// UpsertBatch applies every record in one outer transaction, so a batch
// either lands completely or not at all.
func (s *Store) UpsertBatch(ctx context.Context, records []rdfparse.EbookRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	for _, rec := range records {
		if err := upsertOne(ctx, tx, rec); err != nil {
			return fmt.Errorf("upsert book %d: %w", rec.BookID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert transaction: %w", err)
	}
	return nil
}

func upsertOne(ctx context.Context, tx *sql.Tx, rec rdfparse.EbookRecord) error {
	now := nowUTC()

	var pubDate any
	if rec.HasPublicationDate {
		pubDate = rec.PublicationDate.UTC().Format("2006-01-02")
	}
	var downloadCount any
	if rec.HasDownloadCount {
		downloadCount = rec.DownloadCount
	}

	var createdUTC string
	err := tx.QueryRowContext(ctx, `SELECT created_utc FROM ebooks WHERE book_id = ?`, rec.BookID).Scan(&createdUTC)
	switch {
	case err == sql.ErrNoRows:
		createdUTC = now
	case err != nil:
		return fmt.Errorf("lookup existing ebook: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ebooks (book_id, title, language, language_short_code, publication_date,
			rights, download_count, rdf_path, created_utc, updated_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			title = excluded.title,
			language = excluded.language,
			language_short_code = excluded.language_short_code,
			publication_date = excluded.publication_date,
			rights = excluded.rights,
			download_count = excluded.download_count,
			rdf_path = excluded.rdf_path,
			updated_utc = excluded.updated_utc
	`, rec.BookID, rec.Title, nullableString(rec.Language), nullableString(rec.LanguageShortCode),
		pubDate, nullableString(rec.Rights), downloadCount, nullableString(rec.RDFSourcePath), createdUTC, now)
	if err != nil {
		return fmt.Errorf("upsert ebooks row: %w", err)
	}

	authorIDs := make([]int64, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		id, err := findOrInsertAuthor(ctx, tx, a.Name)
		if err != nil {
			return err
		}
		authorIDs = append(authorIDs, id)
	}

	if err := replaceAssociations(ctx, tx, "ebook_authors", "author_id", rec.BookID, authorIDs); err != nil {
		return err
	}
	if err := replaceStringAssociations(ctx, tx, "ebook_subjects", "subject", rec.BookID, rec.Subjects); err != nil {
		return err
	}
	if err := replaceStringAssociations(ctx, tx, "ebook_bookshelves", "bookshelf", rec.BookID, rec.Bookshelves); err != nil {
		return err
	}

	return nil
}

func findOrInsertAuthor(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM authors WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("lookup author %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO authors (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert author %q: %w", name, err)
	}
	return res.LastInsertId()
}

func replaceAssociations(ctx context.Context, tx *sql.Tx, table, column string, bookID int, ids []int64) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE ebook_id = ?`, table), bookID); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	for _, id := range ids {
		stmt := fmt.Sprintf(`INSERT OR IGNORE INTO %s (ebook_id, %s) VALUES (?, ?)`, table, column)
		if _, err := tx.ExecContext(ctx, stmt, bookID, id); err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}
	}
	return nil
}

func replaceStringAssociations(ctx context.Context, tx *sql.Tx, table, column string, bookID int, values []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE ebook_id = ?`, table), bookID); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		stmt := fmt.Sprintf(`INSERT OR IGNORE INTO %s (ebook_id, %s) VALUES (?, ?)`, table, column)
		if _, err := tx.ExecContext(ctx, stmt, bookID, v); err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
