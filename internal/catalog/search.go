// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gutenbergsync/internal/rdfparse"
)

// SearchOptions mirrors spec.md §4.4's Search contract: every field is
// optional. DefaultSearchOptions supplies Limit=50, Offset=0; the zero
// value has HasLimit=false and so returns every match.
type SearchOptions struct {
	Query    string // substring match against title, case-insensitive
	Author   string // substring match against any associated author's name
	Language string // substring against display name, or exact against short code
	Subject  string // substring match against any associated subject

	PublicationDateFrom, PublicationDateTo time.Time
	HasPublicationDateFrom, HasPublicationDateTo bool

	BookIDFrom, BookIDTo int
	HasBookIDFrom, HasBookIDTo bool

	Limit  int // 0 or negative with HasLimit=false means unbounded
	Offset int
	HasLimit bool
}

// DefaultSearchOptions returns the documented defaults: limit 50, offset 0.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: 50, HasLimit: true}
}

// Search runs a dynamic, parameterized query built from the supplied
// options and returns matching records ordered by book_id ascending, each
// with its full association sets eagerly loaded.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]rdfparse.EbookRecord, error) {
	where := []string{"1 = 1"}
	args := []any{}

	if opts.Query != "" {
		where = append(where, "title LIKE ? ESCAPE '\\'")
		args = append(args, likePattern(opts.Query))
	}
	if opts.Author != "" {
		where = append(where, `book_id IN (
			SELECT ea.ebook_id FROM ebook_authors ea
			JOIN authors a ON a.id = ea.author_id
			WHERE a.name LIKE ? ESCAPE '\'
		)`)
		args = append(args, likePattern(opts.Author))
	}
	if opts.Subject != "" {
		where = append(where, `book_id IN (
			SELECT es.ebook_id FROM ebook_subjects es WHERE es.subject LIKE ? ESCAPE '\'
		)`)
		args = append(args, likePattern(opts.Subject))
	}
	if opts.Language != "" {
		where = append(where, "(language LIKE ? ESCAPE '\\' OR LOWER(language_short_code) = LOWER(?))")
		args = append(args, likePattern(opts.Language), opts.Language)
	}
	if opts.HasBookIDFrom {
		where = append(where, "book_id >= ?")
		args = append(args, opts.BookIDFrom)
	}
	if opts.HasBookIDTo {
		where = append(where, "book_id < ?")
		args = append(args, opts.BookIDTo)
	}
	if opts.HasPublicationDateFrom {
		where = append(where, "publication_date >= ?")
		args = append(args, opts.PublicationDateFrom.UTC().Format("2006-01-02"))
	}
	if opts.HasPublicationDateTo {
		where = append(where, "publication_date < ?")
		args = append(args, opts.PublicationDateTo.UTC().Format("2006-01-02"))
	}

	query := fmt.Sprintf(`SELECT book_id, title, language, language_short_code,
		publication_date, rights, download_count, rdf_path
		FROM ebooks WHERE %s ORDER BY book_id ASC`, strings.Join(where, " AND "))

	if opts.HasLimit {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	} else if opts.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var records []rdfparse.EbookRecord
	for rows.Next() {
		rec, err := scanEbookRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		if err := loadAssociations(ctx, s.db, &records[i]); err != nil {
			return nil, err
		}
	}

	return records, nil
}

func likePattern(substr string) string {
	escaped := strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_").Replace(substr)
	return "%" + escaped + "%"
}

func scanEbookRow(rows *sql.Rows) (rdfparse.EbookRecord, error) {
	var rec rdfparse.EbookRecord
	var language, shortCode, pubDate, rights, rdfPath sql.NullString
	var downloadCount sql.NullInt64

	if err := rows.Scan(&rec.BookID, &rec.Title, &language, &shortCode, &pubDate,
		&rights, &downloadCount, &rdfPath); err != nil {
		return rec, fmt.Errorf("scan ebook row: %w", err)
	}

	rec.Language = language.String
	rec.LanguageShortCode = shortCode.String
	rec.Rights = rights.String
	rec.RDFSourcePath = rdfPath.String
	if downloadCount.Valid {
		rec.DownloadCount = int(downloadCount.Int64)
		rec.HasDownloadCount = true
	}
	if pubDate.Valid && pubDate.String != "" {
		if t, err := time.Parse("2006-01-02", pubDate.String); err == nil {
			rec.PublicationDate = t
			rec.HasPublicationDate = true
		}
	}
	return rec, nil
}

func loadAssociations(ctx context.Context, db *sql.DB, rec *rdfparse.EbookRecord) error {
	authorRows, err := db.QueryContext(ctx, `
		SELECT a.name FROM authors a
		JOIN ebook_authors ea ON ea.author_id = a.id
		WHERE ea.ebook_id = ? ORDER BY a.name`, rec.BookID)
	if err != nil {
		return fmt.Errorf("load authors for %d: %w", rec.BookID, err)
	}
	defer authorRows.Close()
	for authorRows.Next() {
		var name string
		if err := authorRows.Scan(&name); err != nil {
			return err
		}
		rec.Authors = append(rec.Authors, rdfparse.Author{Name: name})
	}
	if err := authorRows.Err(); err != nil {
		return err
	}

	rec.Subjects, err = loadStringAssociation(ctx, db, "ebook_subjects", "subject", rec.BookID)
	if err != nil {
		return err
	}
	rec.Bookshelves, err = loadStringAssociation(ctx, db, "ebook_bookshelves", "bookshelf", rec.BookID)
	return err
}

func loadStringAssociation(ctx context.Context, db *sql.DB, table, column string, bookID int) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE ebook_id = ? ORDER BY %s`, column, table, column), bookID)
	if err != nil {
		return nil, fmt.Errorf("load %s for %d: %w", table, bookID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
