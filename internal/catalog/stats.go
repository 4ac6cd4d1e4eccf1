// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Stats aggregates the catalog contents for the `catalog stats` CLI
// command, per spec.md §4.4's Statistics contract.
type Stats struct {
	TotalBooks         int
	TotalAuthors       int
	UniqueLanguages    int
	UniqueSubjects     int
	TotalFileSizeBytes int64

	MinPublicationDate, MaxPublicationDate string
	HasPublicationDateRange                bool

	MinBookID, MaxBookID int
	HasBookIDRange        bool
}

// ComputeStats runs the aggregate queries backing Stats.
func (s *Store) ComputeStats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ebooks`).Scan(&stats.TotalBooks); err != nil {
		return stats, fmt.Errorf("count ebooks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&stats.TotalAuthors); err != nil {
		return stats, fmt.Errorf("count authors: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT language) FROM ebooks WHERE language IS NOT NULL AND language != ''`).Scan(&stats.UniqueLanguages); err != nil {
		return stats, fmt.Errorf("count languages: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT subject) FROM ebook_subjects`).Scan(&stats.UniqueSubjects); err != nil {
		return stats, fmt.Errorf("count subjects: %w", err)
	}

	var totalSize sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT SUM(local_file_size_bytes) FROM ebooks`).Scan(&totalSize); err != nil {
		return stats, fmt.Errorf("sum file sizes: %w", err)
	}
	stats.TotalFileSizeBytes = totalSize.Int64

	var minDate, maxDate sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(publication_date), MAX(publication_date) FROM ebooks WHERE publication_date IS NOT NULL`).Scan(&minDate, &maxDate); err != nil {
		return stats, fmt.Errorf("publication date range: %w", err)
	}
	if minDate.Valid && maxDate.Valid {
		stats.MinPublicationDate, stats.MaxPublicationDate = minDate.String, maxDate.String
		stats.HasPublicationDateRange = true
	}

	var minID, maxID sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(book_id), MAX(book_id) FROM ebooks`).Scan(&minID, &maxID); err != nil {
		return stats, fmt.Errorf("book id range: %w", err)
	}
	if minID.Valid && maxID.Valid {
		stats.MinBookID, stats.MaxBookID = int(minID.Int64), int(maxID.Int64)
		stats.HasBookIDRange = true
	}

	return stats, nil
}
