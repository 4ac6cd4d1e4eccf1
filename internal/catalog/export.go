// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"gutenbergsync/internal/rdfparse"
)

var csvHeader = []string{
	"book_id", "title", "authors", "language", "language_short_code",
	"publication_date", "subjects", "bookshelves", "rights", "download_count",
}

// ExportCSV streams the full catalog (associations flattened into
// semicolon-joined lists) to path, per spec.md §4.4's Export contract.
func (s *Store) ExportCSV(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	err = s.streamAll(ctx, func(rec rdfparse.EbookRecord) error {
		row := []string{
			strconv.Itoa(rec.BookID),
			rec.Title,
			strings.Join(authorNames(rec.Authors), ";"),
			rec.Language,
			rec.LanguageShortCode,
			publicationDateString(rec),
			strings.Join(rec.Subjects, ";"),
			strings.Join(rec.Bookshelves, ";"),
			rec.Rights,
			downloadCountString(rec),
		}
		return w.Write(row)
	})
	if err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// exportRow is the flattened JSON shape for one ebook, association sets
// inlined as string arrays rather than semicolon-joined (JSON keeps
// structure, unlike CSV).
type exportRow struct {
	BookID            int      `json:"book_id"`
	Title             string   `json:"title"`
	Authors           []string `json:"authors"`
	Language          string   `json:"language,omitempty"`
	LanguageShortCode string   `json:"language_short_code,omitempty"`
	PublicationDate   string   `json:"publication_date,omitempty"`
	Subjects          []string `json:"subjects,omitempty"`
	Bookshelves       []string `json:"bookshelves,omitempty"`
	Rights            string   `json:"rights,omitempty"`
	DownloadCount      *int    `json:"download_count,omitempty"`
}

// ExportJSON streams the full catalog as a JSON array to path, using
// json-iterator's streaming encoder to avoid buffering the whole catalog
// in memory.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	stream := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(f)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnStream(stream)

	stream.WriteArrayStart()
	first := true
	err = s.streamAll(ctx, func(rec rdfparse.EbookRecord) error {
		if !first {
			stream.WriteMore()
		}
		first = false

		row := exportRow{
			BookID:            rec.BookID,
			Title:             rec.Title,
			Authors:           authorNames(rec.Authors),
			Language:          rec.Language,
			LanguageShortCode: rec.LanguageShortCode,
			Subjects:          rec.Subjects,
			Bookshelves:       rec.Bookshelves,
			Rights:            rec.Rights,
		}
		if rec.HasPublicationDate {
			row.PublicationDate = rec.PublicationDate.Format("2006-01-02")
		}
		if rec.HasDownloadCount {
			n := rec.DownloadCount
			row.DownloadCount = &n
		}

		stream.WriteVal(row)
		return stream.Error
	})
	if err != nil {
		return err
	}
	stream.WriteArrayEnd()

	return stream.Flush()
}

// streamAll paginates through the full ebooks table (ordered by book_id)
// in fixed-size windows so export never holds the whole catalog in memory
// at once, calling fn once per record with its associations loaded.
func (s *Store) streamAll(ctx context.Context, fn func(rdfparse.EbookRecord) error) error {
	const pageSize = 500
	opts := SearchOptions{Limit: pageSize, HasLimit: true}

	for {
		page, err := s.Search(ctx, opts)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for _, rec := range page {
			if err := fn(rec); err != nil {
				return fmt.Errorf("export book %d: %w", rec.BookID, err)
			}
		}
		if len(page) < pageSize {
			return nil
		}
		opts.HasBookIDFrom = true
		opts.BookIDFrom = page[len(page)-1].BookID + 1
	}
}

func authorNames(authors []rdfparse.Author) []string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	return names
}

func publicationDateString(rec rdfparse.EbookRecord) string {
	if !rec.HasPublicationDate {
		return ""
	}
	return rec.PublicationDate.Format("2006-01-02")
}

func downloadCountString(rec rdfparse.EbookRecord) string {
	if !rec.HasDownloadCount {
		return ""
	}
	return strconv.Itoa(rec.DownloadCount)
}
