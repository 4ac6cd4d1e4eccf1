// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gutenbergsync/internal/rdfparse"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id int) rdfparse.EbookRecord {
	return rdfparse.EbookRecord{
		BookID:             id,
		Title:              "Book " + string(rune('A'+id)),
		Authors:            []rdfparse.Author{{Name: "Austen, Jane"}},
		Language:           "English",
		LanguageShortCode:  "en",
		PublicationDate:    time.Date(1900+id, 1, 1, 0, 0, 0, 0, time.UTC),
		HasPublicationDate: true,
		Subjects:           []string{"Fiction"},
		Bookshelves:        []string{"Classics"},
		Rights:             "Public domain",
		DownloadCount:      100 + id,
		HasDownloadCount:   true,
	}
}

func sampleRecords(n int) []rdfparse.EbookRecord {
	out := make([]rdfparse.EbookRecord, n)
	for i := 0; i < n; i++ {
		out[i] = sampleRecord(i + 1)
	}
	return out
}

func TestOpen_CreatesSchema(t *testing.T) {
	store := openTestStore(t)
	var count int
	err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='ebooks'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(1)
	require.NoError(t, store.Upsert(ctx, rec))

	rec.Title = "Updated Title"
	rec.Subjects = []string{"History"}
	require.NoError(t, store.Upsert(ctx, rec))

	got, err := store.Search(ctx, SearchOptions{HasLimit: false})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Updated Title", got[0].Title)
	assert.Equal(t, []string{"History"}, got[0].Subjects)
}

func TestUpsert_IdempotentAssociations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(2)
	require.NoError(t, store.Upsert(ctx, rec))
	require.NoError(t, store.Upsert(ctx, rec))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM ebook_subjects`).Scan(&count))
	assert.Equal(t, 1, count)

	var authorCount int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&authorCount))
	assert.Equal(t, 1, authorCount)
}

func TestUpsert_SharedAuthorAcrossBooks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, sampleRecord(1)))
	require.NoError(t, store.Upsert(ctx, sampleRecord(2)))

	var authorCount int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&authorCount))
	assert.Equal(t, 1, authorCount)
}

func TestUpsertBatch_CommitsEveryRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []rdfparse.EbookRecord{sampleRecord(1), sampleRecord(2), sampleRecord(3)}
	require.NoError(t, store.UpsertBatch(ctx, records))

	stats, err := store.ComputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBooks)
}

func TestSearch_ByQueryAuthorLanguageSubject(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertBatch(ctx, []rdfparse.EbookRecord{sampleRecord(1), sampleRecord(2)}))

	results, err := store.Search(ctx, SearchOptions{Query: "Book", HasLimit: true, Limit: 50})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, SearchOptions{Author: "Austen"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, SearchOptions{Language: "en"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, SearchOptions{Subject: "Fic"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, SearchOptions{Query: "nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_BookIDRangeAndOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertBatch(ctx, []rdfparse.EbookRecord{sampleRecord(3), sampleRecord(1), sampleRecord(2)}))

	results, err := store.Search(ctx, SearchOptions{HasBookIDFrom: true, BookIDFrom: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].BookID)
	assert.Equal(t, 3, results[1].BookID)
}

func TestSearch_DefaultLimitIsFifty(t *testing.T) {
	opts := DefaultSearchOptions()
	assert.Equal(t, 50, opts.Limit)
	assert.True(t, opts.HasLimit)
	assert.Equal(t, 0, opts.Offset)
}

func TestComputeStats_EmptyCatalog(t *testing.T) {
	store := openTestStore(t)
	stats, err := store.ComputeStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalBooks)
	assert.False(t, stats.HasBookIDRange)
}

func TestComputeStats_Populated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertBatch(ctx, []rdfparse.EbookRecord{sampleRecord(1), sampleRecord(2)}))

	stats, err := store.ComputeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 1, stats.TotalAuthors)
	assert.Equal(t, 1, stats.UniqueLanguages)
	assert.True(t, stats.HasBookIDRange)
	assert.Equal(t, 1, stats.MinBookID)
	assert.Equal(t, 2, stats.MaxBookID)
}
