// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package rdfparse

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/karrick/godirwalk"

	"gutenbergsync/internal/langmap"
)

var bookIDPattern = regexp.MustCompile(`(\d+)(?:\.rdf)?$`)
var fourDigitYearPattern = regexp.MustCompile(`\b([12][0-9]{3})\b`)

// ParseFile parses a single RDF file from disk.
func ParseFile(ctx context.Context, path string) ParseOutcome {
	f, err := os.Open(path)
	if err != nil {
		return ParseOutcome{Skipped: true, Reason: fmt.Sprintf("open %s: %v", path, err)}
	}
	defer f.Close()

	outcome := ParseStream(ctx, f)
	if !outcome.Skipped {
		outcome.Record.RDFSourcePath = path
	}
	return outcome
}

// ParseStream parses one RDF document from an arbitrary reader.
func ParseStream(ctx context.Context, r io.Reader) ParseOutcome {
	select {
	case <-ctx.Done():
		return ParseOutcome{Skipped: true, Reason: ctx.Err().Error()}
	default:
	}

	var doc xmlDoc
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return ParseOutcome{Skipped: true, Reason: fmt.Sprintf("xml decode: %v", err)}
	}

	if err := doc.verifyNamespaces(); err != nil {
		return ParseOutcome{Skipped: true, Reason: err.Error()}
	}

	bookID, ok := extractBookID(doc.Ebook.Resource, doc.Ebook.About)
	if !ok {
		return ParseOutcome{Skipped: true, Reason: fmt.Sprintf("could not parse book id from resource %q or about %q", doc.Ebook.Resource, doc.Ebook.About)}
	}

	rec := EbookRecord{
		BookID: bookID,
		Title:  firstNonEmpty(doc.Ebook.Title, "Unknown"),
		Rights: doc.Ebook.Rights,
	}

	rec.Authors = extractAuthors(doc.Ebook.Creators)

	if lang := strings.TrimSpace(doc.Ebook.Language.Description.Value); lang != "" {
		code, name, mapped := langmap.TryMap(lang)
		switch {
		case mapped:
			rec.Language, rec.LanguageShortCode = name, code
		case len(lang) >= 2 && len(lang) <= 3:
			rec.LanguageShortCode = strings.ToLower(lang)
		default:
			rec.Language = lang
		}
	}

	if d, ok := parseIssuedDate(doc.Ebook.Issued); ok {
		rec.PublicationDate, rec.HasPublicationDate = d, true
	}

	rec.Subjects = extractValues(doc.Ebook.Subjects)
	rec.Bookshelves = extractValues(doc.Ebook.Bookshelves)

	if doc.Ebook.Downloads != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(doc.Ebook.Downloads)); err == nil {
			rec.DownloadCount, rec.HasDownloadCount = n, true
		}
	}

	return ParseOutcome{Record: rec}
}

// extractBookID tries each candidate in order -- the resource URL on the
// ebook reference first, the about attribute as fallback -- per spec.md
// §4.2 rule 1, returning the first one that yields a parseable integer.
func extractBookID(candidates ...string) (int, bool) {
	for _, c := range candidates {
		m := bookIDPattern.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n, true
	}
	return 0, false
}

func extractAuthors(creators []xmlCreator) []Author {
	authors := make([]Author, 0, len(creators))
	for _, c := range creators {
		name := strings.TrimSpace(c.Agent.Name)
		if name == "" {
			name = strings.TrimSpace(c.Text)
		}
		if name == "" {
			continue // agents with no name are dropped per spec
		}
		authors = append(authors, Author{
			Name:      name,
			BirthYear: firstFourDigitYear(c.Agent.Birthdate),
			DeathYear: firstFourDigitYear(c.Agent.Deathdate),
			Webpage:   c.Agent.Webpage.Resource,
		})
	}
	return authors
}

func firstFourDigitYear(s string) int {
	m := fourDigitYearPattern.FindString(s)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

func extractValues(refs []xmlValueRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		v := strings.TrimSpace(r.Description.Value)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseIssuedDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if m := fourDigitYearPattern.FindString(s); m != "" {
		y, _ := strconv.Atoi(m)
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func firstNonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// ParseDirectory lazily walks root for .rdf files, fanning parsing out
// across concurrency worker goroutines (concurrency < 1 is treated as 1)
// and delivering outcomes over the returned channel as they complete, out
// of path order. The walk stops promptly when ctx is cancelled. Per-file
// failures and per-entry walk errors are logged via logf (which may be nil
// to suppress logging) and skipped; neither stops the walk.
//
// The channel is closed once every worker has drained the path queue;
// callers should range over it until it closes, keeping O(concurrency)
// memory beyond the current records in flight.
func ParseDirectory(ctx context.Context, root string, concurrency int, logf func(format string, args ...any)) <-chan ParseOutcome {
	if concurrency < 1 {
		concurrency = 1
	}

	paths := make(chan string, 16)
	out := make(chan ParseOutcome, 16)

	go func() {
		defer close(paths)

		err := godirwalk.Walk(root, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				if de.IsDir() {
					return nil
				}
				if !strings.HasSuffix(strings.ToLower(path), ".rdf") {
					return nil
				}

				select {
				case paths <- path:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			},
			ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
				if logf != nil {
					logf("rdfparse: walk error at %s: %v", path, err)
				}
				return godirwalk.SkipNode
			},
		})
		if err != nil && err != context.Canceled && logf != nil {
			logf("rdfparse: directory walk aborted: %v", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for path := range paths {
				outcome := ParseFile(ctx, path)
				if outcome.Skipped && logf != nil {
					logf("rdfparse: skipping %s: %s", path, outcome.Reason)
				}
				select {
				case out <- outcome:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// CountRDFFiles counts .rdf files under root without parsing them, used by
// the orchestrator to size its progress denominator.
func CountRDFFiles(root string) (int, error) {
	count := 0
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() && strings.HasSuffix(strings.ToLower(path), ".rdf") {
				count++
			}
			return nil
		},
		ErrorCallback: func(string, error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
	})
	return count, err
}

