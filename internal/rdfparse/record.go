// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package rdfparse converts Gutenberg RDF/XML metadata files into
// normalized EbookRecord values. The struct shapes and the agent
// name/creator fallback are adapted from kentquirk-little-free-library's
// pkg/rdf; there is no custom unmarshaler, and subjects are kept whatever
// vocabulary they come from (no LCSH-only filtering). Generalized from "one-document-many-ebooks" bulk/tar loading
// into the real per-book single-file RDF layout Gutenberg ships, and
// redesigned from log.Fatal-on-error to log-and-continue.
package rdfparse

import "time"

// Author is one authoring agent extracted from an ebook's RDF.
type Author struct {
	Name      string
	BirthYear int // 0 when unknown
	DeathYear int // 0 when unknown
	Webpage   string
}

// EbookRecord is the normalized, parsed representation of one Gutenberg
// RDF file, ready to hand to the Catalog Store's Upsert.
type EbookRecord struct {
	BookID             int
	Title              string
	Authors            []Author
	Language           string // display name, canonical or passed through
	LanguageShortCode  string // lowercase 2-3 letter code, when known
	PublicationDate    time.Time
	HasPublicationDate bool
	Subjects           []string
	Bookshelves        []string
	Rights             string
	DownloadCount      int
	HasDownloadCount   bool
	RDFSourcePath      string
}

// ParseOutcome is the tagged result of attempting to parse one RDF file,
// replacing the exception-for-control-flow style of the source material
// per the redesign notes: a file either yields a Record, or is Skipped
// with a human-readable Reason. Exactly one of the two is meaningful.
type ParseOutcome struct {
	Record  EbookRecord
	Skipped bool
	Reason  string
}
