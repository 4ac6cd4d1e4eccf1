// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package transfer drives rsync as a subprocess to mirror a remote
// Project Gutenberg module onto local disk. It generalizes the teacher
// package's retry/backoff and progress-event idioms from an HTTP-fetch
// shape to a subprocess-supervision shape: instead of issuing ranged GET
// requests, Driver builds an argv, starts rsync, and streams its stdout
// through lineParser.Parse to produce ProgressEvent values.
package transfer

import "time"

// Options configures one rsync invocation.
type Options struct {
	// Endpoint is the rsync source spec, e.g. "aleph.gutenberg.org::gutenberg-epub".
	Endpoint string

	// Destination is the local directory rsync mirrors into.
	Destination string

	// BandwidthLimitKBps caps transfer rate; 0 means unlimited.
	BandwidthLimitKBps int

	// DryRun runs rsync with --dry-run: no files are written, but the
	// same plan/progress output is produced.
	DryRun bool

	// IncludePatterns and ExcludePatterns are passed through as repeated
	// --include/--exclude rsync filters, evaluated in order.
	IncludePatterns []string
	ExcludePatterns []string

	// MaxFileSizeMB, if > 0, skips any remote file larger than this size.
	MaxFileSizeMB int

	// DeleteRemoved mirrors rsync's --delete: files absent on the remote
	// are removed from the destination. Defaults to false.
	DeleteRemoved bool

	// ShowProgress enables rsync's --progress stream. Output lines are
	// parsed either way; without --progress there are no per-file stats
	// lines, so no file_progress events are emitted and Result's file and
	// byte counts stay 0.
	ShowProgress bool

	// Retries is the maximum number of additional attempts after the
	// first failed run. If <= 0, the run is attempted exactly once.
	Retries int

	// RetryDelay is the base delay between retries; it backs off the same
	// way the teacher's download retry loop does.
	RetryDelay time.Duration

	// Timeout bounds the whole transfer; 0 means no internal timeout (the
	// caller's context is still honored).
	Timeout time.Duration

	// RsyncPath overrides binary discovery, mostly for tests.
	RsyncPath string
}

// DefaultOptions returns Options with sensible defaults, mirroring the
// teacher's DefaultSettings constructor.
func DefaultOptions() Options {
	return Options{
		Retries:      3,
		RetryDelay:   30 * time.Second,
		ShowProgress: true,
	}
}
