// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package transfer

import "time"

// Result is the tagged outcome of one Sync call, replacing a plain error
// return so callers can tell success, cancellation, and timeout apart
// without inspecting error strings -- the same "tagged result instead of
// exception" redesign rdfparse.ParseOutcome follows.
type Result struct {
	Succeeded bool
	Cancelled bool
	TimedOut  bool

	FilesTransferred int
	BytesTransferred int64
	Duration         time.Duration

	ExitCode int
	Err      error
}

// ProgressEvent is one parsed line of rsync progress output, or a
// synthetic lifecycle event ("start"/"done"/"retry"/"error").
type ProgressEvent struct {
	Time time.Time

	Event string // "start", "scanning", "summary", "file_progress", "heartbeat", "retry", "done", "error"

	Path       string
	Bytes      int64
	Total      int64
	TotalFiles int64
	Percentage int
	SpeedBps   float64
	ETASeconds int

	Attempt int
	Message string
}

// ProgressFunc receives ProgressEvent values during a Sync call. It may be
// called from a background goroutine and should not block.
type ProgressFunc func(ProgressEvent)
