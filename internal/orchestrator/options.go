// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator composes the two-phase (metadata, then content) sync
// workflow: it is the generalization of the teacher's single-phase
// Download() in pkg/hfdownloader/downloader.go into "download metadata,
// parse it into the catalog, then download content filtered by what the
// catalog's presets resolve to."
package orchestrator

import "time"

// Options configures one end-to-end Sync or SyncMetadata invocation.
type Options struct {
	TargetDirectory string
	Preset          string // resolved via presets.go; "" means the default (text-only)

	MetadataOnly bool
	DryRun       bool

	// VerifyAfterSync is carried on Options, but Sync does not read it: no
	// post-sync verification step runs.
	VerifyAfterSync bool

	BandwidthLimitKBps int

	// MaxFileSizeMB skips any remote file larger than this size; 0 means
	// no cap.
	MaxFileSizeMB int

	// DeleteRemoved mirrors rsync's --delete for both phases.
	DeleteRemoved bool

	// Retries and RetryDelay configure each Transfer Driver invocation's
	// auto-retry behavior. Retries 0 means a single attempt; a RetryDelay of
	// 0 falls back to the Driver's 30-second default.
	Retries    int
	RetryDelay time.Duration

	// Timeout bounds each phase separately (the metadata phase, then the
	// content phase), not the invocation as a whole; 0 disables the content
	// phase's timeout and applies a conservative default to the metadata
	// phase.
	Timeout time.Duration

	MetadataEndpoint string // default "aleph.gutenberg.org::gutenberg-epub"
	ContentEndpoint  string // default "aleph.gutenberg.org::gutenberg"

	RsyncPath string // test override; "" means auto-discover
}

const defaultMetadataTimeout = 1 * time.Hour

func (o Options) metadataTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultMetadataTimeout
}

func (o Options) metadataEndpoint() string {
	if o.MetadataEndpoint != "" {
		return o.MetadataEndpoint
	}
	return "aleph.gutenberg.org::gutenberg-epub"
}

func (o Options) contentEndpoint() string {
	if o.ContentEndpoint != "" {
		return o.ContentEndpoint
	}
	return "aleph.gutenberg.org::gutenberg"
}
