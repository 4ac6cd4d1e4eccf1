// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gutenbergsync/internal/syncscope"
	"gutenbergsync/internal/transfer"
)

// Sync runs the full metadata-then-content workflow, returning as soon as
// the metadata phase fails or is cancelled (content phase is skipped in
// that case, per spec.md §4.5's failure handling).
func (o *Orchestrator) Sync(ctx context.Context, opts Options, progress ProgressFunc) OrchestrationResult {
	start := time.Now()
	sink := newProgressSink(progress)

	metaResult := o.SyncMetadata(ctx, opts, progress)
	if !metaResult.Success {
		return OrchestrationResult{
			Cancelled: metaResult.Cancelled,
			Metadata:  metaResult,
			Duration:  time.Since(start),
			Message:   metaResult.Message,
			Err:       metaResult.Err,
		}
	}

	if opts.MetadataOnly {
		return OrchestrationResult{
			Success:  true,
			Metadata: metaResult,
			Duration: time.Since(start),
			Message:  "metadata-only sync complete",
		}
	}

	scope := syncscope.New(ctx, opts.Timeout)
	defer scope.Cancel()

	sink.emit(Progress{Phase: PhaseContent, Message: "syncing content files"})

	includes := presetIncludes(opts.Preset)
	destination := filepath.Join(opts.TargetDirectory, "gutenberg")

	primary := transfer.NewDriver(transfer.Options{
		Endpoint:           opts.contentEndpoint(),
		Destination:        destination,
		BandwidthLimitKBps: opts.BandwidthLimitKBps,
		MaxFileSizeMB:      opts.MaxFileSizeMB,
		DeleteRemoved:      opts.DeleteRemoved,
		ShowProgress:       true,
		DryRun:             opts.DryRun,
		IncludePatterns:    includes,
		Retries:            opts.Retries,
		RetryDelay:         opts.RetryDelay,
		RsyncPath:          opts.RsyncPath,
	})

	band := contentBand{halves: usesSecondaryEndpoint(opts.Preset)}
	primaryRes := primary.Sync(scope.Context(), func(ev transfer.ProgressEvent) {
		sink.emit(band.first(ev))
	})

	filesTransferred := primaryRes.FilesTransferred
	bytesTransferred := primaryRes.BytesTransferred

	if res, done := terminalContentResult(scope, opts, metaResult, primaryRes, start); done {
		return res
	}

	if band.halves {
		secondaryDestination := filepath.Join(opts.TargetDirectory, "gutenberg-epub")
		secondary := transfer.NewDriver(transfer.Options{
			Endpoint:           opts.metadataEndpoint(),
			Destination:        secondaryDestination,
			BandwidthLimitKBps: opts.BandwidthLimitKBps,
			MaxFileSizeMB:      opts.MaxFileSizeMB,
			DeleteRemoved:      opts.DeleteRemoved,
			ShowProgress:       true,
			DryRun:             opts.DryRun,
			IncludePatterns:    []string{"*.epub", "*.epub.noimages"},
			Retries:            opts.Retries,
			RetryDelay:         opts.RetryDelay,
			RsyncPath:          opts.RsyncPath,
		})

		secondaryRes := secondary.Sync(scope.Context(), func(ev transfer.ProgressEvent) {
			sink.emit(band.second(ev))
		})

		filesTransferred += secondaryRes.FilesTransferred
		bytesTransferred += secondaryRes.BytesTransferred

		if res, done := terminalContentResult(scope, opts, metaResult, secondaryRes, start); done {
			res.ContentFilesTransferred = filesTransferred
			res.ContentBytesTransferred = bytesTransferred
			return res
		}
	}

	return OrchestrationResult{
		Success:                 true,
		Metadata:                metaResult,
		ContentFilesTransferred: filesTransferred,
		ContentBytesTransferred: bytesTransferred,
		Duration:                time.Since(start),
		Message:                 fmt.Sprintf("sync complete: %d content files transferred", filesTransferred),
	}
}

func terminalContentResult(scope *syncscope.Scope, opts Options, meta MetadataResult, res transfer.Result, start time.Time) (OrchestrationResult, bool) {
	// opts.Timeout lives on scope, so the Driver reports its expiry as
	// parent cancellation; scope tells the two apart.
	timedOut := res.TimedOut || (res.Cancelled && scope.TimedOut())
	switch {
	case res.Cancelled && !timedOut:
		return OrchestrationResult{
			Cancelled:               true,
			Metadata:                meta,
			ContentFilesTransferred: res.FilesTransferred,
			ContentBytesTransferred: res.BytesTransferred,
			Duration:                time.Since(start),
			Message:                 msgCancelled,
		}, true
	case timedOut:
		return OrchestrationResult{
			Metadata:                meta,
			ContentFilesTransferred: res.FilesTransferred,
			ContentBytesTransferred: res.BytesTransferred,
			Duration:                time.Since(start),
			Message:                 timeoutMessage(opts.Timeout),
			Err:                     fmt.Errorf("content transfer timed out: %w", res.Err),
		}, true
	case !res.Succeeded:
		return OrchestrationResult{
			Metadata:                meta,
			ContentFilesTransferred: res.FilesTransferred,
			ContentBytesTransferred: res.BytesTransferred,
			Duration:                time.Since(start),
			Err:                     fmt.Errorf("content transfer failed: %w", res.Err),
		}, true
	default:
		return OrchestrationResult{}, false
	}
}

// contentBand scales a content-phase Driver's progress into the second
// half of the overall progress stream (50-100%), splitting that half
// again into two quarters when a preset requires two Driver invocations,
// per spec.md §4.5 phase 2 step 3.
type contentBand struct {
	halves bool
}

func (b contentBand) first(ev transfer.ProgressEvent) Progress {
	p := Progress{Phase: PhaseContent, Message: ev.Message, CurrentFile: ev.Path}
	if ev.Event == "file_progress" {
		top := 100
		if b.halves {
			top = 75
		}
		p.ProgressPercent, p.HasPercent = 50+(ev.Percentage*(top-50))/100, true
	}
	return p
}

func (b contentBand) second(ev transfer.ProgressEvent) Progress {
	p := Progress{Phase: PhaseContent, Message: ev.Message, CurrentFile: ev.Path}
	if ev.Event == "file_progress" {
		p.ProgressPercent, p.HasPercent = 75+(ev.Percentage*25)/100, true
	}
	return p
}
