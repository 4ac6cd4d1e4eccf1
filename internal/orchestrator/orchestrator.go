// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"gutenbergsync/internal/catalog"
	"gutenbergsync/internal/rdfparse"
	"gutenbergsync/internal/syncscope"
	"gutenbergsync/internal/transfer"
)

// Orchestrator composes the Transfer Driver, RDF Parser, and Catalog Store
// into the two-phase workflow described by spec.md §4.5. It holds no
// mutable state across calls; every Sync/SyncMetadata call is independent,
// generalizing the composition-root idea the teacher's cmd/hfdownloader
// main.go demonstrates for a single downloader into a multi-component
// pipeline (see SPEC_FULL.md §9 on the composition-root redesign note).
type Orchestrator struct {
	store *catalog.Store

	// upsertBatchSize bounds how many parsed records accumulate before a
	// batch transaction is flushed to the catalog.
	upsertBatchSize int

	// parseConcurrency bounds how many RDF files are parsed in parallel;
	// catalog writes remain serialized through the batching goroutine
	// regardless of this value, per spec.md §4.6.
	parseConcurrency int

	// progressEvery controls how often (in files parsed) a metadata-phase
	// progress record is emitted.
	progressEvery int
}

// New builds an Orchestrator bound to store. store's lifetime is owned by
// the caller.
func New(store *catalog.Store) *Orchestrator {
	return &Orchestrator{
		store:            store,
		upsertBatchSize:  100,
		parseConcurrency: runtime.GOMAXPROCS(0),
		progressEvery:    100,
	}
}

// SyncMetadata drives the metadata endpoint into <targetDirectory>/gutenberg-epub,
// then parses every RDF file found there into the catalog.
func (o *Orchestrator) SyncMetadata(ctx context.Context, opts Options, progress ProgressFunc) MetadataResult {
	start := time.Now()
	sink := newProgressSink(progress)

	scope := syncscope.New(ctx, opts.metadataTimeout())
	defer scope.Cancel()

	sink.emit(Progress{Phase: PhaseMetadata, Message: "syncing RDF files"})

	destination := filepath.Join(opts.TargetDirectory, "gutenberg-epub")
	driver := transfer.NewDriver(transfer.Options{
		Endpoint:           opts.metadataEndpoint(),
		Destination:        destination,
		BandwidthLimitKBps: opts.BandwidthLimitKBps,
		MaxFileSizeMB:      opts.MaxFileSizeMB,
		DeleteRemoved:      opts.DeleteRemoved,
		ShowProgress:       true,
		DryRun:             opts.DryRun,
		IncludePatterns:    []string{"*/", "*.rdf"},
		Retries:            opts.Retries,
		RetryDelay:         opts.RetryDelay,
		RsyncPath:          opts.RsyncPath,
	})

	transferRes := driver.Sync(scope.Context(), func(ev transfer.ProgressEvent) {
		sink.emit(transferEventToMetadataProgress(ev))
	})

	// The metadata deadline lives on this scope, not on the Driver's own
	// Timeout, so the Driver sees it fire as parent cancellation.
	timedOut := transferRes.TimedOut || (transferRes.Cancelled && scope.TimedOut())
	if transferRes.Cancelled && !timedOut {
		return MetadataResult{
			Cancelled: true,
			Duration:  time.Since(start),
			Message:   msgCancelled,
			FilesTransferred: transferRes.FilesTransferred,
			BytesTransferred: transferRes.BytesTransferred,
		}
	}
	if timedOut {
		return MetadataResult{
			Duration: time.Since(start),
			Message:  timeoutMessage(opts.metadataTimeout()),
			Err:      fmt.Errorf("metadata transfer timed out: %w", transferRes.Err),
		}
	}
	if !transferRes.Succeeded {
		return MetadataResult{
			Duration: time.Since(start),
			Err:      fmt.Errorf("metadata transfer failed: %w", transferRes.Err),
		}
	}

	total, err := rdfparse.CountRDFFiles(destination)
	if err != nil {
		return MetadataResult{Duration: time.Since(start), Err: fmt.Errorf("count rdf files: %w", err)}
	}

	upserted, skipped, err := o.parseAndUpsert(scope.Context(), destination, total, sink)
	if err != nil {
		if scope.CallerCancelled() {
			return MetadataResult{
				Cancelled:        true,
				RecordsUpserted:  upserted,
				FilesSkipped:     skipped,
				Duration:         time.Since(start),
				Message:          msgCancelled,
				FilesTransferred: transferRes.FilesTransferred,
				BytesTransferred: transferRes.BytesTransferred,
			}
		}
		return MetadataResult{
			RecordsUpserted: upserted,
			FilesSkipped:    skipped,
			Duration:        time.Since(start),
			Err:             fmt.Errorf("catalog upsert: %w", err),
		}
	}

	return MetadataResult{
		Success:          true,
		RecordsUpserted:  upserted,
		FilesSkipped:     skipped,
		FilesTransferred: transferRes.FilesTransferred,
		BytesTransferred: transferRes.BytesTransferred,
		Duration:         time.Since(start),
		Message:          fmt.Sprintf("upserted %d records (%d skipped)", upserted, skipped),
	}
}

// parseAndUpsert parallelizes RDF parsing across parseConcurrency workers
// while serializing catalog writes through one batching goroutine, per
// spec.md §4.6 ("RDF parsing may be parallelized per-file as long as
// upserts remain serialized through one catalog transaction per record").
func (o *Orchestrator) parseAndUpsert(ctx context.Context, root string, total int, sink *progressSink) (upserted, skipped int, err error) {
	outcomes := rdfparse.ParseDirectory(ctx, root, o.parseConcurrency, log.Printf)

	recordCh := make(chan rdfparse.EbookRecord, o.upsertBatchSize)
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(recordCh)
		processed := 0
		for outcome := range outcomes {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if outcome.Skipped {
				skipped++
				continue
			}
			select {
			case recordCh <- outcome.Record:
			case <-gctx.Done():
				return gctx.Err()
			}
			processed++
			if processed%o.progressEvery == 0 {
				sink.emit(metadataParseProgress(processed, total))
			}
		}
		return nil
	})

	group.Go(func() error {
		batch := make([]rdfparse.EbookRecord, 0, o.upsertBatchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := o.store.UpsertBatch(gctx, batch); err != nil {
				return err
			}
			upserted += len(batch)
			batch = batch[:0]
			return nil
		}
		for rec := range recordCh {
			batch = append(batch, rec)
			if len(batch) >= o.upsertBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})

	if err := group.Wait(); err != nil {
		return upserted, skipped, err
	}

	sink.emit(metadataParseProgress(total, total))
	return upserted, skipped, nil
}

func metadataParseProgress(processed, total int) Progress {
	p := Progress{Phase: PhaseMetadata, Message: fmt.Sprintf("parsed %d records", processed)}
	if total > 0 {
		pct := 50 + (processed*50)/total
		if pct > 100 {
			pct = 100
		}
		p.ProgressPercent, p.HasPercent = pct, true
	}
	return p
}

func transferEventToMetadataProgress(ev transfer.ProgressEvent) Progress {
	p := Progress{Phase: PhaseMetadata, Message: ev.Message, CurrentFile: ev.Path}
	if ev.Event == "file_progress" {
		p.ProgressPercent, p.HasPercent = ev.Percentage/2, true // 0-50% band
	}
	return p
}
