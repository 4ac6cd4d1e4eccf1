// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gutenbergsync/internal/catalog"
	"gutenbergsync/internal/config"
	"gutenbergsync/internal/orchestrator"
	"gutenbergsync/internal/tui"
)

func newSyncCmd(ctx context.Context, ro *RootOpts) *cobra.Command {
	var (
		targetDir    string
		preset       string
		metadataOnly bool
		dryRun       bool
		verifyAfter  bool
		bandwidth    int
		autoRetry    bool
		maxRetries   int
		retryDelay   time.Duration
		timeout      time.Duration
		maxFileSize  int
		deleteRemoved bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror Project Gutenberg metadata and content, and catalog it",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(ro)
			if err != nil {
				return err
			}
			overlaySyncFlags(cmd, &settings, targetDir, preset, metadataOnly, dryRun, verifyAfter, bandwidth, autoRetry, maxRetries, retryDelay, timeout, maxFileSize, deleteRemoved)

			store, err := catalog.Open(settings.ResolveDatabasePath())
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			opts := orchestrator.Options{
				TargetDirectory:    settings.TargetDirectory,
				Preset:             settings.Preset,
				MetadataOnly:       settings.MetadataOnly,
				DryRun:             settings.DryRun,
				VerifyAfterSync:    settings.VerifyAfterSync,
				BandwidthLimitKBps: settings.BandwidthLimitKBps,
				MaxFileSizeMB:      settings.MaxFileSizeMB,
				DeleteRemoved:      settings.DeleteRemoved,
				Timeout:            time.Duration(settings.TimeoutSeconds) * time.Second,
				MetadataEndpoint:   settings.MetadataEndpoint,
				ContentEndpoint:    settings.ContentEndpoint,
			}
			if settings.AutoRetry {
				opts.Retries = settings.MaxRetries
				opts.RetryDelay = time.Duration(settings.RetryDelaySeconds) * time.Second
			}

			progress, closeProgress := selectProgressFunc(ro)
			defer closeProgress()

			orch := orchestrator.New(store)
			result := orch.Sync(ctx, opts, progress)

			if ro.JSONOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				fmt.Println(result.Message)
			}

			if result.Cancelled {
				return ctx.Err()
			}
			if !result.Success {
				return result.Err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetDir, "target-dir", "d", "", "Destination directory for the mirror (overrides config)")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "Content preset: text-only, text-epub, all-text, full")
	cmd.Flags().BoolVar(&metadataOnly, "metadata-only", false, "Sync and catalog RDF metadata only; skip content transfer")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Pass --dry-run through to rsync; no files are written")
	cmd.Flags().BoolVar(&verifyAfter, "verify", false, "Set verifyAfterSync; the orchestrator does not act on it and no verification runs")
	cmd.Flags().IntVar(&bandwidth, "bandwidth-limit", 0, "Bandwidth limit in KB/s passed to rsync (0 = unlimited)")
	cmd.Flags().BoolVar(&autoRetry, "auto-retry", false, "Automatically retry a failed transfer")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 0, "Maximum retry attempts when --auto-retry is set")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 0, "Delay between retry attempts")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Timeout applied to each phase separately (0 = no limit on the content phase, 1h default on the metadata phase)")
	cmd.Flags().IntVar(&maxFileSize, "max-file-size-mb", 0, "Skip remote files larger than this many megabytes (0 = no cap)")
	cmd.Flags().BoolVar(&deleteRemoved, "delete", false, "Remove local files absent on the remote (passes --delete to rsync)")

	return cmd
}

// overlaySyncFlags applies only the flags the user actually set, so an
// unset flag never clobbers a value the config file or environment
// already resolved.
func overlaySyncFlags(cmd *cobra.Command, s *config.Settings, targetDir, preset string, metadataOnly, dryRun, verifyAfter bool, bandwidth int, autoRetry bool, maxRetries int, retryDelay, timeout time.Duration, maxFileSize int, deleteRemoved bool) {
	if cmd.Flags().Changed("target-dir") {
		s.TargetDirectory = targetDir
	}
	if cmd.Flags().Changed("preset") {
		s.Preset = preset
	}
	if cmd.Flags().Changed("metadata-only") {
		s.MetadataOnly = metadataOnly
	}
	if cmd.Flags().Changed("dry-run") {
		s.DryRun = dryRun
	}
	if cmd.Flags().Changed("verify") {
		s.VerifyAfterSync = verifyAfter
	}
	if cmd.Flags().Changed("bandwidth-limit") {
		s.BandwidthLimitKBps = bandwidth
	}
	if cmd.Flags().Changed("auto-retry") {
		s.AutoRetry = autoRetry
	}
	if cmd.Flags().Changed("max-retries") {
		s.MaxRetries = maxRetries
	}
	if cmd.Flags().Changed("retry-delay") {
		s.RetryDelaySeconds = int(retryDelay.Seconds())
	}
	if cmd.Flags().Changed("timeout") {
		s.TimeoutSeconds = int(timeout.Seconds())
	}
	if cmd.Flags().Changed("max-file-size-mb") {
		s.MaxFileSizeMB = maxFileSize
	}
	if cmd.Flags().Changed("delete") {
		s.DeleteRemoved = deleteRemoved
	}
}

// selectProgressFunc picks the progress sink per spec.md §6: JSON lines
// for --json, nothing for --quiet, a live terminal renderer otherwise.
func selectProgressFunc(ro *RootOpts) (orchestrator.ProgressFunc, func()) {
	if ro.JSONOut {
		enc := json.NewEncoder(os.Stdout)
		return func(p orchestrator.Progress) { _ = enc.Encode(p) }, func() {}
	}
	if ro.Quiet {
		return nil, func() {}
	}
	ui := tui.NewLiveRenderer()
	return ui.Handler(), ui.Close
}

func resolveSettings(ro *RootOpts) (config.Settings, error) {
	return config.Load(ro.ConfigPath)
}
