// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gutenbergsync/internal/metrics"
	"gutenbergsync/internal/transfer"
)

// newHealthCmd reports whether rsync is reachable and prints a snapshot of
// a newly built metrics registry (so every value is zero). This module has
// no HTTP server to scrape a /metrics endpoint from, so the snapshot is the
// metrics surface.
func newHealthCmd(ro *RootOpts) *cobra.Command {
	var rsyncPath string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check rsync availability and print a metrics snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if res, err := transfer.Discover(rsyncPath); err == nil {
				fmt.Printf("rsync: available at %s (%s/%s, %s)\n", res.Path, res.Platform, res.Source, res.Version)
			} else {
				fmt.Println("rsync: NOT available:", err)
			}

			reg := metrics.New()
			snap, err := reg.Snapshot()
			if err != nil {
				return fmt.Errorf("snapshot metrics: %w", err)
			}
			fmt.Print(snap)
			return nil
		},
	}

	cmd.Flags().StringVar(&rsyncPath, "rsync-path", "", "Override the rsync binary path (defaults to $PATH lookup)")
	return cmd
}
