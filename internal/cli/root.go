// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package cli is the composition root: it builds the config, catalog
// store, transfer driver, orchestrator, and metrics registry, and wires
// them behind a cobra command tree. Generalized from the teacher's
// internal/cli/root.go, which played the same role for a single
// downloader job.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Exit codes per spec.md §6.
const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitUserCancel = 130
)

// RootOpts holds global CLI options shared by every subcommand.
type RootOpts struct {
	ConfigPath string
	JSONOut    bool
	Quiet      bool
	Verbose    bool
}

// Execute runs the CLI with the given version string and returns the
// process exit code.
func Execute(version string) int {
	ro := &RootOpts{}
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	root := &cobra.Command{
		Use:           "gutenbergsync",
		Short:         "Mirror and catalog the Project Gutenberg archive over rsync",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.PersistentFlags().StringVar(&ro.ConfigPath, "config", "", "Path to config file (JSON or YAML)")
	root.PersistentFlags().BoolVar(&ro.JSONOut, "json", false, "Emit machine-readable JSON output")
	root.PersistentFlags().BoolVarP(&ro.Quiet, "quiet", "q", false, "Quiet mode (minimal logs)")
	root.PersistentFlags().BoolVarP(&ro.Verbose, "verbose", "v", false, "Verbose logs (debug details)")

	root.AddCommand(newSyncCmd(ctx, ro))
	root.AddCommand(newCatalogCmd(ro))
	root.AddCommand(newConfigCmd(ro))
	root.AddCommand(newHealthCmd(ro))
	root.AddCommand(newVersionCmd(version))
	root.SetHelpCommand(&cobra.Command{Use: "help", Hidden: true})

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "cancelled")
		return ExitUserCancel
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return ExitError
}

// signalContext derives a context cancelled by SIGINT/SIGTERM, giving the
// orchestrator a chance to unwind a rsync subprocess and finish whatever
// catalog transaction is in flight rather than being killed outright.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
