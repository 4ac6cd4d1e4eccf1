// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gutenbergsync/internal/config"
)

func newConfigCmd(ro *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate a gutenbergsync config file",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with built-in defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists; remove it first or pick a different --output", output)
			}

			b, err := yaml.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("marshal default config: %w", err)
			}
			if err := os.WriteFile(output, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Printf("wrote default config to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "gutenbergsync.yaml", "Destination path for the generated config")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and sanity-check a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("--path is required")
			}
			settings, err := config.Load(path)
			if err != nil {
				return err
			}
			if settings.TargetDirectory == "" {
				return fmt.Errorf("targetDirectory must not be empty")
			}
			if settings.MaxRetries < 0 {
				return fmt.Errorf("maxRetries must not be negative")
			}
			fmt.Printf("%s is valid\n", path)
			fmt.Printf("  targetDirectory: %s\n", settings.TargetDirectory)
			fmt.Printf("  catalogDatabase: %s\n", settings.ResolveDatabasePath())
			fmt.Printf("  preset:          %s\n", settings.Preset)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Path to the config file to validate")
	return cmd
}
