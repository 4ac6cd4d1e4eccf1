// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package config builds the immutable configuration value used across the
// sync pipeline: defaults, overlaid by an optional file, overlaid by
// environment variables, overlaid by explicit CLI flags (applied by the
// caller after Load returns). No global/mutable singleton is kept; callers
// construct a Settings once and pass it by value.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codingconcepts/env"
	"gopkg.in/yaml.v3"
)

// Settings is the fully-resolved, immutable configuration for one run.
type Settings struct {
	TargetDirectory    string `json:"targetDirectory" yaml:"targetDirectory" env:"GUTENBERG_SYNC_TARGET_DIRECTORY" default:"./gutenberg-mirror"`
	BandwidthLimitKBps int    `json:"bandwidthLimitKBps" yaml:"bandwidthLimitKBps" env:"GUTENBERG_SYNC_BANDWIDTH_LIMIT_KBPS" default:"0"`
	CatalogDatabasePath string `json:"catalogDatabasePath" yaml:"catalogDatabasePath" env:"GUTENBERG_CATALOG_DATABASE_PATH"`
	LoggingLevel       string `json:"loggingLevel" yaml:"loggingLevel" env:"GUTENBERG_LOGGING_LEVEL" default:"info"`
	LoggingFilePath    string `json:"loggingFilePath" yaml:"loggingFilePath" env:"GUTENBERG_LOGGING_FILE_PATH"`

	Preset        string `json:"preset" yaml:"preset" default:"text-only"`
	MetadataOnly  bool   `json:"metadataOnly" yaml:"metadataOnly"`
	DryRun        bool   `json:"dryRun" yaml:"dryRun"`
	VerifyAfterSync bool `json:"verifyAfterSync" yaml:"verifyAfterSync"`
	TimeoutSeconds  int  `json:"timeoutSeconds" yaml:"timeoutSeconds"`

	AutoRetry  bool `json:"autoRetry" yaml:"autoRetry"`
	MaxRetries int  `json:"maxRetries" yaml:"maxRetries" default:"3"`
	RetryDelaySeconds int `json:"retryDelaySeconds" yaml:"retryDelaySeconds" default:"30"`

	MaxFileSizeMB int  `json:"maxFileSizeMB" yaml:"maxFileSizeMB" default:"0"`
	DeleteRemoved bool `json:"deleteRemoved" yaml:"deleteRemoved"`

	MetadataEndpoint string `json:"metadataEndpoint" yaml:"metadataEndpoint" default:"aleph.gutenberg.org::gutenberg-epub"`
	ContentEndpoint  string `json:"contentEndpoint" yaml:"contentEndpoint" default:"aleph.gutenberg.org::gutenberg"`
}

// Default returns Settings with built-in defaults applied, no file or
// environment overlay.
func Default() Settings {
	s := Settings{}
	_ = env.Set(&s) // applies `default:` tags; env vars not present in this process are skipped
	return s
}

// Load builds the resolved Settings: defaults -> file (if path != "") ->
// environment variables. CLI flag overlay is the caller's responsibility
// (flags always win and are easiest to apply after Load returns).
func Load(path string) (Settings, error) {
	s := Settings{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read config %s: %w", path, err)
		}
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(b, &s); err != nil {
				return s, fmt.Errorf("parse yaml config %s: %w", path, err)
			}
		default:
			if err := json.Unmarshal(b, &s); err != nil {
				return s, fmt.Errorf("parse json config %s: %w", path, err)
			}
		}
	}

	// env.Set only fills zero-valued fields from `default:` tags and
	// overwrites fields that have a matching `env:` var set, so applying it
	// after the file overlay gives env vars precedence over file values
	// (env var -> file -> default) while still letting defaults backfill
	// anything the file omitted.
	if err := env.Set(&s); err != nil {
		return s, fmt.Errorf("apply environment overlay: %w", err)
	}

	return s, nil
}

// ResolveDatabasePath returns CatalogDatabasePath when set, otherwise
// {targetDirectory}/gutenberg.db. After Load, CatalogDatabasePath holds
// GUTENBERG_CATALOG_DATABASE_PATH when that variable is set (it overrides
// the file's value), else the file's catalogDatabasePath.
func (s Settings) ResolveDatabasePath() string {
	if s.CatalogDatabasePath != "" {
		return s.CatalogDatabasePath
	}
	return filepath.Join(s.TargetDirectory, "gutenberg.db")
}
