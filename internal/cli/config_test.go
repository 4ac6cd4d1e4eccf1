// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_WritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gutenbergsync.yaml")

	cmd := newConfigInitCmd()
	require.NoError(t, cmd.Flags().Set("output", path))
	require.NoError(t, cmd.RunE(cmd, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "targetDirectory")
}

func TestConfigInit_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gutenbergsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targetDirectory: ./x\n"), 0o644))

	cmd := newConfigInitCmd()
	require.NoError(t, cmd.Flags().Set("output", path))
	err := cmd.RunE(cmd, nil)
	assert.Error(t, err)
}

func TestConfigValidate_RejectsEmptyTargetDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targetDirectory: \"\"\n"), 0o644))

	cmd := newConfigValidateCmd()
	require.NoError(t, cmd.Flags().Set("path", path))
	err := cmd.RunE(cmd, nil)
	assert.Error(t, err)
}

func TestConfigValidate_AcceptsValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targetDirectory: ./mirror\nmaxRetries: 3\n"), 0o644))

	cmd := newConfigValidateCmd()
	require.NoError(t, cmd.Flags().Set("path", path))
	assert.NoError(t, cmd.RunE(cmd, nil))
}
