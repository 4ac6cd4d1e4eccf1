// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeRsync writes an executable shell script standing in for rsync,
// so Driver tests exercise the real subprocess/pipe plumbing without
// depending on rsync being installed in the test environment.
func writeFakeRsync(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-rsync.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestDriver_Sync_Success(t *testing.T) {
	script := `
echo "receiving incremental file list"
echo "      100  100%   1.00MB/s    0:00:00  a.rdf"
exit 0
`
	fake := writeFakeRsync(t, script)
	dest := t.TempDir()

	d := NewDriver(Options{
		Endpoint:    "example::gutenberg",
		Destination: dest,
		RsyncPath:   fake,
	})

	var events []ProgressEvent
	res := d.Sync(context.Background(), func(ev ProgressEvent) { events = append(events, ev) })

	require.NoError(t, res.Err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, 1, res.FilesTransferred)
	assert.Equal(t, int64(100), res.BytesTransferred)
	assert.NotEmpty(t, events)
}

func TestDriver_Sync_FailsAfterRetries(t *testing.T) {
	fake := writeFakeRsync(t, "echo boom 1>&2\nexit 23\n")
	dest := t.TempDir()

	d := NewDriver(Options{
		Endpoint:    "example::gutenberg",
		Destination: dest,
		RsyncPath:   fake,
		Retries:     2,
		RetryDelay:  1 * time.Millisecond,
	})

	var retries int
	res := d.Sync(context.Background(), func(ev ProgressEvent) {
		if ev.Event == "retry" {
			retries++
		}
	})

	assert.False(t, res.Succeeded)
	require.Error(t, res.Err)
	assert.Equal(t, 23, res.ExitCode)
	assert.Equal(t, 2, retries)
}

func TestDriver_Sync_CallerCancellation(t *testing.T) {
	fake := writeFakeRsync(t, "sleep 5\nexit 0\n")
	dest := t.TempDir()

	d := NewDriver(Options{
		Endpoint:    "example::gutenberg",
		Destination: dest,
		RsyncPath:   fake,
		Retries:     0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := d.Sync(ctx, nil)
	assert.False(t, res.Succeeded)
	assert.True(t, res.Cancelled)
	assert.False(t, res.TimedOut)
}

func TestDriver_Sync_InternalTimeout(t *testing.T) {
	fake := writeFakeRsync(t, "sleep 5\nexit 0\n")
	dest := t.TempDir()

	d := NewDriver(Options{
		Endpoint:    "example::gutenberg",
		Destination: dest,
		RsyncPath:   fake,
		Retries:     0,
		Timeout:     50 * time.Millisecond,
	})

	res := d.Sync(context.Background(), nil)
	assert.False(t, res.Succeeded)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Cancelled)
}

func TestDriver_BuildArgs_DryRunAndBandwidth(t *testing.T) {
	d := NewDriver(Options{
		Endpoint:           "example::gutenberg",
		Destination:        "/tmp/out",
		DryRun:             true,
		BandwidthLimitKBps: 512,
		IncludePatterns:    []string{"*.rdf"},
		ExcludePatterns:    []string{"*.jpg"},
		MaxFileSizeMB:      50,
		DeleteRemoved:      true,
		ShowProgress:       true,
	})
	args := d.buildArgs()
	assert.Contains(t, args, "--dry-run")
	assert.Contains(t, args, "--bwlimit=512")
	assert.Contains(t, args, "--include=*.rdf")
	assert.Contains(t, args, "--exclude=*.jpg")
	assert.Contains(t, args, "--max-size=50m")
	assert.Contains(t, args, "--delete")
	assert.Contains(t, args, "--progress")
	assert.Contains(t, args, "--partial-dir=.rsync-partial")
	assert.Contains(t, args, "--verbose")
	assert.Equal(t, "example::gutenberg", args[len(args)-2])
	assert.Equal(t, "/tmp/out", args[len(args)-1])
}

func TestDriver_ListRemote(t *testing.T) {
	script := `
echo "drwxr-xr-x              0 2024/03/18 09:41:02 1"
echo "-rw-r--r--        123456 2024/03/18 09:41:05 1/pg1.txt"
exit 0
`
	fake := writeFakeRsync(t, script)
	d := NewDriver(Options{RsyncPath: fake})

	entries, err := d.ListRemote(context.Background(), "example::gutenberg", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, "1/pg1.txt", entries[1].Path)
	assert.Equal(t, int64(123456), entries[1].Size)
}

func TestIsAvailable_FakeRsync(t *testing.T) {
	fake := writeFakeRsync(t, "exit 0\n")
	assert.True(t, IsAvailable(fake))
}
