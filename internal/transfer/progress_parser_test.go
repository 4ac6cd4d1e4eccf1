// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineParser_FileProgressLine(t *testing.T) {
	p := newLineParser()

	ev, ok := p.Parse("      1,234,567  45%   12.34MB/s    0:00:05  cache/epub/1342/pg1342.txt")
	require.True(t, ok)
	assert.Equal(t, "file_progress", ev.Event)
	assert.Equal(t, "cache/epub/1342/pg1342.txt", ev.Path)
	assert.Equal(t, int64(1234567), ev.Bytes)
	assert.Equal(t, 45, ev.Percentage)
	assert.Greater(t, ev.SpeedBps, 0.0)
	assert.Equal(t, 5, ev.ETASeconds)
}

func TestLineParser_CompletionAccumulates(t *testing.T) {
	p := newLineParser()
	p.Parse("    500  100%   1.00MB/s    0:00:00  a.rdf")
	p.Parse("    300  100%   1.00MB/s    0:00:00  b.rdf")

	assert.Equal(t, 2, p.filesSeen)
	assert.Equal(t, int64(800), p.bytesTransferred)
}

func TestLineParser_ScanHint(t *testing.T) {
	p := newLineParser()
	ev, ok := p.Parse("receiving incremental file list")
	require.True(t, ok)
	assert.Equal(t, "scanning", ev.Event)
}

func TestLineParser_FilesToConsider(t *testing.T) {
	p := newLineParser()
	p.Parse("receiving incremental file list")
	ev, ok := p.Parse("12345 files to consider")
	require.True(t, ok)
	assert.Equal(t, "scanning", ev.Event)
	assert.Equal(t, int64(12345), ev.TotalFiles)
}

func TestLineParser_TotalSize(t *testing.T) {
	p := newLineParser()
	ev, ok := p.Parse("total size is 2097152 speedup is 1.02")
	require.True(t, ok)
	assert.Equal(t, "summary", ev.Event)
	assert.Equal(t, int64(2097152), ev.Total)
	assert.Equal(t, int64(2097152), p.bytesTotal)
}

func TestLineParser_ScenarioFive(t *testing.T) {
	p := newLineParser()
	lines := []string{
		"receiving file list",
		"12345 files to consider",
		"  1048576 50% 1.00MB/s 0:00:05 pg1.txt",
		"total size is 2097152 speedup is 1.02",
	}

	var events []ProgressEvent
	for _, line := range lines {
		if ev, ok := p.Parse(line); ok {
			events = append(events, ev)
		}
	}

	require.Len(t, events, 4)
	assert.Equal(t, "scanning", events[0].Event)
	assert.Equal(t, "scanning", events[1].Event)
	assert.Equal(t, int64(12345), events[1].TotalFiles)
	assert.Equal(t, "file_progress", events[2].Event)
	assert.Equal(t, "pg1.txt", events[2].Path)
	assert.Equal(t, int64(1048576), events[2].Bytes)
	assert.Equal(t, 50, events[2].Percentage)
	assert.Equal(t, "summary", events[3].Event)
	assert.Equal(t, int64(2097152), events[3].Total)
}

func TestLineParser_BlankLineIgnored(t *testing.T) {
	p := newLineParser()
	_, ok := p.Parse("   ")
	assert.False(t, ok)
}

func TestLineParser_HeartbeatBeforeFirstProgress(t *testing.T) {
	p := newLineParser()
	ev, ok := p.Parse("rsync: connecting...")
	require.True(t, ok)
	assert.Equal(t, "heartbeat", ev.Event)

	_, ok = p.Parse("some stray unrecognized line")
	assert.False(t, ok)
}

func TestLineParser_KBAndGBUnits(t *testing.T) {
	p := newLineParser()
	ev, ok := p.Parse("   100  10%   2.00kB/s    0:00:01  file")
	require.True(t, ok)
	assert.InDelta(t, 2000.0, ev.SpeedBps, 0.01)

	ev, ok = p.Parse("   100  10%   1.00GB/s    0:00:01  file")
	require.True(t, ok)
	assert.Greater(t, ev.SpeedBps, 0.0)
}
