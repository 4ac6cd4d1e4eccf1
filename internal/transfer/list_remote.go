// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RemoteFileInfo describes one entry returned by ListRemote, parsed from
// rsync's --list-only output.
type RemoteFileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// rsync --list-only emits lines shaped like:
//
//	-rw-r--r--     1,234,567 2024/03/18 09:41:02 1/2/3/4/12345/12345.rdf
//	drwxr-xr-x             0 2024/03/18 09:41:02 1/2/3/4/12345
var listLinePattern = regexp.MustCompile(
	`^(\S{10})\s+([\d,]+)\s+(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2})\s+(.+)$`)

// ListRemote enumerates remote entries under endpoint without transferring
// anything, by running rsync in --list-only mode. pattern, if non-empty, is
// passed through as an --include filter (paired with a trailing --exclude=*
// so only matches survive).
func (d *Driver) ListRemote(ctx context.Context, endpoint, pattern string) ([]RemoteFileInfo, error) {
	rsyncPath, err := discoverRsync(d.opts.RsyncPath)
	if err != nil {
		return nil, err
	}

	args := []string{"--list-only", "--recursive"}
	if pattern != "" {
		args = append(args, "--include="+pattern, "--exclude=*")
	}
	args = append(args, endpoint)

	cmd := exec.CommandContext(ctx, rsyncPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe stdout: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start rsync --list-only: %w", err)
	}

	var entries []RemoteFileInfo
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if info, ok := parseListLine(scanner.Text()); ok {
			entries = append(entries, info)
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	if waitErr != nil {
		return entries, fmt.Errorf("rsync --list-only failed: %w: %s", waitErr, stderr.String())
	}
	if scanErr != nil {
		return entries, fmt.Errorf("read rsync --list-only output: %w", scanErr)
	}
	return entries, nil
}

func parseListLine(line string) (RemoteFileInfo, bool) {
	m := listLinePattern.FindStringSubmatch(line)
	if m == nil {
		return RemoteFileInfo{}, false
	}
	perms, sizeStr, timeStr, path := m[1], m[2], m[3], m[4]

	size, _ := strconv.ParseInt(strings.ReplaceAll(sizeStr, ",", ""), 10, 64)
	modTime, _ := time.Parse("2006/01/02 15:04:05", timeStr)

	return RemoteFileInfo{
		Path:    path,
		Size:    size,
		ModTime: modTime,
		IsDir:   strings.HasPrefix(perms, "d"),
	}, true
}
