// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package transfer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/VividCortex/ewma"
)

// rsync --progress emits one stats line per file, with the filename
// trailing the stats rather than preceding them:
//
//	  1,234,567  45%   12.34MB/s    0:00:05  some/relative/path.rdf
//
// byte count, percentage, rate, and ETA are optional-width fields; the
// filename is whatever is left after them. lineParser also recognizes the
// two preamble lines rsync prints before any per-file stats: the file-list
// scan hint and its "N files to consider" / "total size is N" summaries.
var progressLinePattern = regexp.MustCompile(
	`^\s*([\d,]+)\s+(\d+)%(?:\s+([\d.]+)(kB|MB|GB|B)/s)?(?:\s+(\d+:\d{2}(?::\d{2})?))?\s+(\S.*)$`)

var scanHintPattern = regexp.MustCompile(`^(receiving|sending) (incremental )?file list`)

var totalSizePattern = regexp.MustCompile(`^total size is ([\d,]+)`)

var filesToConsiderPattern = regexp.MustCompile(`^([\d,]+) files to consider`)

// lineParser turns a stream of raw rsync stdout lines into ProgressEvent
// values, smoothing instantaneous speed with an exponential moving average
// so a single slow read doesn't make the reported rate jump around.
type lineParser struct {
	speed            ewma.MovingAverage
	filesSeen        int
	bytesTransferred int64
	bytesTotal       int64
	sawAny           bool
}

func newLineParser() *lineParser {
	return &lineParser{speed: ewma.NewMovingAverage()}
}

// Parse consumes one line of rsync output and returns the ProgressEvent it
// represents, or ok=false if the line carries no reportable progress (rsync
// emits a fair amount of blank/summary noise between the parts we care
// about).
func (p *lineParser) Parse(line string) (ProgressEvent, bool) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ProgressEvent{}, false
	}

	if scanHintPattern.MatchString(trimmed) {
		p.sawAny = true
		return ProgressEvent{Time: time.Now(), Event: "scanning", Message: trimmed}, true
	}

	if m := filesToConsiderPattern.FindStringSubmatch(trimmed); m != nil {
		p.sawAny = true
		total := parseCommaInt(m[1])
		return ProgressEvent{Time: time.Now(), Event: "scanning", Message: trimmed, TotalFiles: total}, true
	}

	if m := totalSizePattern.FindStringSubmatch(trimmed); m != nil {
		p.sawAny = true
		p.bytesTotal = parseCommaInt(m[1])
		return ProgressEvent{Time: time.Now(), Event: "summary", Message: trimmed, Total: p.bytesTotal}, true
	}

	if m := progressLinePattern.FindStringSubmatch(line); m != nil {
		p.sawAny = true
		bytes := parseCommaInt(m[1])
		pct, _ := strconv.Atoi(m[2])

		ev := ProgressEvent{
			Time:       time.Now(),
			Event:      "file_progress",
			Path:       strings.TrimSpace(m[6]),
			Bytes:      bytes,
			Percentage: pct,
		}
		if m[3] != "" {
			rate, _ := strconv.ParseFloat(m[3], 64)
			p.speed.Add(rate * unitMultiplier(m[4]))
			ev.SpeedBps = p.speed.Value()
		}
		if m[5] != "" {
			ev.ETASeconds = parseETASeconds(m[5])
		}
		if pct == 100 {
			p.filesSeen++
			p.bytesTransferred += bytes
		}
		return ev, true
	}

	// Any other non-empty line before the first recognized line is a
	// heartbeat so a progress bar does not look stalled during rsync's
	// startup handshake.
	if !p.sawAny {
		p.sawAny = true
		return ProgressEvent{Time: time.Now(), Event: "heartbeat", Message: trimmed}, true
	}

	return ProgressEvent{}, false
}

// parseETASeconds converts rsync's "H:MM:SS" or "M:SS" ETA field to seconds.
func parseETASeconds(s string) int {
	parts := strings.Split(s, ":")
	seconds := 0
	for _, p := range parts {
		n, _ := strconv.Atoi(p)
		seconds = seconds*60 + n
	}
	return seconds
}

func parseCommaInt(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func unitMultiplier(unit string) float64 {
	switch unit {
	case "kB":
		return 1000
	case "MB":
		return 1000 * 1000
	case "GB":
		return 1000 * 1000 * 1000
	default:
		return 1
	}
}
