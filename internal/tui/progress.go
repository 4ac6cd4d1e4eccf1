// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package tui renders a live, adaptive terminal view of a sync run.
// It degrades to plain line-oriented output when stdout is not a
// terminal, and drops color when NO_COLOR is set, matching the cross-platform posture of
// the teacher's renderer it was generalized from.
package tui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"gutenbergsync/internal/orchestrator"
)

// LiveRenderer renders orchestrator.Progress events as a single adaptive
// bar plus a scrolling log of phase transitions and file milestones.
// Where the teacher's renderer tracked one row per concurrently
// downloading file, this renderer tracks one row per sync phase: the
// orchestrator's Progress stream already collapses per-file detail into
// one percentage band per phase, so there is nothing left to tabulate.
type LiveRenderer struct {
	mu          sync.Mutex
	bar         *pb.ProgressBar
	phase       orchestrator.Phase
	interactive bool
	noColor     bool
	start       time.Time
	lastLine    string
}

// NewLiveRenderer creates a renderer writing to stdout.
func NewLiveRenderer() *LiveRenderer {
	lr := &LiveRenderer{
		start:       time.Now(),
		interactive: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		noColor:     os.Getenv("NO_COLOR") != "",
	}
	if lr.noColor {
		color.NoColor = true
	}
	return lr
}

// Handler returns an orchestrator.ProgressFunc that feeds events to the
// renderer. Rendering runs inline under the renderer's mutex, so each call
// returns only after its output is written to stdout.
func (lr *LiveRenderer) Handler() orchestrator.ProgressFunc {
	return func(p orchestrator.Progress) {
		lr.apply(p)
	}
}

func (lr *LiveRenderer) apply(p orchestrator.Progress) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if p.Phase != lr.phase {
		lr.finishBarLocked()
		lr.phase = p.Phase
		lr.printPhaseHeaderLocked(p.Phase)
	}

	if !lr.interactive {
		lr.printPlainLocked(p)
		return
	}

	if lr.bar == nil && p.HasPercent {
		lr.bar = newBar(p.Phase, termWidth())
		lr.bar.Start()
	}

	if lr.bar != nil {
		if p.HasPercent {
			lr.bar.SetCurrent(int64(p.ProgressPercent))
		}
		lr.bar.Set("message", describe(p))
	} else if p.Message != "" {
		fmt.Fprintln(os.Stdout, dim(p.Message))
	}
}

// Close finalizes any open bar and prints a trailing newline.
func (lr *LiveRenderer) Close() {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.finishBarLocked()
	fmt.Fprintln(os.Stdout)
}

func (lr *LiveRenderer) finishBarLocked() {
	if lr.bar != nil {
		lr.bar.Finish()
		lr.bar = nil
	}
}

func (lr *LiveRenderer) printPhaseHeaderLocked(phase orchestrator.Phase) {
	label := string(phase)
	if lr.interactive && !lr.noColor {
		label = phaseColor(phase).Sprint(label)
	}
	fmt.Fprintf(os.Stdout, "== %s phase ==\n", label)
}

func (lr *LiveRenderer) printPlainLocked(p orchestrator.Progress) {
	line := describe(p)
	if line == lr.lastLine {
		return
	}
	lr.lastLine = line
	fmt.Fprintln(os.Stdout, line)
}

func describe(p orchestrator.Progress) string {
	parts := make([]string, 0, 3)
	if p.HasPercent {
		parts = append(parts, fmt.Sprintf("%3d%%", p.ProgressPercent))
	}
	if p.CurrentFile != "" {
		parts = append(parts, truncate(p.CurrentFile, 60))
	}
	if p.Message != "" {
		parts = append(parts, p.Message)
	}
	return strings.Join(parts, "  ")
}

func newBar(phase orchestrator.Phase, width int) *pb.ProgressBar {
	tmpl := pb.ProgressBarTemplate(`{{ string . "phase" | green }} {{bar . "[" "=" ">" "-" "]"}} {{percent .}} {{string . "message"}}`)
	bar := tmpl.New(100)
	bar.SetWidth(width)
	bar.Set("phase", string(phase))
	bar.Set("message", "")
	return bar
}

func phaseColor(phase orchestrator.Phase) *color.Color {
	switch phase {
	case orchestrator.PhaseMetadata:
		return color.New(color.FgCyan, color.Bold)
	case orchestrator.PhaseContent:
		return color.New(color.FgGreen, color.Bold)
	default:
		return color.New(color.Bold)
	}
}

func truncate(s string, w int) string {
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "...")
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 100
	}
	if w > 140 {
		w = 140
	}
	return w
}

func dim(s string) string {
	return color.New(color.Faint).Sprint(s)
}
