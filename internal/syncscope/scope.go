// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package syncscope implements the linked cancellation/timeout scope used
// throughout the sync pipeline. A plain context.Context cannot tell a
// caller-initiated cancellation apart from an internally-created timeout
// firing; Scope adds the bookkeeping to distinguish the two after teardown,
// per the Driver/Orchestrator contract.
package syncscope

import (
	"context"
	"time"
)

// Scope links a caller's context with an optional internal timeout and
// records which source fired once the derived context is done.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	parent    context.Context
	hasDeadline bool
	deadline  time.Time
}

// New derives a Scope from parent. If timeout is 0, no deadline is applied
// and the scope is cancelled only by parent or by explicit Cancel.
func New(parent context.Context, timeout time.Duration) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	s := &Scope{parent: parent}
	if timeout > 0 {
		s.ctx, s.cancel = context.WithTimeout(parent, timeout)
		s.hasDeadline = true
		s.deadline = time.Now().Add(timeout)
	} else {
		s.ctx, s.cancel = context.WithCancel(parent)
	}
	return s
}

// Context returns the derived context to pass to subordinate operations.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Cancel releases resources associated with the scope. Safe to call
// multiple times.
func (s *Scope) Cancel() {
	s.cancel()
}

// CallerCancelled reports whether the scope ended because the caller's
// parent context was cancelled (as opposed to the scope's own timeout).
func (s *Scope) CallerCancelled() bool {
	if s.ctx.Err() == nil {
		return false
	}
	// The parent is only "the cause" if it is itself done; otherwise the
	// derived context's own deadline fired.
	return s.parent.Err() != nil
}

// TimedOut reports whether the scope ended because its own timeout fired,
// as opposed to caller cancellation.
func (s *Scope) TimedOut() bool {
	if s.ctx.Err() == nil {
		return false
	}
	return s.hasDeadline && s.parent.Err() == nil && s.ctx.Err() == context.DeadlineExceeded
}

// Done returns the derived context's Done channel for select statements.
func (s *Scope) Done() <-chan struct{} {
	return s.ctx.Done()
}
