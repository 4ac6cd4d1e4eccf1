// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package syncscope

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScope_CallerCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := New(parent, 0)
	defer s.Cancel()

	cancel()
	<-s.Done()

	assert.True(t, s.CallerCancelled())
	assert.False(t, s.TimedOut())
}

func TestScope_Timeout(t *testing.T) {
	s := New(context.Background(), 5*time.Millisecond)
	defer s.Cancel()

	<-s.Done()

	assert.True(t, s.TimedOut())
	assert.False(t, s.CallerCancelled())
}

func TestScope_NoTimeoutNoCancel(t *testing.T) {
	s := New(context.Background(), 0)
	defer s.Cancel()

	select {
	case <-s.Done():
		t.Fatal("scope should not be done without cancel or timeout")
	default:
	}
}
