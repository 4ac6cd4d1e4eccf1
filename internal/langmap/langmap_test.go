// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package langmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryMap_AllEntriesRoundTrip(t *testing.T) {
	for _, name := range Names() {
		code, canonicalName, ok := TryMap(name)
		assert.True(t, ok, "name %q should map", name)
		assert.Equal(t, name, canonicalName)

		gotCode, gotName, ok := TryMap(code)
		assert.True(t, ok, "code %q should map", code)
		assert.Equal(t, code, gotCode)
		assert.Equal(t, name, gotName)
	}
}

func TestTryMap_CaseInsensitive(t *testing.T) {
	code, name, ok := TryMap("ENGLISH")
	assert.True(t, ok)
	assert.Equal(t, "en", code)
	assert.Equal(t, "English", name)

	code, name, ok = TryMap("EN")
	assert.True(t, ok)
	assert.Equal(t, "en", code)
	assert.Equal(t, "English", name)
}

func TestTryMap_Miss(t *testing.T) {
	_, _, ok := TryMap("Klingon")
	assert.False(t, ok)
}

func TestTryMap_Empty(t *testing.T) {
	_, _, ok := TryMap("   ")
	assert.False(t, ok)
}

func TestTryMap_UniqueKeys(t *testing.T) {
	// nameToCode is a Go map literal: duplicate source keys would have been
	// a compile error, so this just documents the invariant by count.
	assert.Equal(t, len(Names()), len(nameToCode))
	assert.GreaterOrEqual(t, len(Names()), 60)
}
