// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthCmd_RunsWithoutError(t *testing.T) {
	cmd := newHealthCmd(&RootOpts{})
	require.NoError(t, cmd.RunE(cmd, nil))
}
