// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand_Properties(t *testing.T) {
	cmd := NewServeCmd()

	assert.Equal(t, "serve", cmd.Use)
	assert.Contains(t, cmd.Short, "HTTP")
	assert.Contains(t, cmd.Long, "metrics")
}

func TestServeCommand_Help(t *testing.T) {
	output, err := execute(t, "serve", "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "--http-addr")
	assert.Contains(t, output, "--metrics-addr")
}

func runServeCancelled(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile = ""
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)

	// Cancel immediately so serve starts and shuts straight down.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestServeCommand_StartsAndStops(t *testing.T) {
	output, err := runServeCancelled(t, "serve",
		"--log-level", "error",
		"--http-addr", "127.0.0.1:0",
		"--metrics-addr", "")
	require.NoError(t, err)
	assert.Contains(t, output, "Serving forms on 127.0.0.1:")
}

func TestServeCommand_WithMetrics(t *testing.T) {
	output, err := runServeCancelled(t, "serve",
		"--log-level", "error",
		"--http-addr", "127.0.0.1:0",
		"--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, output, "Serving forms on")
}

func TestServeCommand_ListenFailure(t *testing.T) {
	_, err := runServeCancelled(t, "serve",
		"--log-level", "error",
		"--http-addr", "256.0.0.1:99999",
		"--metrics-addr", "")
	require.Error(t, err)
}
