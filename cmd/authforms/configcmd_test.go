// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authforms/authforms/internal/config"
	"github.com/authforms/authforms/internal/forms"
)

func TestConfigInit_WritesSampleToXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	output, err := execute(t, "config", "init")
	require.NoError(t, err)

	want := filepath.Join(dir, "authforms", "config.yaml")
	assert.Contains(t, output, want)

	cfg, err := config.Load(want, false, nil)
	require.NoError(t, err)
	assert.Equal(t, config.Sample(), *cfg)
	require.NoError(t, cfg.Validate())

	// A second init refuses to overwrite.
	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "authforms.yaml")

	_, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestConfigInit_DemoAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authforms.yaml")
	_, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)

	output, err := execute(t, "--config", path, "--backend-latency", "0s", "login",
		"--email", "user@example.com", "--password", "password")
	require.NoError(t, err)
	assert.Contains(t, output, "status: succeeded")

	output, err = execute(t, "--config", path, "--backend-latency", "0s", "register",
		"--email", "test@example.com",
		"--password", "longenough1", "--confirm-password", "longenough1",
		"--terms")
	require.Error(t, err)
	assert.Contains(t, output, forms.MsgEmailTakenField)
}

func TestConfigValidate(t *testing.T) {
	output, err := execute(t, "--config", writeTestConfig(t, testConfig), "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, output, "Configuration is valid")

	_, err = execute(t, "--config", writeTestConfig(t, "backend:\n  max_retries: 99\n"), "config", "validate")
	require.Error(t, err)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config", "validate")
	require.Error(t, err)
}

func TestConfigSchema(t *testing.T) {
	output, err := execute(t, "config", "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &schema))
	assert.Equal(t, config.SchemaID, schema["$id"])
}
