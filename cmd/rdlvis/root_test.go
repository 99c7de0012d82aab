// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Help(t *testing.T) {
	out, err := runCmd(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "rdlvis")
	for _, cmd := range []string{"serve", "fetch", "history", "reload", "status", "inspect", "config", "secret", "version"} {
		assert.Contains(t, out, cmd, "root help should list %q subcommand", cmd)
	}
	assert.Contains(t, out, "--config")
	assert.Contains(t, out, "--data-dir")
	assert.Contains(t, out, "--verbose")
}

func TestHistoryCommand_Help(t *testing.T) {
	out, err := runCmd(t, "history", "--help")
	require.NoError(t, err)
	for _, cmd := range []string{"list", "use", "delete", "add", "menu"} {
		assert.Contains(t, out, cmd)
	}
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t, "")

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rdlvis dev")
	assert.Contains(t, out, "history schema: 1")
}

func TestVersionCommand_BootstrapsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	_, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.FileExists(t, home+"/.config/rdlvis/rdlvis.yaml")
}

func TestMissingConfigFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCmd(t, "--config", "/nonexistent/rdlvis.yaml", "version")
	assert.Error(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	env := newTestEnv(t, "graph:\n  max_depth: -1\n")

	_, err := env.run(t, "version")
	assert.Error(t, err)
}

func TestConfigCommand_RedactsPassword(t *testing.T) {
	env := newTestEnv(t, "source:\n  username: reader\n  password: hunter2\n")

	out, err := env.run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded from "+env.cfgPath)
	assert.Contains(t, out, "username: reader")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "hunter2")
}

func TestDataDirFlagOverridesConfig(t *testing.T) {
	env := newTestEnv(t, "")
	other := t.TempDir()

	out, err := env.run(t, "--data-dir", other, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: "+other)
}

func TestDialAddress(t *testing.T) {
	tests := []struct {
		listen string
		want   string
	}{
		{"127.0.0.1:5000", "127.0.0.1:5000"},
		{":5000", "127.0.0.1:5000"},
		{"0.0.0.0:8080", "127.0.0.1:8080"},
		{"[::]:8080", "127.0.0.1:8080"},
		{"example.org:80", "example.org:80"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.listen, func(t *testing.T) {
			assert.Equal(t, tt.want, dialAddress(tt.listen))
		})
	}
}
