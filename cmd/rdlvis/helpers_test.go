// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated data directory with a config file pointing at it.
type testEnv struct {
	dir     string
	cfgPath string
}

func newTestEnv(t *testing.T, extra string) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rdlvis.yaml")
	body := fmt.Sprintf(`storage:
  data_dir: %s
networking:
  listen: 127.0.0.1:1
logging:
  level: error
%s`, filepath.Join(dir, "db"), extra)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	return &testEnv{dir: dir, cfgPath: cfgPath}
}

func (e *testEnv) snapshotDir() string {
	return filepath.Join(e.dir, "db", "storage")
}

// run executes the root command with args and the env's config.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCmd(t, append([]string{"--config", e.cfgPath}, args...)...)
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}
