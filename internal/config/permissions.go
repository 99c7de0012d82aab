// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

//go:build !windows

package config

import (
	"io/fs"
	"log/slog"
	"os"
)

const recommendedMode fs.FileMode = 0o600

// exposedMode returns the permission bits of path and whether group or
// others can read it.
func exposedMode(path string) (fs.FileMode, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, err
	}
	perm := info.Mode().Perm()
	return perm, perm&0o044 != 0, nil
}

// WarnInsecurePermissions reports a config file other users can read. It is
// a warning only when the file holds a plaintext source password; keyring
// references and anonymous endpoints are logged at debug level.
func WarnInsecurePermissions(path string, plaintextPassword bool) {
	if path == "" {
		return
	}

	perm, exposed, err := exposedMode(path)
	if err != nil {
		slog.Debug("could not stat config file for permission check", "path", path, "error", err)
		return
	}
	if !exposed {
		return
	}

	if plaintextPassword {
		slog.Warn("config file with a plaintext source password has insecure permissions; chmod it or use `rdlvis secret set`",
			"path", path, "mode", perm, "recommended", recommendedMode)
		return
	}
	slog.Debug("config file is readable by other users", "path", path, "mode", perm)
}
