// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

//go:build windows

package config

import "log/slog"

// WarnInsecurePermissions is a no-op on Windows, which uses ACLs rather than mode bits.
func WarnInsecurePermissions(path string, _ bool) {
	if path != "" {
		slog.Debug("config permission check not implemented on Windows", "path", path)
	}
}
