// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package history

import "time"

// SetClock replaces the clock used to stamp new snapshots.
func SetClock(h *History, now func() time.Time) {
	h.now = now
}
