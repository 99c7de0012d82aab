// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package health describes the service health report shared by the server
// and the CLI.
package health

import "time"

// Status is the coarse health of a running server.
type Status string

const (
	// StatusOK means a snapshot is loaded and queries can be answered.
	StatusOK Status = "ok"
	// StatusDegraded means the process is up but has no snapshot to serve.
	StatusDegraded Status = "degraded"
)

// Report is a point-in-time health snapshot safe to serialize to JSON.
type Report struct {
	Status   Status     `json:"status" doc:"ok when a snapshot is being served"`
	Version  string     `json:"version,omitempty" doc:"Server version"`
	Snapshot string     `json:"snapshot,omitempty" doc:"Name of the served snapshot"`
	Triples  int        `json:"triples" doc:"Triples in the served snapshot"`
	LoadedAt *time.Time `json:"loaded_at,omitempty" doc:"When the served snapshot was loaded"`
	Uptime   string     `json:"uptime" doc:"Time since the server started"`
}

// Evaluate returns the status for a server that has (or has not) loaded a
// snapshot.
func Evaluate(loaded bool) Status {
	if loaded {
		return StatusOK
	}
	return StatusDegraded
}

// Healthy reports whether s allows queries.
func (s Status) Healthy() bool {
	return s == StatusOK
}
