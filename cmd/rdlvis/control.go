// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"fmt"
	"time"

	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/iso15926vis/rdlvis/pkg/health"
	"github.com/spf13/cobra"
)

func newReloadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Ask the running server to reload the current snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			notifyReload(cmd.Context(), cmd.OutOrStdout(), a.serverAddress(cmd))
			return nil
		},
	}

	addAddressFlag(cmd)

	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status",
		Long:  "Check the running server's health endpoint and display what it is serving.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.serverAddress(cmd)
			out := cmd.OutOrStdout()

			var report health.Report
			if err := newServerClient(addr).getJSON(cmd.Context(), "/health", &report); err != nil {
				if rdlerr.HasCode(err, rdlerr.CodeCLIServerNotRunning) {
					_, _ = fmt.Fprintf(out, "Server at %s is not running (connection refused)\n", addr)
					return nil
				}
				_, _ = fmt.Fprintf(out, "Server at %s: %s\n", addr, err)
				return nil
			}

			_, _ = fmt.Fprintf(out, "Server at %s: %s (version %s, up %s)\n", addr, report.Status, report.Version, report.Uptime)
			if report.Status.Healthy() {
				loaded := ""
				if report.LoadedAt != nil {
					loaded = ", loaded " + report.LoadedAt.Local().Format(time.DateTime)
				}
				_, _ = fmt.Fprintf(out, "Snapshot: %s (%d triples%s)\n", report.Snapshot, report.Triples, loaded)
			} else {
				_, _ = fmt.Fprintln(out, "Snapshot: none loaded")
			}
			return nil
		},
	}

	addAddressFlag(cmd)

	return cmd
}
