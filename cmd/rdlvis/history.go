// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iso15926vis/rdlvis/internal/history"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage snapshot history",
		Long:  "List, select, add, and delete the snapshots recorded in history.",
	}

	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryUseCmd(a),
		newHistoryDeleteCmd(a),
		newHistoryAddCmd(a),
		newHistoryMenuCmd(a),
	)

	return cmd
}

// openHistory opens the configured history; callers must Close it.
func (a *app) openHistory() (*history.History, error) {
	return history.Open(a.cfg.Storage.HistoryDB, a.cfg.Storage.SnapshotDir)
}

func newHistoryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded snapshots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			snaps, err := h.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(snaps) == 0 {
				_, err := fmt.Fprintln(out, "No snapshots recorded. Run 'rdlvis fetch' or 'rdlvis history add'.")
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "\tNAME\tTRIPLES\tCREATED")
			for _, s := range snaps {
				marker := ""
				if s.Current {
					marker = "*"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", marker, s.Name, s.Triples, s.CreatedAt.Local().Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
}

func newHistoryUseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use [name]",
		Short: "Make a snapshot current and ask a running server to reload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			snap, err := h.Use(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot in use: %s\n", snap.Name)

			if noReload, _ := cmd.Flags().GetBool("no-reload"); !noReload {
				notifyReload(cmd.Context(), cmd.OutOrStdout(), a.serverAddress(cmd))
			}
			return nil
		},
	}

	cmd.Flags().Bool("no-reload", false, "do not notify a running server")
	addAddressFlag(cmd)

	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a snapshot and its file",
		Long:  "Delete a snapshot record and its file. The snapshot in use cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			if err := h.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %q\n", args[0])
			return err
		},
	}
}

func newHistoryAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Import an N-Triples or Turtle file as the current snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			snap, err := h.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s recorded as current (%d triples)\n", snap.Name, snap.Triples)

			if noReload, _ := cmd.Flags().GetBool("no-reload"); !noReload {
				notifyReload(cmd.Context(), cmd.OutOrStdout(), a.serverAddress(cmd))
			}
			return nil
		},
	}

	cmd.Flags().Bool("no-reload", false, "do not notify a running server")
	addAddressFlag(cmd)

	return cmd
}

func newHistoryMenuCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Browse history interactively",
		Long:  "Interactive snapshot menu: arrow keys to navigate, u to use, d to delete, q to quit.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			p := tea.NewProgram(newMenuModel(cmd.Context(), h),
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			final, err := p.Run()
			if err != nil {
				return err
			}

			if m, ok := final.(menuModel); ok && m.used != "" {
				notifyReload(cmd.Context(), cmd.OutOrStdout(), a.serverAddress(cmd))
			}
			return nil
		},
	}

	addAddressFlag(cmd)

	return cmd
}
