// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/iso15926vis/rdlvis/internal/config"
	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/history"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	"github.com/spf13/cobra"
)

// inspection is what inspect prints for one node.
type inspection struct {
	Snapshot string        `json:"snapshot"`
	Node     *graph.Detail `json:"node"`
	Parents  []*graph.Node `json:"parents"`
	Children []*graph.Node `json:"children"`
}

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [uri]",
		Short: "Show a node from a snapshot without a server",
		Long:  "Load a snapshot from history (the current one by default) and print a node with its parents and children.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("snapshot")
			dep, _ := cmd.Flags().GetBool("dep")
			asJSON, _ := cmd.Flags().GetBool("json")

			res, err := inspect(cmd.Context(), a.cfg, name, args[0], dep)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return printInspection(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().String("snapshot", "", "snapshot name (default: the one in use)")
	cmd.Flags().Bool("dep", false, "include deprecated parents and children")
	cmd.Flags().Bool("json", false, "print JSON")

	return cmd
}

func inspect(ctx context.Context, cfg *config.Config, name, uri string, dep bool) (*inspection, error) {
	h, err := history.Open(cfg.Storage.HistoryDB, cfg.Storage.SnapshotDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = h.Close() }()

	var snap *history.Snapshot
	if name == "" {
		snap, err = h.Current(ctx)
	} else {
		snap, err = h.Get(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	store, err := rdf.Load(ctx, snap.Path)
	if err != nil {
		return nil, err
	}
	e := graph.NewEngine(store, cfg.Graph.EngineSettings())

	detail, err := e.FullInfo(uri, true)
	if err != nil {
		return nil, err
	}

	q := graph.DefaultQueryOptions()
	q.IncludeDeprecated = dep

	parents, err := e.Parents(uri, graph.ParentOptions{QueryOptions: q})
	if err != nil {
		return nil, err
	}
	children, err := e.Children(uri, graph.ChildOptions{QueryOptions: q})
	if err != nil {
		return nil, err
	}

	return &inspection{Snapshot: snap.Name, Node: detail, Parents: parents, Children: children}, nil
}

func printInspection(w io.Writer, in *inspection) error {
	d := in.Node
	lines := []string{
		d.ID,
		fmt.Sprintf("  snapshot:   %s", in.Snapshot),
		fmt.Sprintf("  label:      %s", d.Label),
	}
	for _, t := range d.Types {
		lines = append(lines, fmt.Sprintf("  type:       %s", t))
	}
	if d.Dep != "" {
		lines = append(lines, fmt.Sprintf("  deprecated: %s", d.Dep))
	}
	if d.Definition != "" {
		lines = append(lines, fmt.Sprintf("  definition: %s", d.Definition))
	}

	lines = append(lines, fmt.Sprintf("  parents:    %d", len(in.Parents)))
	for _, n := range in.Parents {
		lines = append(lines, "    - "+nodeLine(n))
	}
	lines = append(lines, fmt.Sprintf("  children:   %d", len(in.Children)))
	for _, n := range in.Children {
		lines = append(lines, "    - "+nodeLine(n))
	}

	if len(d.Properties) > 0 {
		lines = append(lines, "  properties:")
		for _, p := range slices.Sorted(maps.Keys(d.Properties)) {
			for _, v := range d.Properties[p] {
				lines = append(lines, fmt.Sprintf("    %s: %s", p, v))
			}
		}
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func nodeLine(n *graph.Node) string {
	s := n.ID
	if n.Label != "" {
		s += "  " + n.Label
	}
	if n.Dep != "" {
		s += "  (deprecated " + n.Dep + ")"
	}
	return s
}
