// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iso15926vis/rdlvis/internal/config"
	"github.com/iso15926vis/rdlvis/internal/history"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	"github.com/iso15926vis/rdlvis/internal/sparql"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a new snapshot from the SPARQL endpoint",
		Long: "Page the configured SPARQL endpoint, write the result as an N-Triples snapshot, " +
			"record it in history as the current snapshot and ask a running server to reload.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := a.cfg.Source
			if endpoint, _ := cmd.Flags().GetString("endpoint"); endpoint != "" {
				src.SPARQLEndpoint = endpoint
			}
			if cmd.Flags().Changed("graph") {
				src.Graphs, _ = cmd.Flags().GetStringSlice("graph")
			}
			if cmd.Flags().Changed("batch-size") {
				src.BatchSize, _ = cmd.Flags().GetInt("batch-size")
			}

			snap, err := fetchSnapshot(cmd.Context(), cmd.OutOrStdout(), src, a.cfg.Storage)
			if err != nil || snap == nil {
				return err
			}

			if noReload, _ := cmd.Flags().GetBool("no-reload"); !noReload {
				notifyReload(cmd.Context(), cmd.OutOrStdout(), a.serverAddress(cmd))
			}
			return nil
		},
	}

	cmd.Flags().String("endpoint", "", "SPARQL endpoint (default: source.sparql_endpoint)")
	cmd.Flags().StringSlice("graph", nil, "named graph to query; repeatable (default: source.graphs)")
	cmd.Flags().Int("batch-size", sparql.DefaultBatchSize, "rows per page")
	cmd.Flags().Bool("no-reload", false, "do not notify a running server")
	addAddressFlag(cmd)

	return cmd
}

// fetchSnapshot pulls the endpoint into a new history snapshot. It returns a
// nil snapshot, and leaves history untouched, when the endpoint yields no
// triples.
func fetchSnapshot(ctx context.Context, w io.Writer, src config.SourceConfig, storage config.StorageConfig) (*history.Snapshot, error) {
	if src.SPARQLEndpoint == "" {
		return nil, rdlerr.New(rdlerr.CodeCLIInputInvalid, "no SPARQL endpoint configured (set source.sparql_endpoint or --endpoint)")
	}

	f, err := sparql.New(sparql.Options{
		Endpoint:  src.SPARQLEndpoint,
		Graphs:    src.Graphs,
		BatchSize: src.BatchSize,
		BaseIRI:   src.BaseIRI,
		Query:     src.Query,
		Username:  src.Username,
		Password:  src.Password,
		Timeout:   src.Timeout,
	})
	if err != nil {
		return nil, err
	}

	_, _ = fmt.Fprintf(w, "Fetching from %s...\n", src.SPARQLEndpoint)
	res, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintf(w, "Fetched %d rows in %d pages (%d skipped), %d triples\n",
		res.Rows, res.Pages, res.Skipped, res.Store.Len())

	if res.Store.Len() == 0 {
		_, _ = fmt.Fprintln(w, "No triples fetched; history unchanged.")
		return nil, nil
	}

	h, err := history.Open(storage.HistoryDB, storage.SnapshotDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = h.Close() }()

	name, err := h.NextName(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	path := h.Path(name)
	if err := writeSnapshot(path, res.Store); err != nil {
		return nil, err
	}

	snap, err := h.Add(ctx, name, res.Store.Len())
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	_, _ = fmt.Fprintf(w, "Snapshot %s recorded as current\n", snap.Name)
	return snap, nil
}

func writeSnapshot(path string, store *rdf.Store) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "creating snapshot", rdlerr.FieldPath(path))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = rdlerr.Wrap(cerr, rdlerr.CodeSnapshotWriteFailure, "closing snapshot", rdlerr.FieldPath(path))
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return rdf.WriteNTriples(f, store)
}
