// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iso15926vis/rdlvis/internal/catalog"
	"github.com/iso15926vis/rdlvis/internal/config"
	"github.com/iso15926vis/rdlvis/internal/history"
	"github.com/iso15926vis/rdlvis/internal/server"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  "Load the current snapshot from history and serve the graph API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
				a.cfg.Networking.Listen = listen
			}
			if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
				a.cfg.Storage.Watch = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Starting rdlvis on %s\n", a.cfg.Networking.Listen)
			return serve(ctx, a.cfg)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().Bool("no-watch", false, "do not follow history changes made by other processes")

	return cmd
}

// serve wires history, catalog and server, then blocks until ctx is done.
func serve(ctx context.Context, cfg *config.Config) error {
	h, err := history.Open(cfg.Storage.HistoryDB, cfg.Storage.SnapshotDir)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	cat := catalog.New(h, cfg.Graph.EngineSettings())
	svc := catalog.NewService(cat)

	services, err := server.NewServices(svc, svc)
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeCLISetupFailure, "creating services")
	}

	srv, err := server.New(server.Config{
		ListenAddr:   cfg.Networking.Listen,
		CORSOrigins:  cfg.Networking.CORSOrigins,
		ReadTimeout:  cfg.Networking.ReadTimeout,
		WriteTimeout: cfg.Networking.WriteTimeout,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Networking.RateLimit.RequestsPerSecond,
			Burst:             cfg.Networking.RateLimit.Burst,
		},
		Version: version,
	})
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeCLISetupFailure, "creating server")
	}
	srv.RegisterServices(services)

	// Serving without a snapshot is allowed; /health reports degraded until
	// a reload succeeds.
	if st, err := cat.Reload(ctx); err != nil {
		slog.Warn("no snapshot loaded", "error", err)
	} else {
		slog.Info("serving snapshot", "snapshot", st.Snapshot, "triples", st.Triples)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	var watcher *catalog.Watcher
	if cfg.Storage.Watch {
		watcher = catalog.NewWatcher(cfg.Storage.HistoryDB, cat, catalog.DefaultDebounce)
		if err := watcher.Start(gctx); err != nil {
			slog.Warn("history watcher disabled", "error", err)
			watcher = nil
		}
	}

	err = g.Wait()
	if watcher != nil {
		watcher.Wait()
	}
	return err
}
