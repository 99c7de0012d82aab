// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iso15926vis/rdlvis/internal/metrics"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// DefaultDebounce collapses bursts of database writes into one refresh.
const DefaultDebounce = 250 * time.Millisecond

// Refresher is satisfied by *Catalog.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// Watcher refreshes the catalog when the history database changes, so a
// `history use` from another process takes effect without a reload call.
type Watcher struct {
	dbPath   string
	target   Refresher
	debounce time.Duration

	wg sync.WaitGroup
}

// NewWatcher watches the history database at dbPath. A non-positive
// debounce uses DefaultDebounce.
func NewWatcher(dbPath string, target Refresher, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dbPath: dbPath, target: target, debounce: debounce}
}

// Start begins watching until ctx is cancelled. The directory is watched
// rather than the file so SQLite's journal and WAL files are seen too.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeCatalogReloadFailure, "creating watcher")
	}

	dir := filepath.Dir(w.dbPath)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return rdlerr.Wrap(err, rdlerr.CodeCatalogReloadFailure, "watching history directory", rdlerr.FieldPath(dir))
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fw.Close() //nolint:errcheck

		slog.Debug("history watcher started", "path", w.dbPath)

		// Refreshes run on this goroutine, so Wait also covers them.
		var (
			timer *time.Timer
			fire  <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if !w.relevant(event) {
					continue
				}
				metrics.WatcherEventsTotal.Inc()

				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				w.refresh(ctx)

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				slog.Warn("history watcher error", "error", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Wait blocks until the watch loop and any refresh it started have exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	base := filepath.Base(w.dbPath)
	return strings.HasPrefix(filepath.Base(event.Name), base)
}

func (w *Watcher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	changed, err := w.target.Refresh(ctx)
	if err != nil {
		slog.Warn("history refresh failed", "error", err)
		return
	}
	if changed {
		slog.Info("served snapshot follows history change")
	}
}
