// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package catalog owns the snapshot currently served. Queries read the
// loaded store through an atomic pointer; reloads build a new store off to
// the side and swap it in.
package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/history"
	"github.com/iso15926vis/rdlvis/internal/metrics"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Source reports which snapshot should be served.
type Source interface {
	Current(ctx context.Context) (*history.Snapshot, error)
}

// Loader reads a snapshot file into a store.
type Loader func(ctx context.Context, path string) (*rdf.Store, error)

// Status describes the loaded snapshot.
type Status struct {
	Loaded   bool      `json:"loaded" doc:"Whether a snapshot is in memory"`
	Snapshot string    `json:"snapshot,omitempty" doc:"Snapshot file name"`
	Triples  int       `json:"triples" doc:"Triples in the loaded snapshot"`
	Subjects int       `json:"subjects" doc:"Distinct subjects in the loaded snapshot"`
	LoadedAt time.Time `json:"loaded_at,omitzero" doc:"When the snapshot was swapped in"`
}

type loaded struct {
	name     string
	store    *rdf.Store
	engine   *graph.Engine
	loadedAt time.Time
}

// Catalog holds the served snapshot.
type Catalog struct {
	src      Source
	settings graph.Settings
	load     Loader

	current atomic.Pointer[loaded]
	group   singleflight.Group
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLoader replaces rdf.Load.
func WithLoader(l Loader) Option {
	return func(c *Catalog) { c.load = l }
}

// New creates an empty catalog. Nothing is served until Reload or Swap.
// src may be nil when snapshots are only ever swapped in directly.
func New(src Source, settings graph.Settings, opts ...Option) *Catalog {
	c := &Catalog{src: src, settings: settings, load: rdf.Load}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns an engine over the loaded snapshot. The engine stays valid
// after later reloads; callers should take one per request.
func (c *Catalog) Query() (*graph.Engine, error) {
	cur := c.current.Load()
	if cur == nil {
		return nil, rdlerr.New(rdlerr.CodeCatalogStoreUnavailable, "no snapshot loaded")
	}
	return cur.engine, nil
}

// Swap serves store under name immediately.
func (c *Catalog) Swap(name string, store *rdf.Store) {
	next := &loaded{
		name:     name,
		store:    store,
		engine:   graph.NewEngine(store, c.settings),
		loadedAt: time.Now().UTC(),
	}
	c.current.Store(next)

	metrics.StoreTriples.Set(float64(store.Len()))
	metrics.StoreSubjects.Set(float64(store.SubjectCount()))
	slog.Info("snapshot swapped in", "snapshot", name, "triples", store.Len(), "subjects", store.SubjectCount())
}

// Reload loads the history's current snapshot and swaps it in. Concurrent
// calls share one load. A failed load leaves the served snapshot in place.
func (c *Catalog) Reload(ctx context.Context) (Status, error) {
	v, err, shared := c.group.Do("reload", func() (any, error) {
		return c.reload(ctx)
	})
	if shared {
		slog.Debug("reload shared with concurrent caller")
	}
	if err != nil {
		return c.Status(), err
	}
	return v.(Status), nil
}

func (c *Catalog) reload(ctx context.Context) (Status, error) {
	if c.src == nil {
		return Status{}, rdlerr.New(rdlerr.CodeCatalogReloadFailure, "catalog has no snapshot history")
	}

	snap, err := c.src.Current(ctx)
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return Status{}, err
	}

	start := time.Now()
	store, err := c.load(ctx, snap.Path)
	metrics.ReloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReloadsTotal.WithLabelValues("error").Inc()
		slog.Error("snapshot reload failed", "snapshot", snap.Name, "error", err)
		return Status{}, err
	}

	c.Swap(snap.Name, store)
	metrics.ReloadsTotal.WithLabelValues("ok").Inc()
	return c.Status(), nil
}

// Refresh reloads only when the history's current snapshot differs from the
// served one. It reports whether a reload happened.
func (c *Catalog) Refresh(ctx context.Context) (bool, error) {
	if c.src == nil {
		return false, nil
	}

	snap, err := c.src.Current(ctx)
	if err != nil {
		return false, err
	}
	if cur := c.current.Load(); cur != nil && cur.name == snap.Name {
		return false, nil
	}

	if _, err := c.Reload(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Status describes what is being served.
func (c *Catalog) Status() Status {
	cur := c.current.Load()
	if cur == nil {
		return Status{}
	}
	return Status{
		Loaded:   true,
		Snapshot: cur.name,
		Triples:  cur.store.Len(),
		Subjects: cur.store.SubjectCount(),
		LoadedAt: cur.loadedAt,
	}
}
