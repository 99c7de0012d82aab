// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/metrics"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// Service answers HTTP queries against the catalog and records query
// metrics.
type Service struct {
	cat *Catalog
}

// NewService wraps cat.
func NewService(cat *Catalog) *Service {
	return &Service{cat: cat}
}

func observe(op string, start time.Time, err error) {
	metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		code := string(rdlerr.CodeOf(err))
		reason := code[strings.LastIndex(code, ".")+1:]
		if reason == "" {
			reason = "unknown"
		}
		metrics.QueryErrorsTotal.WithLabelValues(op, reason).Inc()
	}
}

func (s *Service) Root(_ context.Context) (node *graph.Node, err error) {
	defer func(start time.Time) { observe("root", start, err) }(time.Now())

	e, err := s.cat.Query()
	if err != nil {
		return nil, err
	}
	return e.Root()
}

func (s *Service) Info(_ context.Context, id string, extras bool) (detail *graph.Detail, err error) {
	defer func(start time.Time) { observe("info", start, err) }(time.Now())

	e, err := s.cat.Query()
	if err != nil {
		return nil, err
	}
	return e.FullInfo(id, extras)
}

// Children returns direct children when levels <= 1 and a subtree otherwise.
func (s *Service) Children(_ context.Context, id string, levels int, opts graph.ChildOptions) (nodes []*graph.Node, err error) {
	op := "children"
	if levels > 1 {
		op = "subtree"
	}
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	e, err := s.cat.Query()
	if err != nil {
		return nil, err
	}
	if levels > 1 {
		return e.Subtree(id, levels, opts)
	}
	return e.Children(id, opts)
}

func (s *Service) Parents(_ context.Context, id string, opts graph.ParentOptions) (nodes []*graph.Node, err error) {
	defer func(start time.Time) { observe("parents", start, err) }(time.Now())

	e, err := s.cat.Query()
	if err != nil {
		return nil, err
	}
	return e.Parents(id, opts)
}

func (s *Service) LocalHierarchy(_ context.Context, id string, opts graph.HierarchyOptions) (h *graph.Hierarchy, err error) {
	defer func(start time.Time) { observe("hierarchy", start, err) }(time.Now())

	e, err := s.cat.Query()
	if err != nil {
		return nil, err
	}
	return e.LocalHierarchy(id, opts)
}

func (s *Service) Search(_ context.Context, key string, field graph.Field, opts graph.SearchOptions) (hits []graph.SearchHit, err error) {
	defer func(start time.Time) { observe("search", start, err) }(time.Now())

	e, err := s.cat.Query()
	if err != nil {
		return nil, err
	}
	return e.Search(key, field, opts)
}

// Reload reloads the current snapshot from history.
func (s *Service) Reload(ctx context.Context) (*Status, error) {
	st, err := s.cat.Reload(ctx)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Status reports the served snapshot.
func (s *Service) Status(_ context.Context) (*Status, error) {
	st := s.cat.Status()
	return &st, nil
}
