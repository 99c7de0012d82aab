// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package server

import (
	"context"

	"github.com/iso15926vis/rdlvis/internal/catalog"
	"github.com/iso15926vis/rdlvis/internal/graph"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// Services holds dependencies injected into route handlers.
// Each field is an interface so subsystems can be mocked in tests.
type Services struct {
	graph   GraphService
	control ControlService
}

// NewServices creates a Services instance, rejecting nil dependencies.
func NewServices(g GraphService, c ControlService) (*Services, error) {
	if g == nil {
		return nil, rdlerr.New(rdlerr.CodeServerConfigInvalid, "graph service is required")
	}
	if c == nil {
		return nil, rdlerr.New(rdlerr.CodeServerConfigInvalid, "control service is required")
	}
	return &Services{graph: g, control: c}, nil
}

// Graph returns the graph query service.
func (s *Services) Graph() GraphService {
	return s.graph
}

// Control returns the snapshot control service.
func (s *Services) Control() ControlService {
	return s.control
}

// GraphService answers hierarchy queries. Implementations return
// graph.node.get.not_found for unknown nodes and catalog.store.unavailable
// when nothing is loaded.
type GraphService interface {
	Root(ctx context.Context) (*graph.Node, error)
	Info(ctx context.Context, id string, extras bool) (*graph.Detail, error)
	// Children returns direct children for levels <= 1, otherwise a subtree.
	Children(ctx context.Context, id string, levels int, opts graph.ChildOptions) ([]*graph.Node, error)
	Parents(ctx context.Context, id string, opts graph.ParentOptions) ([]*graph.Node, error)
	LocalHierarchy(ctx context.Context, id string, opts graph.HierarchyOptions) (*graph.Hierarchy, error)
	Search(ctx context.Context, key string, field graph.Field, opts graph.SearchOptions) ([]graph.SearchHit, error)
}

// ControlService reloads and reports on the served snapshot.
type ControlService interface {
	Reload(ctx context.Context) (*catalog.Status, error)
	Status(ctx context.Context) (*catalog.Status, error)
}

var (
	_ GraphService   = (*catalog.Service)(nil)
	_ ControlService = (*catalog.Service)(nil)
)
