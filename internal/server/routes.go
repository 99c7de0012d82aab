// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/iso15926vis/rdlvis/internal/catalog"
	"github.com/iso15926vis/rdlvis/internal/graph"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/api/v1/graph/root",
		Summary:     "Basic info of the root class",
		Tags:        []string{"graph"},
	}, s.handleRoot)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-node-info",
		Method:      http.MethodGet,
		Path:        "/api/v1/node/info",
		Summary:     "Full info of a node",
		Tags:        []string{"node"},
	}, s.handleInfo)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-node-children",
		Method:      http.MethodGet,
		Path:        "/api/v1/node/children",
		Summary:     "Children of a node, or a subtree when levels > 1",
		Tags:        []string{"node"},
	}, s.handleChildren)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-node-parents",
		Method:      http.MethodGet,
		Path:        "/api/v1/node/parents",
		Summary:     "Parents of a node",
		Tags:        []string{"node"},
	}, s.handleParents)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-local-hierarchy",
		Method:      http.MethodGet,
		Path:        "/api/v1/node/local-hierarchy",
		Summary:     "Hierarchy from a node up to its top-most ancestor",
		Tags:        []string{"node"},
	}, s.handleLocalHierarchy)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-id",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/id",
		Summary:     "Fuzzy search on node IRIs",
		Tags:        []string{"search"},
	}, s.searchHandler(graph.FieldID))

	huma.Register(s.api, huma.Operation{
		OperationID: "search-label",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/label",
		Summary:     "Fuzzy search on node labels",
		Tags:        []string{"search"},
	}, s.searchHandler(graph.FieldLabel))

	huma.Register(s.api, huma.Operation{
		OperationID: "reload-snapshot",
		Method:      http.MethodPost,
		Path:        "/api/v1/ctrl/reload",
		Summary:     "Reload the current snapshot from history",
		Tags:        []string{"control"},
	}, s.handleReload)

	huma.Register(s.api, huma.Operation{
		OperationID: "snapshot-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Status of the served snapshot",
		Tags:        []string{"control"},
	}, s.handleStatus)
}

// parseBool accepts true, 1, t, y and yes in any case. Anything else,
// including the empty string, is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "t", "y", "yes":
		return true
	default:
		return false
	}
}

// flag reads an optional boolean query value, falling back to def when the
// parameter is absent.
func flag(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	return parseBool(raw)
}

func toHTTPError(err error) error {
	status := rdlerr.HTTPStatus(err)
	return huma.NewError(status, err.Error())
}

// --- Request/Response types for huma ---

type rootOutput struct {
	Body *graph.Node
}

type infoInput struct {
	ID     string `query:"id" required:"true" minLength:"1" doc:"Node IRI"`
	Extras string `query:"extras" doc:"Include every other property (default true)"`
}
type infoOutput struct {
	Body *graph.Detail
}

type childrenInput struct {
	ID           string `query:"id" required:"true" minLength:"1" doc:"Node IRI"`
	Dep          string `query:"dep" doc:"Include deprecated children (default false)"`
	ExtraParents string `query:"extra_parents" doc:"Report other parents of each child (default true)"`
	HasChildren  string `query:"has_children" doc:"Flag children that have children (default true)"`
	Order        string `query:"order" doc:"Sort by label (default true)"`
	Levels       int    `query:"levels" minimum:"0" default:"1" doc:"Subtree depth; values above 1 nest grandchildren"`
}
type childrenOutput struct {
	Body struct {
		ID       string        `json:"id"`
		Children []*graph.Node `json:"children"`
	}
}

type parentsInput struct {
	ID         string `query:"id" required:"true" minLength:"1" doc:"Node IRI"`
	Dep        string `query:"dep" doc:"Include deprecated parents (default false)"`
	Children   string `query:"children" doc:"Attach each parent's other children (default false)"`
	HasParents string `query:"has_parents" doc:"Flag parents that have parents (default true)"`
	Order      string `query:"order" doc:"Sort by label (default true)"`
}
type parentsOutput struct {
	Body struct {
		ID      string        `json:"id"`
		Parents []*graph.Node `json:"parents"`
	}
}

type hierarchyInput struct {
	ID           string `query:"id" required:"true" minLength:"1" doc:"Node IRI"`
	Dep          string `query:"dep" doc:"Include deprecated nodes (default false)"`
	Children     string `query:"children" doc:"Attach the centre's children (default true)"`
	ExtraParents string `query:"extra_parents" doc:"Report and splice extra parents (default true)"`
}
type hierarchyOutput struct {
	Body *graph.Hierarchy
}

type searchInput struct {
	Q     string `query:"q" doc:"Search key"`
	Limit int    `query:"limit" minimum:"0" doc:"Maximum results; 0 uses the server default"`
	Dep   string `query:"dep" doc:"Include deprecated nodes (default false)"`
}
type searchOutput struct {
	Body struct {
		Query   string            `json:"query"`
		Results []graph.SearchHit `json:"results"`
	}
}

type statusOutput struct {
	Body *catalog.Status
}

// --- Handlers ---

func (s *Server) handleRoot(ctx context.Context, _ *struct{}) (*rootOutput, error) {
	node, err := s.services.Graph().Root(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &rootOutput{Body: node}, nil
}

func (s *Server) handleInfo(ctx context.Context, input *infoInput) (*infoOutput, error) {
	d, err := s.services.Graph().Info(ctx, input.ID, flag(input.Extras, true))
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &infoOutput{Body: d}, nil
}

func (s *Server) handleChildren(ctx context.Context, input *childrenInput) (*childrenOutput, error) {
	opts := graph.ChildOptions{QueryOptions: graph.DefaultQueryOptions()}
	opts.IncludeDeprecated = flag(input.Dep, false)
	opts.ExtraParents = flag(input.ExtraParents, true)
	opts.HasChildren = flag(input.HasChildren, true)
	opts.Order = flag(input.Order, true)

	nodes, err := s.services.Graph().Children(ctx, input.ID, input.Levels, opts)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if nodes == nil {
		nodes = []*graph.Node{}
	}

	out := &childrenOutput{}
	out.Body.ID = input.ID
	out.Body.Children = nodes
	return out, nil
}

func (s *Server) handleParents(ctx context.Context, input *parentsInput) (*parentsOutput, error) {
	opts := graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions()}
	opts.IncludeDeprecated = flag(input.Dep, false)
	opts.HasParents = flag(input.HasParents, true)
	opts.Order = flag(input.Order, true)
	opts.WithChildren = flag(input.Children, false)

	nodes, err := s.services.Graph().Parents(ctx, input.ID, opts)
	if err != nil {
		return nil, toHTTPError(err)
	}
	if nodes == nil {
		nodes = []*graph.Node{}
	}

	out := &parentsOutput{}
	out.Body.ID = input.ID
	out.Body.Parents = nodes
	return out, nil
}

func (s *Server) handleLocalHierarchy(ctx context.Context, input *hierarchyInput) (*hierarchyOutput, error) {
	opts := graph.DefaultHierarchyOptions()
	opts.IncludeDeprecated = flag(input.Dep, false)
	opts.IncludeChildren = flag(input.Children, true)
	opts.ExtraParents = flag(input.ExtraParents, true)

	h, err := s.services.Graph().LocalHierarchy(ctx, input.ID, opts)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &hierarchyOutput{Body: h}, nil
}

func (s *Server) searchHandler(field graph.Field) func(context.Context, *searchInput) (*searchOutput, error) {
	return func(ctx context.Context, input *searchInput) (*searchOutput, error) {
		hits, err := s.services.Graph().Search(ctx, input.Q, field, graph.SearchOptions{
			Limit:             input.Limit,
			IncludeDeprecated: flag(input.Dep, false),
		})
		if err != nil {
			return nil, toHTTPError(err)
		}
		if hits == nil {
			hits = []graph.SearchHit{}
		}

		out := &searchOutput{}
		out.Body.Query = input.Q
		out.Body.Results = hits
		return out, nil
	}
}

func (s *Server) handleReload(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	st, err := s.services.Control().Reload(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &statusOutput{Body: st}, nil
}

func (s *Server) handleStatus(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	st, err := s.services.Control().Status(ctx)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return &statusOutput{Body: st}, nil
}
