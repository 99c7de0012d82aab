// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph

import (
	"log/slog"
)

// Subtree returns the descendants of uri down to depth levels. Depth 1 is
// the direct children; depth is clamped to [1, MaxDepth]. A node reachable
// along two paths appears once per path.
func (e *Engine) Subtree(uri string, depth int, opts ChildOptions) ([]*Node, error) {
	if !e.src.Exists(uri) {
		return nil, notFound(uri)
	}
	depth = max(1, min(depth, e.settings.MaxDepth))
	return e.subtree(uri, depth, opts), nil
}

func (e *Engine) subtree(uri string, depth int, opts ChildOptions) []*Node {
	nodes := e.children(uri, opts)
	if depth <= 1 {
		return nodes
	}
	for _, n := range nodes {
		n.Children = e.subtree(n.ID, depth-1, opts)
	}
	return nodes
}

// LocalHierarchy builds the view from uri up through its first parent at
// every step. The centre node carries its own children; each ancestor
// carries the node below it plus any already-seen nodes that are also its
// direct children. The ascent stops after MaxAscent hops or when the first
// parent is already on the chain, and the result is marked truncated.
func (e *Engine) LocalHierarchy(uri string, opts HierarchyOptions) (*Hierarchy, error) {
	if !e.src.Exists(uri) {
		return nil, notFound(uri)
	}

	centre := e.BasicInfo(uri)
	centre.Centre = true

	visited := map[string]struct{}{uri: {}}
	if opts.IncludeChildren {
		centre.Children = e.children(uri, ChildOptions{QueryOptions: opts.QueryOptions, ExcludeID: uri})
		for _, c := range centre.Children {
			visited[c.ID] = struct{}{}
		}
	}

	h := &Hierarchy{CentreID: uri}
	chain := map[string]struct{}{uri: {}}
	current := centre
	parentOpts := ParentOptions{QueryOptions: QueryOptions{
		IncludeDeprecated: opts.IncludeDeprecated,
		Order:             opts.Order,
	}}

	for hops := 0; ; hops++ {
		parents := e.parents(current.ID, parentOpts)
		if len(parents) == 0 {
			break
		}
		for _, p := range parents {
			visited[p.ID] = struct{}{}
		}
		if opts.ExtraParents && len(parents) > 1 {
			for _, p := range parents[1:] {
				current.ExtraParents = append(current.ExtraParents, NodeRef{ID: p.ID})
			}
		}

		next := parents[0].ID
		if _, looped := chain[next]; looped {
			slog.Warn("local hierarchy ascent hit a cycle",
				"centre", uri, "at", current.ID, "parent", next)
			h.Truncated = true
			break
		}
		if hops >= e.settings.MaxAscent {
			slog.Warn("local hierarchy ascent hit the hop limit",
				"centre", uri, "at", current.ID, "max_ascent", e.settings.MaxAscent)
			h.Truncated = true
			break
		}
		chain[next] = struct{}{}

		parent := e.BasicInfo(next)
		parent.Children = []*Node{current}
		if opts.ExtraParents {
			siblings := e.children(next, ChildOptions{
				QueryOptions: opts.QueryOptions,
				ExcludeID:    current.ID,
				RestrictTo:   visited,
			})
			parent.Children = append(parent.Children, siblings...)
		}
		current = parent
	}

	h.Root = current
	return h, nil
}
