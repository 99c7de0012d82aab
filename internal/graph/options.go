// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph

// QueryOptions shape listing results. The zero value excludes every optional
// field; use DefaultQueryOptions for the HTTP defaults.
type QueryOptions struct {
	// IncludeDeprecated keeps nodes that carry a deprecation date.
	IncludeDeprecated bool

	// ExtraParents lists each child's other parents.
	ExtraParents bool

	// HasChildren sets the has_children flag on listed nodes.
	HasChildren bool

	// HasParents sets the has_parents flag on listed parents.
	HasParents bool

	// Order sorts listings by label, missing labels first.
	Order bool
}

// DefaultQueryOptions excludes deprecated nodes and turns every enrichment on.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		ExtraParents: true,
		HasChildren:  true,
		HasParents:   true,
		Order:        true,
	}
}

// ChildOptions configure Children and Subtree.
type ChildOptions struct {
	QueryOptions

	// ExcludeID drops one specific child.
	ExcludeID string

	// RestrictTo, when non-nil, keeps only children in the set.
	RestrictTo map[string]struct{}
}

// ParentOptions configure Parents.
type ParentOptions struct {
	QueryOptions

	// WithChildren attaches each parent's own children, minus the queried node.
	WithChildren bool
}

// HierarchyOptions configure LocalHierarchy.
type HierarchyOptions struct {
	QueryOptions

	// IncludeChildren attaches the centre node's direct children.
	IncludeChildren bool
}

func DefaultHierarchyOptions() HierarchyOptions {
	return HierarchyOptions{QueryOptions: DefaultQueryOptions(), IncludeChildren: true}
}

// SearchOptions configure Search. Zero values take the engine settings.
type SearchOptions struct {
	Limit             int
	IncludeDeprecated bool
	MinSimilarity     float64
}
