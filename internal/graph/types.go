// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph

// Node is the summary shape used in every listing and hierarchy.
// Optional fields are omitted from JSON when unset.
type Node struct {
	ID           string    `json:"id"`
	Label        string    `json:"label,omitempty"`
	Dep          string    `json:"dep,omitempty"`
	Centre       bool      `json:"centre,omitempty"`
	HasChildren  *bool     `json:"has_children,omitempty"`
	HasParents   *bool     `json:"has_parents,omitempty"`
	ExtraParents []NodeRef `json:"extra_parents,omitempty"`
	Children     []*Node   `json:"children,omitempty"`

	// deprecated is set by any deprecation date literal, empty ones included.
	deprecated bool
}

// Deprecated reports whether the node carries a deprecation date.
func (n *Node) Deprecated() bool {
	return n.deprecated || n.Dep != ""
}

func (n *Node) clone() *Node {
	c := *n
	if n.ExtraParents != nil {
		c.ExtraParents = append([]NodeRef(nil), n.ExtraParents...)
	}
	if n.Children != nil {
		c.Children = append([]*Node(nil), n.Children...)
	}
	return &c
}

// NodeRef points at another node without describing it.
type NodeRef struct {
	ID string `json:"id"`
}

// Detail is the full record of one node.
type Detail struct {
	ID         string              `json:"id"`
	Label      string              `json:"label,omitempty"`
	Types      []string            `json:"types"`
	Dep        string              `json:"dep,omitempty"`
	Definition string              `json:"definition,omitempty"`
	Parents    []string            `json:"parents"`
	Properties map[string][]string `json:"properties,omitempty"`
}

// Hierarchy is the connected view from a centre node up its first-parent chain.
type Hierarchy struct {
	CentreID string `json:"centre_id"`
	Root     *Node  `json:"hierarchy"`

	// Truncated is set when the ascent stopped on a cycle or the hop limit.
	Truncated bool `json:"truncated"`
}

// SearchHit is one ranked search result.
type SearchHit struct {
	Node
	Score float64 `json:"score"`
}

func boolPtr(b bool) *bool {
	return &b
}
