// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph

import (
	"iter"
	"slices"
	"strings"

	"github.com/iso15926vis/rdlvis/internal/rdf"
)

// Children lists the direct children of uri. It fails with a not-found
// error when uri has no facts.
func (e *Engine) Children(uri string, opts ChildOptions) ([]*Node, error) {
	if !e.src.Exists(uri) {
		return nil, notFound(uri)
	}
	return e.children(uri, opts), nil
}

func (e *Engine) children(uri string, opts ChildOptions) []*Node {
	out := []*Node{}
	// The store is a set, so each child appears at most once per parent.
	for child := range e.childIDs(uri) {
		if child == opts.ExcludeID {
			continue
		}
		if opts.RestrictTo != nil {
			if _, ok := opts.RestrictTo[child]; !ok {
				continue
			}
		}

		n := e.BasicInfo(child)
		if n.Deprecated() && !opts.IncludeDeprecated {
			continue
		}
		if opts.ExtraParents {
			for p := range e.parentIDs(child) {
				if p != uri {
					n.ExtraParents = append(n.ExtraParents, NodeRef{ID: p})
				}
			}
		}
		if opts.HasChildren {
			n.HasChildren = boolPtr(e.HasChildren(child, opts.IncludeDeprecated))
		}
		out = append(out, n)
	}

	if opts.Order {
		sortByLabel(out)
	}
	return out
}

// HasChildren reports whether uri has at least one child that survives the
// deprecation filter.
func (e *Engine) HasChildren(uri string, includeDeprecated bool) bool {
	for child := range e.childIDs(uri) {
		if includeDeprecated || !e.deprecated(child) {
			return true
		}
	}
	return false
}

// Parents lists the direct parents of uri. With WithChildren each parent
// also carries its other children; a child shared by several parents is kept
// only under the first of them (see DedupChildren).
func (e *Engine) Parents(uri string, opts ParentOptions) ([]*Node, error) {
	if !e.src.Exists(uri) {
		return nil, notFound(uri)
	}
	return e.parents(uri, opts), nil
}

func (e *Engine) parents(uri string, opts ParentOptions) []*Node {
	out := []*Node{}
	for parent := range e.parentIDs(uri) {
		n := e.BasicInfo(parent)
		if n.Deprecated() && !opts.IncludeDeprecated {
			continue
		}
		if opts.HasParents {
			n.HasParents = boolPtr(e.HasParents(parent, opts.IncludeDeprecated))
		}
		if opts.WithChildren {
			n.Children = e.children(parent, ChildOptions{
				QueryOptions: opts.QueryOptions,
				ExcludeID:    uri,
			})
		}
		out = append(out, n)
	}

	if opts.Order {
		sortByLabel(out)
	}
	if opts.WithChildren {
		out = DedupChildren(out)
	}
	return out
}

// HasParents reports whether uri has at least one parent that survives the
// deprecation filter.
func (e *Engine) HasParents(uri string, includeDeprecated bool) bool {
	for parent := range e.parentIDs(uri) {
		if includeDeprecated || !e.deprecated(parent) {
			return true
		}
	}
	return false
}

// DedupChildren removes children that already appeared under an earlier
// parent. The input is not modified.
func DedupChildren(parents []*Node) []*Node {
	seen := make(map[string]struct{})
	out := make([]*Node, len(parents))
	for i, p := range parents {
		c := p.clone()
		if p.Children != nil {
			c.Children = make([]*Node, 0, len(p.Children))
			for _, child := range p.Children {
				if _, dup := seen[child.ID]; dup {
					continue
				}
				seen[child.ID] = struct{}{}
				c.Children = append(c.Children, child)
			}
		}
		out[i] = c
	}
	return out
}

// childIDs yields subjects of (child, subClassOf, uri), skipping self-loops.
func (e *Engine) childIDs(uri string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for t := range e.src.Triples(rdf.Pattern{Predicate: rdf.RDFSSubClassOf, Object: nodeTerm(uri)}) {
			if t.Subject == uri {
				continue
			}
			if !yield(t.Subject) {
				return
			}
		}
	}
}

// parentIDs yields node objects of (uri, subClassOf, parent), skipping
// self-loops and literals.
func (e *Engine) parentIDs(uri string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for t := range e.src.Triples(rdf.Pattern{Subject: uri, Predicate: rdf.RDFSSubClassOf}) {
			if !t.Object.IsReference() || t.Object.Value == uri {
				continue
			}
			if !yield(t.Object.Value) {
				return
			}
		}
	}
}

// sortByLabel orders nodes by label, byte-wise, missing labels first. Equal
// labels keep index order, which is URI order.
func sortByLabel(nodes []*Node) {
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.Label, b.Label)
	})
}
