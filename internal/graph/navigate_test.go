// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph_test

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/graph/graphtest"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *graph.Engine {
	t.Helper()
	return graph.NewEngine(graphtest.Store(), graph.Settings{})
}

func childOpts() graph.ChildOptions {
	return graph.ChildOptions{QueryOptions: graph.DefaultQueryOptions()}
}

func ids(nodes []*graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestChildrenDefaultExcludesDeprecated(t *testing.T) {
	e := newEngine(t)

	children, err := e.Children(graphtest.Thing, childOpts())
	require.NoError(t, err)
	require.Len(t, children, 1)

	c := children[0]
	assert.Equal(t, graphtest.Child2, c.ID)
	assert.Equal(t, "Child Two", c.Label)
	assert.Empty(t, c.Dep)
	assert.Equal(t, []graph.NodeRef{{ID: graphtest.ExtraParent}}, c.ExtraParents)
	require.NotNil(t, c.HasChildren)
	assert.False(t, *c.HasChildren)
}

func TestChildrenIncludeDeprecated(t *testing.T) {
	e := newEngine(t)
	opts := childOpts()
	opts.IncludeDeprecated = true

	children, err := e.Children(graphtest.Thing, opts)
	require.NoError(t, err)
	require.Equal(t, []string{graphtest.Child1, graphtest.Child2}, ids(children))

	child1 := children[0]
	assert.Equal(t, graphtest.Child1Deprecation, child1.Dep)
	assert.Nil(t, child1.ExtraParents)
	require.NotNil(t, child1.HasChildren)
	assert.True(t, *child1.HasChildren)

	assert.Equal(t, []graph.NodeRef{{ID: graphtest.ExtraParent}}, children[1].ExtraParents)
}

func TestChildrenFlagsOff(t *testing.T) {
	e := newEngine(t)

	children, err := e.Children(graphtest.Thing, graph.ChildOptions{})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Nil(t, children[0].ExtraParents)
	assert.Nil(t, children[0].HasChildren)
}

func TestChildrenOfLeafIsEmptyNotError(t *testing.T) {
	e := newEngine(t)

	children, err := e.Children(graphtest.Child2, childOpts())
	require.NoError(t, err)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}

func TestChildrenUnknownNode(t *testing.T) {
	e := newEngine(t)

	_, err := e.Children(graphtest.NS+"Nope", childOpts())
	require.Error(t, err)
	assert.True(t, rdlerr.IsNotFound(err))

	_, err = e.Parents(graphtest.NS+"Nope", graph.ParentOptions{})
	assert.True(t, rdlerr.IsNotFound(err))
}

func TestChildrenExcludeAndRestrict(t *testing.T) {
	e := newEngine(t)
	opts := childOpts()
	opts.IncludeDeprecated = true

	opts.ExcludeID = graphtest.Child1
	children, err := e.Children(graphtest.Thing, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{graphtest.Child2}, ids(children))

	opts.ExcludeID = ""
	opts.RestrictTo = map[string]struct{}{graphtest.Child1: {}}
	children, err = e.Children(graphtest.Thing, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{graphtest.Child1}, ids(children))

	opts.RestrictTo = map[string]struct{}{}
	children, err = e.Children(graphtest.Thing, opts)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestHasChildren(t *testing.T) {
	e := newEngine(t)

	assert.True(t, e.HasChildren(graphtest.Thing, false))
	// Only the child's own deprecation counts, not the parent's.
	assert.True(t, e.HasChildren(graphtest.Child1, false))
	assert.False(t, e.HasChildren(graphtest.Child3, true))
	assert.True(t, e.HasChildren(graphtest.ExtraParent, false))
}

func TestHasChildrenIgnoresDeprecatedChildren(t *testing.T) {
	store := rdf.NewStore(
		rdf.Triple{Subject: graphtest.NS + "P", Predicate: rdf.RDFSLabel, Object: rdf.Literal("P")},
		rdf.Triple{Subject: graphtest.NS + "Old", Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI(graphtest.NS + "P")},
		rdf.Triple{Subject: graphtest.NS + "Old", Predicate: rdf.MetaDeprecationDate, Object: rdf.Literal("2020-01-01Z")},
	)
	e := graph.NewEngine(store, graph.Settings{})

	assert.False(t, e.HasChildren(graphtest.NS+"P", false))
	assert.True(t, e.HasChildren(graphtest.NS+"P", true))
	assert.True(t, e.HasParents(graphtest.NS+"Old", false))
}

func TestEmptyDeprecationDateStillDeprecates(t *testing.T) {
	store := rdf.NewStore(
		label("urn:P", "Parent"),
		label("urn:A", "Alpha"),
		subClass("urn:A", "urn:P"),
		rdf.Triple{Subject: "urn:A", Predicate: rdf.MetaDeprecationDate, Object: rdf.Literal("")},
	)
	e := graph.NewEngine(store, graph.Settings{})

	assert.True(t, e.BasicInfo("urn:A").Deprecated())

	children, err := e.Children("urn:P", childOpts())
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.False(t, e.HasChildren("urn:P", false))

	hits, err := e.Search("Alpha", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)

	opts := childOpts()
	opts.IncludeDeprecated = true
	children, err = e.Children("urn:P", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"urn:A"}, ids(children))
	assert.True(t, e.HasChildren("urn:P", true))

	parents, err := e.Parents("urn:A", graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions()})
	require.NoError(t, err)
	assert.Equal(t, []string{"urn:P"}, ids(parents))
}

func TestParentsOrderedByLabel(t *testing.T) {
	e := newEngine(t)

	parents, err := e.Parents(graphtest.Child2, graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions()})
	require.NoError(t, err)

	// "Another Parent" sorts before "Thing".
	assert.Equal(t, []string{graphtest.ExtraParent, graphtest.Thing}, ids(parents))
	for _, p := range parents {
		require.NotNil(t, p.HasParents)
		assert.False(t, *p.HasParents)
	}
}

func TestParentsUnordered(t *testing.T) {
	e := newEngine(t)

	parents, err := e.Parents(graphtest.Child2, graph.ParentOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{graphtest.ExtraParent, graphtest.Thing}, ids(parents))
	assert.Nil(t, parents[0].HasParents)
}

func TestParentsDeprecationFilter(t *testing.T) {
	e := newEngine(t)

	parents, err := e.Parents(graphtest.Child3, graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions()})
	require.NoError(t, err)
	assert.Empty(t, parents)

	opts := graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions()}
	opts.IncludeDeprecated = true
	parents, err = e.Parents(graphtest.Child3, opts)
	require.NoError(t, err)
	require.Equal(t, []string{graphtest.Child1}, ids(parents))
	assert.Equal(t, graphtest.Child1Deprecation, parents[0].Dep)
	assert.True(t, *parents[0].HasParents)
}

func TestParentsWithChildrenExcludesQueriedNode(t *testing.T) {
	e := newEngine(t)
	opts := graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions(), WithChildren: true}
	opts.IncludeDeprecated = true

	parents, err := e.Parents(graphtest.Child1, opts)
	require.NoError(t, err)
	require.Equal(t, []string{graphtest.Thing}, ids(parents))
	assert.Equal(t, []string{graphtest.Child2}, ids(parents[0].Children))
}

func TestDedupChildrenFirstParentWins(t *testing.T) {
	shared := &graph.Node{ID: "S"}
	parents := []*graph.Node{
		{ID: "P1", Children: []*graph.Node{{ID: "A"}, shared}},
		{ID: "P2", Children: []*graph.Node{shared, {ID: "B"}}},
		{ID: "P3", Children: []*graph.Node{{ID: "A"}}},
		{ID: "P4"},
	}

	out := graph.DedupChildren(parents)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"A", "S"}, ids(out[0].Children))
	assert.Equal(t, []string{"B"}, ids(out[1].Children))
	assert.Empty(t, out[2].Children)
	assert.NotNil(t, out[2].Children)
	assert.Nil(t, out[3].Children)

	// Input is untouched.
	assert.Equal(t, []string{"S", "B"}, ids(parents[1].Children))
	assert.Equal(t, []string{"A"}, ids(parents[2].Children))
}

func TestDedupAcrossParentsInEngine(t *testing.T) {
	// X has parents P and Q; S sits under both.
	store := rdf.NewStore(
		rdf.Triple{Subject: "urn:X", Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI("urn:P")},
		rdf.Triple{Subject: "urn:X", Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI("urn:Q")},
		rdf.Triple{Subject: "urn:S", Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI("urn:P")},
		rdf.Triple{Subject: "urn:S", Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI("urn:Q")},
		rdf.Triple{Subject: "urn:P", Predicate: rdf.RDFSLabel, Object: rdf.Literal("Zeta")},
		rdf.Triple{Subject: "urn:Q", Predicate: rdf.RDFSLabel, Object: rdf.Literal("Alpha")},
	)
	e := graph.NewEngine(store, graph.Settings{})

	parents, err := e.Parents("urn:X", graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions(), WithChildren: true})
	require.NoError(t, err)
	require.Equal(t, []string{"urn:Q", "urn:P"}, ids(parents))
	assert.Equal(t, []string{"urn:S"}, ids(parents[0].Children))
	assert.Empty(t, parents[1].Children)
}

func TestEdgeSymmetry(t *testing.T) {
	e := newEngine(t)
	opts := childOpts()
	opts.IncludeDeprecated = true
	popts := graph.ParentOptions{QueryOptions: opts.QueryOptions}

	nodes := []string{graphtest.Thing, graphtest.Child1, graphtest.Child2, graphtest.Child3, graphtest.ExtraParent}
	for _, a := range nodes {
		children, err := e.Children(a, opts)
		require.NoError(t, err)
		for _, b := range children {
			parents, err := e.Parents(b.ID, popts)
			require.NoError(t, err)
			assert.Contains(t, ids(parents), a, "%s lists %s as child", a, b.ID)
		}

		parents, err := e.Parents(a, popts)
		require.NoError(t, err)
		for _, p := range parents {
			children, err := e.Children(p.ID, opts)
			require.NoError(t, err)
			assert.Contains(t, ids(children), a, "%s lists %s as parent", a, p.ID)
		}
	}
}

func TestDeprecationFilterIsMonotonic(t *testing.T) {
	e := newEngine(t)
	strict := childOpts()
	loose := childOpts()
	loose.IncludeDeprecated = true

	for _, n := range []string{graphtest.Thing, graphtest.Child1, graphtest.ExtraParent} {
		a, err := e.Children(n, strict)
		require.NoError(t, err)
		b, err := e.Children(n, loose)
		require.NoError(t, err)
		assert.Subset(t, ids(b), ids(a))
	}
}

func TestChildrenOrderIgnoresInsertionOrder(t *testing.T) {
	base := []rdf.Triple{
		{Subject: "urn:c1", Predicate: rdf.RDFSLabel, Object: rdf.Literal("banana")},
		{Subject: "urn:c2", Predicate: rdf.RDFSLabel, Object: rdf.Literal("Apple")},
		{Subject: "urn:c3", Predicate: rdf.RDFSLabel, Object: rdf.Literal("apple")},
		{Subject: "urn:c5", Predicate: rdf.RDFSLabel, Object: rdf.Literal("Cherry")},
		{Subject: "urn:root", Predicate: rdf.RDFSLabel, Object: rdf.Literal("root")},
	}
	for _, c := range []string{"urn:c1", "urn:c2", "urn:c3", "urn:c4", "urn:c5"} {
		base = append(base, rdf.Triple{Subject: c, Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI("urn:root")})
	}

	want := []string{"urn:c4", "urn:c2", "urn:c5", "urn:c3", "urn:c1"}
	rng := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		shuffled := slices.Clone(base)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		e := graph.NewEngine(rdf.NewStore(shuffled...), graph.Settings{})
		children, err := e.Children("urn:root", childOpts())
		require.NoError(t, err)
		assert.Equal(t, want, ids(children))
	}
}

func TestExtraParentsRoundTrip(t *testing.T) {
	e := newEngine(t)

	for parent, other := range map[string]string{
		graphtest.Thing:       graphtest.ExtraParent,
		graphtest.ExtraParent: graphtest.Thing,
	} {
		children, err := e.Children(parent, childOpts())
		require.NoError(t, err)
		idx := slices.IndexFunc(children, func(n *graph.Node) bool { return n.ID == graphtest.Child2 })
		require.GreaterOrEqual(t, idx, 0)
		assert.Equal(t, []graph.NodeRef{{ID: other}}, children[idx].ExtraParents)
	}
}

func TestSelfLoopsAreIgnored(t *testing.T) {
	store := rdf.NewStore(
		rdf.Triple{Subject: "urn:a", Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI("urn:a")},
		rdf.Triple{Subject: "urn:a", Predicate: rdf.RDFSLabel, Object: rdf.Literal("A")},
	)
	e := graph.NewEngine(store, graph.Settings{})

	children, err := e.Children("urn:a", childOpts())
	require.NoError(t, err)
	assert.Empty(t, children)

	parents, err := e.Parents("urn:a", graph.ParentOptions{QueryOptions: graph.DefaultQueryOptions()})
	require.NoError(t, err)
	assert.Empty(t, parents)

	assert.False(t, e.HasChildren("urn:a", true))
	assert.False(t, e.HasParents("urn:a", true))
}

func TestLiteralParentsAreSkipped(t *testing.T) {
	store := rdf.NewStore(
		rdf.Triple{Subject: "urn:a", Predicate: rdf.RDFSSubClassOf, Object: rdf.Literal("urn:b")},
		rdf.Triple{Subject: "urn:b", Predicate: rdf.RDFSLabel, Object: rdf.Literal("B")},
	)
	e := graph.NewEngine(store, graph.Settings{})

	parents, err := e.Parents("urn:a", graph.ParentOptions{})
	require.NoError(t, err)
	assert.Empty(t, parents)

	children, err := e.Children("urn:b", graph.ChildOptions{})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestReadsAreIdempotent(t *testing.T) {
	e := newEngine(t)
	opts := childOpts()
	opts.IncludeDeprecated = true

	first, err := e.Subtree(graphtest.Thing, 3, opts)
	require.NoError(t, err)
	second, err := e.Subtree(graphtest.Thing, 3, opts)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
