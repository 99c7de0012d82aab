// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph_test

import (
	"fmt"
	"testing"

	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/graph/graphtest"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitIDs(hits []graph.SearchHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ID)
	}
	return out
}

func TestSearchExactLabel(t *testing.T) {
	e := newEngine(t)

	hits, err := e.Search("Child Two", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, graphtest.Child2, hits[0].ID)
	assert.Equal(t, "Child Two", hits[0].Label)
	assert.InDelta(t, 100.0, hits[0].Score, 0.001)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	e := newEngine(t)

	hits, err := e.Search("ANOTHER parent", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, graphtest.ExtraParent, hits[0].ID)
}

func TestSearchNoSharedCharactersIsEmpty(t *testing.T) {
	e := newEngine(t)

	hits, err := e.Search("qqqqq", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	hits, err = e.Search("   ", graph.FieldID, graph.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchDeprecationFilter(t *testing.T) {
	e := newEngine(t)

	hits, err := e.Search("Child One", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	assert.NotContains(t, hitIDs(hits), graphtest.Child1)

	hits, err = e.Search("Child One", graph.FieldLabel, graph.SearchOptions{IncludeDeprecated: true})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, graphtest.Child1, hits[0].ID)
	assert.Equal(t, graphtest.Child1Deprecation, hits[0].Dep)
}

func TestSearchByID(t *testing.T) {
	e := newEngine(t)

	hits, err := e.Search("http://data.15926.org/dm/child2", graph.FieldID, graph.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, graphtest.Child2, hits[0].ID)
	assert.NotContains(t, hitIDs(hits), graphtest.Child1)
}

func TestSearchTiesBreakByKeyThenURI(t *testing.T) {
	store := rdf.NewStore(
		label("urn:2", "alphc"),
		label("urn:1", "alphb"),
	)
	e := graph.NewEngine(store, graph.Settings{})

	hits, err := e.Search("alpha", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, []string{"urn:1", "urn:2"}, hitIDs(hits))
}

func TestSearchLabelRepresentative(t *testing.T) {
	store := rdf.NewStore(
		label("urn:b", "Same"),
		label("urn:a", "same"),
		label("urn:c", "dup"),
		label("urn:d", "dup"),
		rdf.Triple{Subject: "urn:c", Predicate: rdf.MetaDeprecationDate, Object: rdf.Literal("2020-01-01Z")},
	)
	e := graph.NewEngine(store, graph.Settings{})

	hits, err := e.Search("same", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "urn:a", hits[0].ID)

	hits, err = e.Search("dup", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "urn:d", hits[0].ID)

	hits, err = e.Search("dup", graph.FieldLabel, graph.SearchOptions{IncludeDeprecated: true})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "urn:c", hits[0].ID)
}

func TestSearchLimits(t *testing.T) {
	var triples []rdf.Triple
	for i := range 30 {
		triples = append(triples, label(fmt.Sprintf("urn:n%02d", i), fmt.Sprintf("node %02d", i)))
	}
	e := graph.NewEngine(rdf.NewStore(triples...), graph.Settings{})

	hits, err := e.Search("node", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	assert.Len(t, hits, 5)

	hits, err = e.Search("node", graph.FieldLabel, graph.SearchOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, hits, 10)

	hits, err = e.Search("node", graph.FieldLabel, graph.SearchOptions{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, hits, 25)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchMinSimilarity(t *testing.T) {
	e := newEngine(t)

	strict, err := e.Search("Child Tw", graph.FieldLabel, graph.SearchOptions{MinSimilarity: 99})
	require.NoError(t, err)
	assert.Empty(t, strict)

	loose, err := e.Search("Child Tw", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(loose), graphtest.Child2)
}

func TestSearchInvalidField(t *testing.T) {
	e := newEngine(t)

	_, err := e.Search("x", graph.Field("definition"), graph.SearchOptions{})
	require.Error(t, err)
	assert.True(t, rdlerr.IsInvalidInput(err))
}

func TestParseField(t *testing.T) {
	f, err := graph.ParseField("LABEL")
	require.NoError(t, err)
	assert.Equal(t, graph.FieldLabel, f)

	f, err = graph.ParseField("id")
	require.NoError(t, err)
	assert.Equal(t, graph.FieldID, f)

	_, err = graph.ParseField("uri")
	assert.True(t, rdlerr.IsInvalidInput(err))
}

func TestSearchReportsMatchedLabel(t *testing.T) {
	store := rdf.NewStore(
		label("urn:a", "Apple"),
		label("urn:a", "Zebra Crossing"),
	)
	e := graph.NewEngine(store, graph.Settings{})
	require.Equal(t, "Apple", e.BasicInfo("urn:a").Label)

	hits, err := e.Search("zebra crossing", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "urn:a", hits[0].ID)
	assert.Equal(t, "Zebra Crossing", hits[0].Label)

	hits, err = e.Search("urn:a", graph.FieldID, graph.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Apple", hits[0].Label)
}
