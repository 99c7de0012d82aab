// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package catalog_test

import (
	"context"
	"testing"

	"github.com/iso15926vis/rdlvis/internal/catalog"
	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/graph/graphtest"
	"github.com/iso15926vis/rdlvis/internal/metrics"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedService(t *testing.T) *catalog.Service {
	t.Helper()
	c := catalog.New(nil, graph.Settings{})
	c.Swap("fixture", graphtest.Store())
	return catalog.NewService(c)
}

func TestServiceUnavailableRecordsError(t *testing.T) {
	svc := catalog.NewService(catalog.New(nil, graph.Settings{}))
	counter := metrics.QueryErrorsTotal.WithLabelValues("root", "unavailable")
	before := testutil.ToFloat64(counter)

	_, err := svc.Root(context.Background())
	require.Error(t, err)
	assert.True(t, rdlerr.IsUnavailable(err))
	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0.001)
}

func TestServiceQueries(t *testing.T) {
	svc := loadedService(t)
	ctx := context.Background()

	root, err := svc.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, graphtest.Thing, root.ID)

	d, err := svc.Info(ctx, graphtest.Child2, false)
	require.NoError(t, err)
	assert.Len(t, d.Parents, 2)

	opts := graph.ChildOptions{QueryOptions: graph.DefaultQueryOptions()}
	opts.IncludeDeprecated = true
	flat, err := svc.Children(ctx, graphtest.Thing, 1, opts)
	require.NoError(t, err)
	require.Len(t, flat, 2)
	assert.Nil(t, flat[0].Children)

	tree, err := svc.Children(ctx, graphtest.Thing, 2, opts)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Len(t, tree[0].Children, 1)

	parents, err := svc.Parents(ctx, graphtest.Child3, graph.ParentOptions{
		QueryOptions: graph.QueryOptions{IncludeDeprecated: true, Order: true},
	})
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, graphtest.Child1, parents[0].ID)

	h, err := svc.LocalHierarchy(ctx, graphtest.Thing, graph.DefaultHierarchyOptions())
	require.NoError(t, err)
	assert.Equal(t, graphtest.Thing, h.CentreID)

	hits, err := svc.Search(ctx, "Thing", graph.FieldLabel, graph.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, graphtest.Thing, hits[0].ID)
}

func TestServiceNotFoundRecordsReason(t *testing.T) {
	svc := loadedService(t)
	counter := metrics.QueryErrorsTotal.WithLabelValues("info", "not_found")
	before := testutil.ToFloat64(counter)

	_, err := svc.Info(context.Background(), graphtest.NS+"Nope", true)
	assert.True(t, rdlerr.IsNotFound(err))
	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0.001)
}

func TestServiceStatus(t *testing.T) {
	svc := loadedService(t)

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Loaded)
	assert.Equal(t, "fixture", st.Snapshot)

	_, err = svc.Reload(context.Background())
	assert.Error(t, err)
}
