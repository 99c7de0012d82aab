// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package rdf_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTurtle = `@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix meta: <http://data.15926.org/meta/> .
@prefix dm: <http://data.15926.org/dm/> .

dm:Thing rdfs:label "Thing" .
dm:Child1 rdfs:label "Child One"@en ;
    rdfs:subClassOf dm:Thing ;
    meta:valDeprecationDate "2021-03-21Z" .
`

const sampleNTriples = `<http://data.15926.org/dm/Thing> <http://www.w3.org/2000/01/rdf-schema#label> "Thing" .
<http://data.15926.org/dm/Child1> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://data.15926.org/dm/Thing> .
_:r1 <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://data.15926.org/dm/Thing> .
`

func TestFormatForPath(t *testing.T) {
	f, err := rdf.FormatForPath("/data/2024-10-01-1.nt")
	require.NoError(t, err)
	assert.Equal(t, rdf.FormatNTriples, f)

	f, err = rdf.FormatForPath("snap.TTL")
	require.NoError(t, err)
	assert.Equal(t, rdf.FormatTurtle, f)

	_, err = rdf.FormatForPath("snap.owl")
	require.Error(t, err)
	assert.True(t, rdlerr.IsInvalidInput(err))
}

func TestDecodeTurtle(t *testing.T) {
	s, err := rdf.Decode(context.Background(), strings.NewReader(sampleTurtle), rdf.FormatTurtle)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Len())
	labels := slices.Collect(s.Triples(rdf.Pattern{Subject: ns + "Child1", Predicate: rdf.RDFSLabel}))
	require.Len(t, labels, 1)
	assert.Equal(t, "Child One", labels[0].Object.Value)
	assert.Equal(t, "en", labels[0].Object.Lang)

	parents := slices.Collect(s.Triples(rdf.Pattern{Subject: ns + "Child1", Predicate: rdf.RDFSSubClassOf}))
	require.Len(t, parents, 1)
	assert.Equal(t, rdf.IRI(ns+"Thing"), parents[0].Object)
}

func TestDecodeNTriplesWithBlankSubject(t *testing.T) {
	s, err := rdf.Decode(context.Background(), strings.NewReader(sampleNTriples), rdf.FormatNTriples)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Exists("_:r1"))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := rdf.Decode(context.Background(), strings.NewReader("this is not rdf\n"), rdf.FormatNTriples)
	require.Error(t, err)
	assert.True(t, rdlerr.HasCode(err, rdlerr.CodeSnapshotParseInvalid))
}

func TestDecodeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rdf.Decode(ctx, strings.NewReader(sampleNTriples), rdf.FormatNTriples)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteThenLoadRoundTrip(t *testing.T) {
	original := rdf.NewStore(sampleTriples()...)

	path := filepath.Join(t.TempDir(), "2024-10-01-1.nt")
	var buf bytes.Buffer
	require.NoError(t, rdf.WriteNTriples(&buf, original))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := rdf.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t,
		slices.Collect(original.Triples(rdf.Pattern{})),
		slices.Collect(loaded.Triples(rdf.Pattern{})))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := rdf.Load(context.Background(), filepath.Join(t.TempDir(), "absent.nt"))
	require.Error(t, err)
	assert.True(t, rdlerr.IsNotFound(err))
}
