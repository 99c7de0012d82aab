// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package graphtest provides the small reference data library used across
// package tests.
package graphtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iso15926vis/rdlvis/internal/rdf"
	"github.com/stretchr/testify/require"
)

const (
	NS          = "http://data.15926.org/dm/"
	Thing       = NS + "Thing"
	Child1      = NS + "Child1"
	Child2      = NS + "Child2"
	Child3      = NS + "Child3"
	ExtraParent = NS + "ExtraParent"

	OWLClass    = "http://www.w3.org/2002/07/owl#Class"
	RDFSComment = "http://www.w3.org/2000/01/rdf-schema#comment"

	Child1Deprecation = "2021-03-21Z"
)

// Triples is the fixture: Thing has children Child1 (deprecated) and Child2;
// Child2 also sits under ExtraParent; Child3 sits under Child1.
func Triples() []rdf.Triple {
	return []rdf.Triple{
		{Subject: Thing, Predicate: rdf.RDFType, Object: rdf.IRI(OWLClass)},
		{Subject: Thing, Predicate: rdf.RDFSLabel, Object: rdf.Literal("Thing")},
		{Subject: Thing, Predicate: rdf.SKOSDefinition, Object: rdf.Literal("The root of the class hierarchy.")},
		{Subject: Thing, Predicate: RDFSComment, Object: rdf.LangLiteral("top level", "en")},

		{Subject: Child1, Predicate: rdf.RDFType, Object: rdf.IRI(OWLClass)},
		{Subject: Child1, Predicate: rdf.RDFSLabel, Object: rdf.Literal("Child One")},
		{Subject: Child1, Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI(Thing)},
		{Subject: Child1, Predicate: rdf.MetaDeprecationDate, Object: rdf.Literal(Child1Deprecation)},

		{Subject: Child2, Predicate: rdf.RDFType, Object: rdf.IRI(OWLClass)},
		{Subject: Child2, Predicate: rdf.RDFSLabel, Object: rdf.Literal("Child Two")},
		{Subject: Child2, Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI(Thing)},
		{Subject: Child2, Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI(ExtraParent)},

		{Subject: Child3, Predicate: rdf.RDFType, Object: rdf.IRI(OWLClass)},
		{Subject: Child3, Predicate: rdf.RDFSLabel, Object: rdf.Literal("Child Three")},
		{Subject: Child3, Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI(Child1)},

		{Subject: ExtraParent, Predicate: rdf.RDFType, Object: rdf.IRI(OWLClass)},
		{Subject: ExtraParent, Predicate: rdf.RDFSLabel, Object: rdf.Literal("Another Parent")},
	}
}

// Store builds the fixture store.
func Store() *rdf.Store {
	return rdf.NewStore(Triples()...)
}

// WriteSnapshot writes the fixture as N-Triples into dir under name and
// returns the full path.
func WriteSnapshot(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, rdf.WriteNTriples(f, Store()))
	return path
}
