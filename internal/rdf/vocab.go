// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package rdf

// W3C vocabulary IRIs used by the reference data library.
const (
	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// RDFSLabel provides a human-readable name for a node.
	RDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"

	// RDFSSubClassOf links a child (subject) to its parent (object).
	RDFSSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"

	SKOSDefinition = "http://www.w3.org/2004/02/skos/core#definition"

	XSDString = "http://www.w3.org/2001/XMLSchema#string"
)

// ISO 15926 meta vocabulary.
const (
	MetaNamespace = "http://data.15926.org/meta/"

	// MetaDeprecationDate marks a node as deprecated. Any value counts.
	MetaDeprecationDate = MetaNamespace + "valDeprecationDate"
)

// DefaultRoot is the conventional top of the ISO 15926 class hierarchy.
const DefaultRoot = "http://data.15926.org/dm/Thing"
