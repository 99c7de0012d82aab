// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph

import (
	"github.com/iso15926vis/rdlvis/internal/rdf"
)

// Exists reports whether uri is the subject of at least one fact.
func (e *Engine) Exists(uri string) bool {
	return e.src.Exists(uri)
}

// BasicInfo returns id, label and deprecation date of uri. It never fails;
// unknown nodes come back with only the id set.
//
// With several labels the first in index order wins, so the choice does not
// depend on the order facts were loaded in.
func (e *Engine) BasicInfo(uri string) *Node {
	n := &Node{ID: uri}
	for t := range e.src.Triples(rdf.Pattern{Subject: uri}) {
		if !t.Object.IsLiteral() {
			continue
		}
		switch t.Predicate {
		case rdf.RDFSLabel:
			if n.Label == "" {
				n.Label = t.Object.Value
			}
		case rdf.MetaDeprecationDate:
			if !n.deprecated {
				n.deprecated = true
				n.Dep = t.Object.Value
			}
		}
	}
	return n
}

// FullInfo returns every fact about uri. Predicates without a dedicated
// field go to Properties only when includeExtras is set.
func (e *Engine) FullInfo(uri string, includeExtras bool) (*Detail, error) {
	d := &Detail{
		ID:      uri,
		Types:   []string{},
		Parents: []string{},
	}
	if includeExtras {
		d.Properties = map[string][]string{}
	}

	facts := 0
	for t := range e.src.Triples(rdf.Pattern{Subject: uri}) {
		facts++
		switch t.Predicate {
		case rdf.RDFSLabel:
			if t.Object.IsLiteral() && d.Label == "" {
				d.Label = t.Object.Value
			}
		case rdf.RDFType:
			if t.Object.IsReference() {
				d.Types = append(d.Types, t.Object.Value)
			}
		case rdf.MetaDeprecationDate:
			if t.Object.IsLiteral() && d.Dep == "" {
				d.Dep = t.Object.Value
			}
		case rdf.SKOSDefinition:
			if t.Object.IsLiteral() && d.Definition == "" {
				d.Definition = t.Object.Value
			}
		case rdf.RDFSSubClassOf:
			if t.Object.IsReference() {
				d.Parents = append(d.Parents, t.Object.Value)
			}
		default:
			if includeExtras {
				d.Properties[t.Predicate] = append(d.Properties[t.Predicate], t.Object.Value)
			}
		}
	}

	if facts == 0 {
		return nil, notFound(uri)
	}
	return d, nil
}

// deprecated reports whether uri carries a deprecation date literal.
func (e *Engine) deprecated(uri string) bool {
	for t := range e.src.Triples(rdf.Pattern{Subject: uri, Predicate: rdf.MetaDeprecationDate}) {
		if t.Object.IsLiteral() {
			return true
		}
	}
	return false
}
