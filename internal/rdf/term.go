// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package rdf

import "strings"

// TermKind distinguishes references from literal values.
type TermKind uint8

const (
	// KindAny is the zero kind. A Term of this kind matches anything in a Pattern.
	KindAny TermKind = iota
	KindIRI
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "any"
	}
}

// Term is an RDF object position value.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Blank returns a blank node term. The "_:" prefix is optional.
func Blank(id string) Term {
	return Term{Kind: KindBlank, Value: "_:" + strings.TrimPrefix(id, "_:")}
}

func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

func TypedLiteral(value, datatype string) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// IsReference reports whether the term names a node (IRI or blank node).
func (t Term) IsReference() bool {
	return t.Kind == KindIRI || t.Kind == KindBlank
}

func (t Term) IsLiteral() bool {
	return t.Kind == KindLiteral
}

// String returns the lexical value of the term.
func (t Term) String() string {
	return t.Value
}

func compareTerms(a, b Term) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Lang, b.Lang); c != 0 {
		return c
	}
	return strings.Compare(a.Datatype, b.Datatype)
}

// Triple is one (subject, predicate, object) fact. Subjects are IRIs or
// "_:"-prefixed blank node ids.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// Pattern selects triples. Empty positions are wildcards.
type Pattern struct {
	Subject   string
	Predicate string
	Object    Term
}

func (p Pattern) matches(t Triple) bool {
	if p.Subject != "" && p.Subject != t.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != t.Predicate {
		return false
	}
	if p.Object.Kind != KindAny && compareTerms(p.Object, t.Object) != 0 {
		return false
	}
	return true
}

// lessSPO orders triples by subject, predicate, object.
func lessSPO(a, b Triple) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	if a.Predicate != b.Predicate {
		return a.Predicate < b.Predicate
	}
	return compareTerms(a.Object, b.Object) < 0
}

// lessPOS orders triples by predicate, object, subject.
func lessPOS(a, b Triple) bool {
	if a.Predicate != b.Predicate {
		return a.Predicate < b.Predicate
	}
	if c := compareTerms(a.Object, b.Object); c != 0 {
		return c < 0
	}
	return a.Subject < b.Subject
}
