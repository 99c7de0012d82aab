// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package sparql

import (
	"strings"

	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

var controlChars = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

// sanitize writes control characters as their escape sequences so every
// literal stays on one line of the snapshot.
func sanitize(s string) string {
	return controlChars.Replace(s)
}

func (f *Fetcher) absolute(iri string) string {
	if strings.HasPrefix(iri, "http://") || strings.HasPrefix(iri, "https://") {
		return iri
	}
	return f.opts.BaseIRI + iri
}

func (f *Fetcher) convert(row map[string]binding) ([]rdf.Triple, error) {
	id, ok := row["id"]
	if !ok || id.Value == "" {
		return nil, rdlerr.New(rdlerr.CodeSourceResponseInvalid, "row has no id")
	}

	var subject string
	switch id.Type {
	case "uri":
		subject = f.absolute(id.Value)
	case "bnode":
		subject = rdf.Blank(id.Value).Value
	default:
		return nil, rdlerr.New(rdlerr.CodeSourceResponseInvalid, "row id is not a resource", rdlerr.Field("id", id.Value))
	}

	if _, generic := row["predicate"]; generic {
		return f.convertGeneric(subject, row)
	}
	return f.convertClass(subject, row)
}

func (f *Fetcher) convertGeneric(subject string, row map[string]binding) ([]rdf.Triple, error) {
	pred := row["predicate"]
	if pred.Type != "uri" {
		return nil, rdlerr.New(rdlerr.CodeSourceResponseInvalid, "row predicate is not an IRI", rdlerr.Field("id", subject))
	}
	obj, ok := row["object"]
	if !ok {
		return nil, rdlerr.New(rdlerr.CodeSourceResponseInvalid, "row has no object", rdlerr.Field("id", subject))
	}

	term, err := f.object(obj)
	if err != nil {
		return nil, err
	}
	return []rdf.Triple{{Subject: subject, Predicate: f.absolute(pred.Value), Object: term}}, nil
}

func (f *Fetcher) convertClass(subject string, row map[string]binding) ([]rdf.Triple, error) {
	label, ok := row["label"]
	if !ok || !isLiteral(label) {
		return nil, rdlerr.New(rdlerr.CodeSourceResponseInvalid, "row has no literal label", rdlerr.Field("id", subject))
	}

	out := []rdf.Triple{{Subject: subject, Predicate: rdf.RDFSLabel, Object: f.literal(label)}}

	if t, ok := row["type"]; ok && t.Type == "uri" {
		out = append(out, rdf.Triple{Subject: subject, Predicate: rdf.RDFType, Object: rdf.IRI(f.absolute(t.Value))})
	}
	if d, ok := row["definition"]; ok && isLiteral(d) {
		out = append(out, rdf.Triple{Subject: subject, Predicate: rdf.SKOSDefinition, Object: f.literal(d)})
	}
	if p, ok := row["parentId"]; ok {
		switch p.Type {
		case "uri":
			out = append(out, rdf.Triple{Subject: subject, Predicate: rdf.RDFSSubClassOf, Object: rdf.IRI(f.absolute(p.Value))})
		case "bnode":
			out = append(out, rdf.Triple{Subject: subject, Predicate: rdf.RDFSSubClassOf, Object: rdf.Blank(p.Value)})
		}
	}
	if d, ok := row["deprecationDate"]; ok && isLiteral(d) {
		out = append(out, rdf.Triple{Subject: subject, Predicate: rdf.MetaDeprecationDate, Object: f.literal(d)})
	}
	return out, nil
}

func (f *Fetcher) object(b binding) (rdf.Term, error) {
	switch {
	case b.Type == "uri":
		return rdf.IRI(f.absolute(b.Value)), nil
	case b.Type == "bnode":
		return rdf.Blank(b.Value), nil
	case isLiteral(b):
		return f.literal(b), nil
	default:
		return rdf.Term{}, rdlerr.New(rdlerr.CodeSourceResponseInvalid, "unknown binding type", rdlerr.Field("type", b.Type))
	}
}

func (f *Fetcher) literal(b binding) rdf.Term {
	v := sanitize(b.Value)
	switch {
	case b.Lang != "":
		return rdf.LangLiteral(v, b.Lang)
	case b.Datatype != "":
		return rdf.TypedLiteral(v, b.Datatype)
	default:
		return rdf.Literal(v)
	}
}

func isLiteral(b binding) bool {
	return b.Type == "literal" || b.Type == "typed-literal"
}
