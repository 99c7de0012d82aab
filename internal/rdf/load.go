// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package rdf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	knakk "github.com/knakk/rdf"
)

// Format is a snapshot serialization.
type Format string

const (
	FormatNTriples Format = "ntriples"
	FormatTurtle   Format = "turtle"
)

// ctxCheckInterval is how many triples are decoded between cancellation checks.
const ctxCheckInterval = 4096

// FormatForPath picks the serialization from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return FormatNTriples, nil
	case ".ttl":
		return FormatTurtle, nil
	default:
		return "", rdlerr.New(rdlerr.CodeSnapshotFormatInvalid,
			"unsupported snapshot extension, want .nt or .ttl", rdlerr.FieldPath(path))
	}
}

func (f Format) knakk() knakk.Format {
	if f == FormatTurtle {
		return knakk.Turtle
	}
	return knakk.NTriples
}

// Load reads a snapshot file into a Store.
func Load(ctx context.Context, path string) (*Store, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotNotFound, "snapshot file missing", rdlerr.FieldPath(path))
		}
		return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotReadFailure, "opening snapshot", rdlerr.FieldPath(path))
	}
	defer f.Close() //nolint:errcheck // read-only

	start := time.Now()
	store, err := Decode(ctx, bufio.NewReaderSize(f, 1<<20), format)
	if err != nil {
		return nil, rdlerr.With(err, rdlerr.FieldPath(path))
	}

	slog.Info("snapshot loaded",
		"path", path,
		"triples", store.Len(),
		"subjects", store.SubjectCount(),
		"duration", time.Since(start),
	)
	return store, nil
}

// Decode parses a serialized graph from r.
func Decode(ctx context.Context, r io.Reader, format Format) (*Store, error) {
	dec := knakk.NewTripleDecoder(r, format.knakk())
	b := NewBuilder()

	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		kt, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotParseInvalid, "decoding triples",
				rdlerr.Field("triples_read", n))
		}

		b.Add(fromKnakk(kt))
	}

	return b.Build(), nil
}

func fromKnakk(t knakk.Triple) Triple {
	return Triple{
		Subject:   subjectString(t.Subj),
		Predicate: t.Pred.String(),
		Object:    termFromKnakk(t.Obj),
	}
}

func subjectString(s knakk.Subject) string {
	if s.Type() == knakk.TermBlank {
		return "_:" + strings.TrimPrefix(s.String(), "_:")
	}
	return s.String()
}

func termFromKnakk(o knakk.Object) Term {
	switch o.Type() {
	case knakk.TermIRI:
		return IRI(o.String())
	case knakk.TermBlank:
		return Blank(o.String())
	default:
		lit, ok := o.(knakk.Literal)
		if !ok {
			return Literal(o.String())
		}
		if lang := lit.Lang(); lang != "" {
			return LangLiteral(lit.String(), lang)
		}
		return TypedLiteral(lit.String(), lit.DataType.String())
	}
}

// Encoder streams triples as N-Triples.
type Encoder struct {
	enc *knakk.TripleEncoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: knakk.NewTripleEncoder(w, knakk.NTriples)}
}

func (e *Encoder) Encode(t Triple) error {
	kt, err := toKnakk(t)
	if err != nil {
		return err
	}
	if err := e.enc.Encode(kt); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "encoding triple",
			rdlerr.FieldURI(t.Subject))
	}
	return nil
}

// Close flushes buffered output. It does not close the underlying writer.
func (e *Encoder) Close() error {
	if err := e.enc.Close(); err != nil {
		return rdlerr.Wrap(err, rdlerr.CodeSnapshotWriteFailure, "flushing encoder")
	}
	return nil
}

// WriteNTriples serializes every triple of s to w.
func WriteNTriples(w io.Writer, s *Store) error {
	enc := NewEncoder(w)
	for t := range s.Triples(Pattern{}) {
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return enc.Close()
}

func toKnakk(t Triple) (knakk.Triple, error) {
	subj, err := knakkSubject(t.Subject)
	if err != nil {
		return knakk.Triple{}, err
	}
	pred, err := knakk.NewIRI(t.Predicate)
	if err != nil {
		return knakk.Triple{}, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid predicate",
			rdlerr.FieldURI(t.Predicate))
	}
	obj, err := knakkObject(t.Object)
	if err != nil {
		return knakk.Triple{}, rdlerr.With(err, rdlerr.FieldURI(t.Subject))
	}
	return knakk.Triple{Subj: subj, Pred: pred, Obj: obj}, nil
}

func knakkSubject(s string) (knakk.Subject, error) {
	if id, ok := strings.CutPrefix(s, "_:"); ok {
		b, err := knakk.NewBlank(id)
		if err != nil {
			return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid blank node", rdlerr.FieldURI(s))
		}
		return b, nil
	}
	iri, err := knakk.NewIRI(s)
	if err != nil {
		return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid subject", rdlerr.FieldURI(s))
	}
	return iri, nil
}

func knakkObject(o Term) (knakk.Object, error) {
	switch o.Kind {
	case KindIRI:
		iri, err := knakk.NewIRI(o.Value)
		if err != nil {
			return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid object IRI")
		}
		return iri, nil
	case KindBlank:
		b, err := knakk.NewBlank(strings.TrimPrefix(o.Value, "_:"))
		if err != nil {
			return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid blank node")
		}
		return b, nil
	case KindLiteral:
		if o.Lang != "" {
			lit, err := knakk.NewLangLiteral(o.Value, o.Lang)
			if err != nil {
				return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid language tag")
			}
			return lit, nil
		}
		if o.Datatype != "" {
			dt, err := knakk.NewIRI(o.Datatype)
			if err != nil {
				return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid datatype")
			}
			return knakk.NewTypedLiteral(o.Value, dt), nil
		}
		lit, err := knakk.NewLiteral(o.Value)
		if err != nil {
			return nil, rdlerr.Wrap(err, rdlerr.CodeSnapshotFormatInvalid, "invalid literal")
		}
		return lit, nil
	default:
		return nil, rdlerr.New(rdlerr.CodeSnapshotFormatInvalid, "object has no kind")
	}
}
