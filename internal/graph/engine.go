// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package graph answers hierarchy and search queries over one loaded
// reference data snapshot. An Engine never mutates its source and holds no
// per-call state, so a single Engine serves any number of concurrent queries.
package graph

import (
	"iter"
	"strings"

	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// TripleSource is the fact base an Engine reads. *rdf.Store implements it.
type TripleSource interface {
	Triples(p rdf.Pattern) iter.Seq[rdf.Triple]
	Exists(subject string) bool
}

var _ TripleSource = (*rdf.Store)(nil)

// Settings bound the work a single query may do.
type Settings struct {
	RootURI string

	// MaxDepth caps Subtree depth.
	MaxDepth int

	// MaxAscent caps the number of parent hops LocalHierarchy takes.
	MaxAscent int

	DefaultSearchLimit int
	MaxSearchLimit     int

	// MinSimilarity is the lowest search score (0-100) returned.
	MinSimilarity float64
}

func DefaultSettings() Settings {
	return Settings{
		RootURI:            rdf.DefaultRoot,
		MaxDepth:           10,
		MaxAscent:          256,
		DefaultSearchLimit: 5,
		MaxSearchLimit:     25,
		MinSimilarity:      75,
	}
}

func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.RootURI == "" {
		s.RootURI = d.RootURI
	}
	if s.MaxDepth <= 0 {
		s.MaxDepth = d.MaxDepth
	}
	if s.MaxAscent <= 0 {
		s.MaxAscent = d.MaxAscent
	}
	if s.MaxSearchLimit <= 0 {
		s.MaxSearchLimit = d.MaxSearchLimit
	}
	if s.DefaultSearchLimit <= 0 {
		s.DefaultSearchLimit = d.DefaultSearchLimit
	}
	if s.DefaultSearchLimit > s.MaxSearchLimit {
		s.DefaultSearchLimit = s.MaxSearchLimit
	}
	if s.MinSimilarity <= 0 {
		s.MinSimilarity = d.MinSimilarity
	}
	return s
}

// Engine is a query view over one TripleSource.
type Engine struct {
	src      TripleSource
	settings Settings
}

// NewEngine binds an engine to src. Zero-valued settings take their defaults.
func NewEngine(src TripleSource, s Settings) *Engine {
	return &Engine{src: src, settings: s.withDefaults()}
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Root returns basic info for the configured root node.
func (e *Engine) Root() (*Node, error) {
	if !e.src.Exists(e.settings.RootURI) {
		return nil, rdlerr.New(rdlerr.CodeGraphRootNotFound, "root node not in snapshot",
			rdlerr.FieldURI(e.settings.RootURI))
	}
	return e.BasicInfo(e.settings.RootURI), nil
}

func notFound(uri string) error {
	return rdlerr.New(rdlerr.CodeGraphNodeNotFound, "node not found", rdlerr.FieldURI(uri))
}

// nodeTerm is the object-position term that refers to the node uri.
func nodeTerm(uri string) rdf.Term {
	if strings.HasPrefix(uri, "_:") {
		return rdf.Blank(uri)
	}
	return rdf.IRI(uri)
}
