// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package rdf

import (
	"iter"

	"github.com/tidwall/btree"
)

// Store is an immutable, indexed triple set. It is safe for concurrent reads.
//
// Two B-tree orderings back the lookups: SPO answers "all facts about X",
// POS answers "all subjects with predicate P and object O" (children of a
// node). Iteration follows index order, so results are stable for a given
// triple set no matter what order the triples were added in.
type Store struct {
	spo      *btree.BTreeG[Triple]
	pos      *btree.BTreeG[Triple]
	subjects int
}

// Builder accumulates triples for a Store. It is not safe for concurrent use.
type Builder struct {
	spo *btree.BTreeG[Triple]
	pos *btree.BTreeG[Triple]
}

func NewBuilder() *Builder {
	opts := btree.Options{NoLocks: true}
	return &Builder{
		spo: btree.NewBTreeGOptions(lessSPO, opts),
		pos: btree.NewBTreeGOptions(lessPOS, opts),
	}
}

// Add inserts t and reports whether it was new. Triples with an empty
// subject, empty predicate or untyped object are ignored.
func (b *Builder) Add(t Triple) bool {
	if t.Subject == "" || t.Predicate == "" || t.Object.Kind == KindAny {
		return false
	}
	if _, replaced := b.spo.Set(t); replaced {
		return false
	}
	b.pos.Set(t)
	return true
}

func (b *Builder) Len() int {
	return b.spo.Len()
}

// Build freezes the accumulated triples. The builder must not be used afterwards.
func (b *Builder) Build() *Store {
	s := &Store{spo: b.spo, pos: b.pos}
	last := ""
	s.spo.Scan(func(t Triple) bool {
		if t.Subject != last {
			s.subjects++
			last = t.Subject
		}
		return true
	})
	b.spo, b.pos = nil, nil
	return s
}

// NewStore builds a store from literal triples.
func NewStore(triples ...Triple) *Store {
	b := NewBuilder()
	for _, t := range triples {
		b.Add(t)
	}
	return b.Build()
}

// Len returns the number of distinct triples.
func (s *Store) Len() int {
	return s.spo.Len()
}

// SubjectCount returns the number of distinct subjects.
func (s *Store) SubjectCount() int {
	return s.subjects
}

// Exists reports whether any triple has subject as its subject.
func (s *Store) Exists(subject string) bool {
	if subject == "" {
		return false
	}
	found := false
	s.spo.Ascend(Triple{Subject: subject}, func(t Triple) bool {
		found = t.Subject == subject
		return false
	})
	return found
}

// Triples yields every triple matching p.
func (s *Store) Triples(p Pattern) iter.Seq[Triple] {
	return func(yield func(Triple) bool) {
		switch {
		case p.Subject != "":
			pivot := Triple{Subject: p.Subject}
			if p.Predicate != "" {
				pivot.Predicate = p.Predicate
				pivot.Object = p.Object
			}
			s.spo.Ascend(pivot, func(t Triple) bool {
				if t.Subject != p.Subject {
					return false
				}
				if p.Predicate != "" && t.Predicate != p.Predicate {
					return false
				}
				if !p.matches(t) {
					return true
				}
				return yield(t)
			})
		case p.Predicate != "":
			pivot := Triple{Predicate: p.Predicate, Object: p.Object}
			s.pos.Ascend(pivot, func(t Triple) bool {
				if t.Predicate != p.Predicate {
					return false
				}
				if p.Object.Kind != KindAny && compareTerms(t.Object, p.Object) != 0 {
					return false
				}
				return yield(t)
			})
		default:
			s.spo.Scan(func(t Triple) bool {
				if !p.matches(t) {
					return true
				}
				return yield(t)
			})
		}
	}
}

// Subjects yields each distinct subject once, in index order.
func (s *Store) Subjects() iter.Seq[string] {
	return func(yield func(string) bool) {
		last := ""
		s.spo.Scan(func(t Triple) bool {
			if t.Subject == last {
				return true
			}
			last = t.Subject
			return yield(t.Subject)
		})
	}
}
