// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package graph

import (
	"cmp"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/iso15926vis/rdlvis/internal/rdf"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

// Field selects what Search matches against.
type Field string

const (
	FieldID    Field = "id"
	FieldLabel Field = "label"
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(s)) {
	case FieldID:
		return FieldID, nil
	case FieldLabel:
		return FieldLabel, nil
	default:
		return "", rdlerr.New(rdlerr.CodeGraphSearchInvalidField, "search field must be id or label",
			rdlerr.Field("field", s))
	}
}

// Score weights. The whole-string ratio dominates; the partial ratio keeps
// literal substring hits from being drowned out.
const (
	ratioWeight   = 0.6
	partialWeight = 0.4
)

type candidate struct {
	key        string
	uri        string
	deprecated bool
	// label is the matched label as written; empty for id candidates.
	label string
}

type scored struct {
	candidate
	score float64
}

// Search ranks node ids or labels by fuzzy similarity to key. An empty
// result is not an error. Label hits report the label that matched, which
// may differ from BasicInfo's choice on nodes with several labels.
func (e *Engine) Search(key string, field Field, opts SearchOptions) ([]SearchHit, error) {
	var cands []candidate
	switch field {
	case FieldID:
		cands = e.idCandidates(opts.IncludeDeprecated)
	case FieldLabel:
		cands = e.labelCandidates(opts.IncludeDeprecated)
	default:
		return nil, rdlerr.New(rdlerr.CodeGraphSearchInvalidField, "search field must be id or label",
			rdlerr.Field("field", string(field)))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.settings.DefaultSearchLimit
	}
	limit = min(limit, e.settings.MaxSearchLimit)

	minScore := opts.MinSimilarity
	if minScore <= 0 {
		minScore = e.settings.MinSimilarity
	}

	query := []rune(strings.ToLower(strings.TrimSpace(key)))
	hits := []SearchHit{}
	if len(query) == 0 {
		return hits, nil
	}

	var ranked []scored
	for _, c := range cands {
		if s := score(query, []rune(c.key), minScore); s >= minScore {
			ranked = append(ranked, scored{candidate: c, score: s})
		}
	}

	slices.SortFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.uri, b.uri)
	})

	for _, r := range ranked[:min(limit, len(ranked))] {
		n := e.BasicInfo(r.uri)
		if r.label != "" {
			n.Label = r.label
		}
		hits = append(hits, SearchHit{
			Node:  *n,
			Score: math.Round(r.score*100) / 100,
		})
	}
	return hits, nil
}

// idCandidates is every subject, keyed by its lower-cased URI.
func (e *Engine) idCandidates(includeDeprecated bool) []candidate {
	var out []candidate
	for s := range e.subjects() {
		dep := e.deprecated(s)
		if dep && !includeDeprecated {
			continue
		}
		out = append(out, candidate{key: strings.ToLower(s), uri: s, deprecated: dep})
	}
	return out
}

// labelCandidates is every distinct lower-cased label with one representative
// node: the smallest URI, preferring nodes that are not deprecated.
func (e *Engine) labelCandidates(includeDeprecated bool) []candidate {
	reps := make(map[string]candidate)
	var order []string
	for t := range e.src.Triples(rdf.Pattern{Predicate: rdf.RDFSLabel}) {
		if !t.Object.IsLiteral() {
			continue
		}
		c := candidate{key: strings.ToLower(t.Object.Value), uri: t.Subject, label: t.Object.Value}
		if !includeDeprecated {
			c.deprecated = e.deprecated(t.Subject)
		}

		prev, ok := reps[c.key]
		if !ok {
			order = append(order, c.key)
			reps[c.key] = c
			continue
		}
		if prev.deprecated != c.deprecated {
			if !c.deprecated {
				reps[c.key] = c
			}
			continue
		}
		if c.uri < prev.uri {
			reps[c.key] = c
		}
	}

	out := make([]candidate, 0, len(order))
	for _, k := range order {
		c := reps[k]
		if c.deprecated && !includeDeprecated {
			continue
		}
		out = append(out, c)
	}
	return out
}

// subjects yields distinct subjects. Sources without a subject index are
// scanned in full.
func (e *Engine) subjects() iter.Seq[string] {
	if s, ok := e.src.(interface{ Subjects() iter.Seq[string] }); ok {
		return s.Subjects()
	}
	return func(yield func(string) bool) {
		seen := make(map[string]struct{})
		for t := range e.src.Triples(rdf.Pattern{}) {
			if _, ok := seen[t.Subject]; ok {
				continue
			}
			seen[t.Subject] = struct{}{}
			if !yield(t.Subject) {
				return
			}
		}
	}
}

// score combines ratio and partialRatio. Candidates that cannot reach
// floor are cut short before the expensive partial pass.
func score(a, b []rune, floor float64) float64 {
	bound := lengthBound(len(a), len(b))
	if ratioWeight*bound+partialWeight*100 < floor {
		return 0
	}
	r := ratio(a, b)
	if ratioWeight*r+partialWeight*100 < floor {
		return 0
	}
	return ratioWeight*r + partialWeight*partialRatio(a, b)
}

// lengthBound is the highest ratio two strings of these lengths can have.
func lengthBound(la, lb int) float64 {
	if la+lb == 0 {
		return 100
	}
	return 200 * float64(min(la, lb)) / float64(la+lb)
}

// ratio is the normalized longest-common-subsequence similarity, 0-100.
func ratio(a, b []rune) float64 {
	if len(a)+len(b) == 0 {
		return 100
	}
	lcs := edlib.LCS(string(a), string(b))
	return 200 * float64(lcs) / float64(len(a)+len(b))
}

// partialRatio is the best ratio of the shorter string against every
// equal-length window of the longer one.
func partialRatio(a, b []rune) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(short, long[i:i+len(short)])
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}
