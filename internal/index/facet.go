// Package index builds inverted facet indexes over a question corpus.
//
// An Index is an immutable value: Build constructs one from a corpus, and
// Add/Remove return new Index values sharing unchanged facet sets with the
// old one. Readers therefore never observe a half-applied update; a writer
// publishes the new Index reference atomically (the engine façade does this
// with an atomic pointer).
package index

import (
	"sort"

	"github.com/abhisek/qbank/internal/question"
)

// Kind names a facet dimension.
type Kind string

const (
	KindCategory   Kind = "category"
	KindDifficulty Kind = "difficulty"
	KindType       Kind = "type"
	KindTag        Kind = "tag"
	KindFormat     Kind = "format"
)

// Kinds returns every facet kind the index maintains.
func Kinds() []Kind {
	return []Kind{KindCategory, KindDifficulty, KindType, KindTag, KindFormat}
}

// IDSet is a set of question ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Index is the immutable inverted index: facet kind → value → id set.
// Facet values are arbitrary strings; the source data uses open-ended
// labels, not closed enums, so nothing here enumerates values up front.
type Index struct {
	facets map[Kind]map[string]IDSet
	ids    IDSet // every indexed question id
	byID   map[string]question.Question
}

// Build constructs an index over the whole corpus. Cost is O(N × F) where F
// is the per-question facet count; tags dominate F.
func Build(corpus *question.Corpus) *Index {
	ix := emptyIndex()
	for _, q := range corpus.All() {
		ix.insert(q)
	}
	return ix
}

func emptyIndex() *Index {
	facets := make(map[Kind]map[string]IDSet, len(Kinds()))
	for _, k := range Kinds() {
		facets[k] = make(map[string]IDSet)
	}
	return &Index{
		facets: facets,
		ids:    make(IDSet),
		byID:   make(map[string]question.Question),
	}
}

// insert mutates ix in place. Only Build and the copy-on-write paths call
// it, always on an index no reader has seen yet.
func (ix *Index) insert(q question.Question) {
	for kind, value := range facetValues(q) {
		for _, v := range value {
			set, ok := ix.facets[kind][v]
			if !ok {
				set = make(IDSet)
				ix.facets[kind][v] = set
			}
			set[q.ID] = struct{}{}
		}
	}
	ix.ids[q.ID] = struct{}{}
	ix.byID[q.ID] = q
}

// facetValues maps a question to every (kind, value) pair it belongs to.
func facetValues(q question.Question) map[Kind][]string {
	return map[Kind][]string{
		KindCategory:   {q.Category},
		KindDifficulty: {q.Difficulty.String()},
		KindType:       {q.Type},
		KindTag:        q.Tags,
		KindFormat:     {string(q.Format)},
	}
}

// Len returns the number of indexed questions.
func (ix *Index) Len() int { return len(ix.ids) }

// IDs returns the set of all indexed question ids. Callers must not mutate
// the returned set.
func (ix *Index) IDs() IDSet { return ix.ids }

// Question returns the indexed question with the given id.
func (ix *Index) Question(id string) (question.Question, bool) {
	q, ok := ix.byID[id]
	return q, ok
}

// Lookup returns the id set for one facet value. The empty set is returned
// for unknown values; callers must not mutate the result.
func (ix *Index) Lookup(kind Kind, value string) IDSet {
	return ix.facets[kind][value]
}

// Values lists the distinct values of a facet kind in lexical order.
func (ix *Index) Values(kind Kind) []string {
	m := ix.facets[kind]
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Counts maps each value of a facet kind to its member count.
func (ix *Index) Counts(kind Kind) map[string]int {
	m := ix.facets[kind]
	out := make(map[string]int, len(m))
	for v, set := range m {
		out[v] = len(set)
	}
	return out
}

// Add returns a new index containing q. It rejects id collisions with a
// *question.DuplicateIDError. The receiver is unchanged; untouched facet
// sets are shared between old and new index.
func (ix *Index) Add(q question.Question) (*Index, error) {
	if ix.ids.Contains(q.ID) {
		return nil, &question.DuplicateIDError{ID: q.ID}
	}
	next := ix.cloneTouched(q)
	next.insert(q)
	return next, nil
}

// Remove returns a new index without the given question. Removing an
// unknown id returns the receiver unchanged.
func (ix *Index) Remove(id string) *Index {
	q, ok := ix.byID[id]
	if !ok {
		return ix
	}
	next := ix.cloneTouched(q)
	for kind, values := range facetValues(q) {
		for _, v := range values {
			set := next.facets[kind][v]
			delete(set, id)
			if len(set) == 0 {
				delete(next.facets[kind], v)
			}
		}
	}
	delete(next.ids, id)
	delete(next.byID, id)
	return next
}

// cloneTouched copies the index structure, deep-copying only the facet sets
// q participates in; every other set is shared with the receiver.
func (ix *Index) cloneTouched(q question.Question) *Index {
	touched := facetValues(q)
	facets := make(map[Kind]map[string]IDSet, len(ix.facets))
	for kind, m := range ix.facets {
		cloned := make(map[string]IDSet, len(m)+1)
		for v, set := range m {
			cloned[v] = set
		}
		for _, v := range touched[kind] {
			if set, ok := cloned[v]; ok {
				cloned[v] = set.clone()
			}
		}
		facets[kind] = cloned
	}
	byID := make(map[string]question.Question, len(ix.byID)+1)
	for id, qq := range ix.byID {
		byID[id] = qq
	}
	return &Index{facets: facets, ids: ix.ids.clone(), byID: byID}
}

// FacetEqual reports whether two indexes expose identical facet membership.
// Used by tests to check build/add/remove idempotence.
func FacetEqual(a, b *Index) bool {
	for _, kind := range Kinds() {
		av, bv := a.Values(kind), b.Values(kind)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
			as, bs := a.Lookup(kind, av[i]), b.Lookup(kind, bv[i])
			if len(as) != len(bs) {
				return false
			}
			for id := range as {
				if !bs.Contains(id) {
					return false
				}
			}
		}
	}
	return true
}
