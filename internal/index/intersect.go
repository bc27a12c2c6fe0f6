package index

import "sort"

// Constraint is a single facet filter. Values carries one entry for most
// kinds; for KindTag it may carry several, which match as OR (any of the
// tags). Constraints of different kinds always combine as AND.
//
// So {category: X} + {tag: t1, t2} means: category == X AND (has t1 OR t2).
type Constraint struct {
	Kind   Kind
	Values []string
}

// Intersect evaluates the constraint list and returns the candidate set.
//
// Each constraint first resolves to a member set (union over its values for
// the OR-within-tags rule), then the sets intersect smallest-first. The
// smallest-first ordering is required, not cosmetic: large tag facets make
// pairwise intersection cost proportional to the first operand, and
// starting from the rarest facet value bounds the whole evaluation by the
// smallest member set.
//
// An empty constraint list matches the whole index.
func (ix *Index) Intersect(constraints []Constraint) IDSet {
	if len(constraints) == 0 {
		return ix.ids
	}

	sets := make([]IDSet, 0, len(constraints))
	for _, c := range constraints {
		sets = append(sets, ix.resolve(c))
	}

	sort.Slice(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })

	result := sets[0]
	if len(result) == 0 {
		return IDSet{}
	}
	for _, set := range sets[1:] {
		result = intersectPair(result, set)
		if len(result) == 0 {
			return IDSet{}
		}
	}
	return result
}

// resolve returns the member set of one constraint: the union of the id
// sets of its values.
func (ix *Index) resolve(c Constraint) IDSet {
	if len(c.Values) == 1 {
		set := ix.Lookup(c.Kind, c.Values[0])
		if set == nil {
			return IDSet{}
		}
		return set
	}
	union := make(IDSet)
	for _, v := range c.Values {
		for id := range ix.Lookup(c.Kind, v) {
			union[id] = struct{}{}
		}
	}
	return union
}

// intersectPair walks the smaller set and probes the larger.
func intersectPair(a, b IDSet) IDSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(IDSet, len(a))
	for id := range a {
		if b.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}
