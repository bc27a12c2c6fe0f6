// Package planner turns a candidate id set into an ordered, constrained
// selection. Every decision in here is deterministic for a given
// (candidates, request) pair: unseeded selections order candidates by id,
// seeded ones by a seeded permutation, and all tie-breaks are explicit.
package planner

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/abhisek/qbank/internal/index"
	"github.com/abhisek/qbank/internal/question"
)

// ErrEmptyCandidateSet is returned only when the candidate set is empty
// before exclusions are applied. Running short after exclusions is not an
// error; it degrades to StatusPartial.
var ErrEmptyCandidateSet = errors.New("empty candidate set")

// Status reports whether a selection met the requested count.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
)

// Request describes one selection.
type Request struct {
	// Count is the target number of questions. Must be >= 1.
	Count int

	// TimeBudget caps the summed time estimate of the result, in minutes.
	// Zero means no budget.
	TimeBudget int

	// Excluded ids are never returned (served or skipped earlier).
	Excluded index.IDSet

	// DifficultyMix optionally distributes Count across tiers, e.g.
	// {beginner: 0.2, intermediate: 0.5, senior: 0.3}. Weights need not sum
	// to 1; they are normalized.
	DifficultyMix map[question.Difficulty]float64

	// Seed drives the sampling permutation when HasSeed is set. Without a
	// seed, candidates are taken in id-lexical order.
	Seed    int64
	HasSeed bool
}

// Resolver supplies question records for candidate ids. The facet index
// satisfies this.
type Resolver interface {
	Question(id string) (question.Question, bool)
}

// Plan selects an ordered id list from candidates under the request's
// constraints:
//
//  1. Excluded ids are dropped.
//  2. With a DifficultyMix, candidates are partitioned by tier and sampled
//     per the mix using largest-remainder rounding; an exhausted partition's
//     shortfall is redistributed proportionally over partitions that still
//     have supply, then over any remaining candidates, so the result only
//     runs short when the whole pool does.
//  3. With a TimeBudget, the sampled list is re-sorted by ascending time
//     estimate and filled greedily until the next question would exceed the
//     budget.
//  4. A short result is StatusPartial, never an error.
func Plan(candidates index.IDSet, req Request, res Resolver) ([]string, Status, error) {
	if req.Count < 1 {
		return nil, "", fmt.Errorf("invalid count %d: must be >= 1", req.Count)
	}
	if len(candidates) == 0 {
		return nil, "", ErrEmptyCandidateSet
	}

	ordered := orderCandidates(candidates, req)

	remaining := make([]string, 0, len(ordered))
	for _, id := range ordered {
		if req.Excluded.Contains(id) {
			continue
		}
		remaining = append(remaining, id)
	}

	var picked []string
	if len(req.DifficultyMix) > 0 {
		picked = sampleMix(remaining, req.Count, req.DifficultyMix, res)
	} else if len(remaining) > req.Count {
		picked = remaining[:req.Count]
	} else {
		picked = remaining
	}

	if req.TimeBudget > 0 {
		picked = fillBudget(picked, req.TimeBudget, res)
	}

	status := StatusComplete
	if len(picked) < req.Count {
		status = StatusPartial
	}
	return picked, status, nil
}

// orderCandidates fixes the sampling order: id-lexical, permuted by a
// seeded shuffle when a seed is given. Both orders are reproducible for the
// same input.
func orderCandidates(candidates index.IDSet, req Request) []string {
	ordered := candidates.Sorted()
	if req.HasSeed {
		rng := rand.New(rand.NewSource(req.Seed))
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}
	return ordered
}

// fillBudget sorts by ascending time estimate (id tiebreak) and accumulates
// until the next question would exceed the budget. Because the scan is
// ascending, stopping at the first overflow is optimal within the sorted
// order: everything unselected costs at least as much as the question that
// overflowed.
func fillBudget(ids []string, budget int, res Resolver) []string {
	sorted := append([]string(nil), ids...)
	sort.SliceStable(sorted, func(i, j int) bool {
		qi, _ := res.Question(sorted[i])
		qj, _ := res.Question(sorted[j])
		if qi.TimeEstimate != qj.TimeEstimate {
			return qi.TimeEstimate < qj.TimeEstimate
		}
		return sorted[i] < sorted[j]
	})

	var out []string
	spent := 0
	for _, id := range sorted {
		q, ok := res.Question(id)
		if !ok {
			continue
		}
		if spent+q.TimeEstimate > budget {
			break
		}
		spent += q.TimeEstimate
		out = append(out, id)
	}
	return out
}
