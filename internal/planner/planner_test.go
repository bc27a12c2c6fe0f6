package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/abhisek/qbank/internal/index"
	"github.com/abhisek/qbank/internal/question"
)

// mapResolver implements Resolver over a plain map.
type mapResolver map[string]question.Question

func (m mapResolver) Question(id string) (question.Question, bool) {
	q, ok := m[id]
	return q, ok
}

func pool(entries ...question.Question) (index.IDSet, mapResolver) {
	set := make(index.IDSet, len(entries))
	res := make(mapResolver, len(entries))
	for _, q := range entries {
		set[q.ID] = struct{}{}
		res[q.ID] = q
	}
	return set, res
}

func q(id string, diff question.Difficulty, minutes int) question.Question {
	return question.Question{ID: id, Difficulty: diff, TimeEstimate: minutes}
}

func TestPlanLexicalOrderWithoutSeed(t *testing.T) {
	candidates, res := pool(
		q("c", question.DifficultyBeginner, 1),
		q("a", question.DifficultyBeginner, 1),
		q("b", question.DifficultyBeginner, 1),
	)
	ids, status, err := Plan(candidates, Request{Count: 2}, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if status != StatusComplete {
		t.Errorf("status = %v, want complete", status)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("ids = %v, want [a b]", ids)
	}
}

func TestPlanSeededDeterminism(t *testing.T) {
	candidates, res := pool(
		q("a", question.DifficultyBeginner, 1),
		q("b", question.DifficultyBeginner, 1),
		q("c", question.DifficultyBeginner, 1),
		q("d", question.DifficultyBeginner, 1),
		q("e", question.DifficultyBeginner, 1),
	)
	req := Request{Count: 3, Seed: 42, HasSeed: true}

	first, _, err := Plan(candidates, req, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	second, _, err := Plan(candidates, req, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed gave %v then %v", first, second)
	}

	other, _, err := Plan(candidates, Request{Count: 3, Seed: 43, HasSeed: true}, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if reflect.DeepEqual(first, other) {
		t.Log("different seeds produced the same order; permissible but unexpected")
	}
}

func TestPlanExclusion(t *testing.T) {
	candidates, res := pool(
		q("a", question.DifficultyBeginner, 1),
		q("b", question.DifficultyBeginner, 1),
	)
	ids, status, err := Plan(candidates, Request{
		Count:    2,
		Excluded: index.NewIDSet("a"),
	}, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"b"}) {
		t.Errorf("ids = %v, want [b]", ids)
	}
	if status != StatusPartial {
		t.Errorf("status = %v, want partial", status)
	}
}

func TestPlanEmptyCandidateSet(t *testing.T) {
	_, _, err := Plan(index.IDSet{}, Request{Count: 1}, mapResolver{})
	if !errors.Is(err, ErrEmptyCandidateSet) {
		t.Fatalf("Plan() error = %v, want ErrEmptyCandidateSet", err)
	}
}

func TestPlanExhaustedByExclusionIsPartialNotError(t *testing.T) {
	candidates, res := pool(q("a", question.DifficultyBeginner, 1))
	ids, status, err := Plan(candidates, Request{
		Count:    1,
		Excluded: index.NewIDSet("a"),
	}, res)
	if err != nil {
		t.Fatalf("Plan() error = %v, want nil (degrade to partial)", err)
	}
	if len(ids) != 0 || status != StatusPartial {
		t.Errorf("got %v, %v; want empty partial", ids, status)
	}
}

func TestPlanInvalidCount(t *testing.T) {
	candidates, res := pool(q("a", question.DifficultyBeginner, 1))
	if _, _, err := Plan(candidates, Request{Count: 0}, res); err == nil {
		t.Fatal("Plan() with count 0 should error")
	}
}

// Candidates a(3m) and b(5m) under a 4-minute budget keep only a,
// since adding b would exceed the budget.
func TestPlanTimeBudgetGreedyFill(t *testing.T) {
	candidates, res := pool(
		q("a", question.DifficultyBeginner, 3),
		q("b", question.DifficultySenior, 5),
	)
	ids, status, err := Plan(candidates, Request{Count: 2, TimeBudget: 4}, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"a"}) {
		t.Errorf("ids = %v, want [a]", ids)
	}
	if status != StatusPartial {
		t.Errorf("status = %v, want partial", status)
	}
}

func TestPlanTimeBudgetNeverExceeded(t *testing.T) {
	candidates, res := pool(
		q("a", question.DifficultyBeginner, 2),
		q("b", question.DifficultyBeginner, 3),
		q("c", question.DifficultyBeginner, 4),
		q("d", question.DifficultyBeginner, 7),
		q("e", question.DifficultyBeginner, 1),
	)
	for _, budget := range []int{1, 3, 6, 10, 17, 100} {
		ids, _, err := Plan(candidates, Request{Count: 5, TimeBudget: budget}, res)
		if err != nil {
			t.Fatalf("Plan(budget=%d) error = %v", budget, err)
		}
		total := 0
		for _, id := range ids {
			qq, _ := res.Question(id)
			total += qq.TimeEstimate
		}
		if total > budget {
			t.Errorf("budget %d: selection costs %d", budget, total)
		}
	}
}

func TestPlanBudgetFillsCheapestFirst(t *testing.T) {
	candidates, res := pool(
		q("slow", question.DifficultyBeginner, 9),
		q("fast", question.DifficultyBeginner, 1),
		q("mid", question.DifficultyBeginner, 4),
	)
	ids, _, err := Plan(candidates, Request{Count: 3, TimeBudget: 5}, res)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"fast", "mid"}) {
		t.Errorf("ids = %v, want [fast mid]", ids)
	}
}
