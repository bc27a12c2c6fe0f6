package session

import "github.com/abhisek/qbank/internal/question"

// DifficultyPolicy decides when a session's target difficulty advances.
// It is a policy seam: the tracker's contract does not change if a
// spaced-repetition or adaptive implementation replaces the default.
type DifficultyPolicy interface {
	// Next reports the tier to move to given the current tier and the
	// number of questions served at it. stepped is false when the cursor
	// should stay put.
	Next(current question.Difficulty, servedAtTier int) (next question.Difficulty, stepped bool)
}

// StepPolicy advances one tier after every K served questions at the
// current tier, clamped at expert.
type StepPolicy struct {
	K int
}

// DefaultStepK is the number of served questions per tier before stepping.
const DefaultStepK = 3

// DefaultStepPolicy returns a StepPolicy with K = DefaultStepK.
func DefaultStepPolicy() StepPolicy {
	return StepPolicy{K: DefaultStepK}
}

func (p StepPolicy) Next(current question.Difficulty, servedAtTier int) (question.Difficulty, bool) {
	if current >= question.DifficultyExpert {
		return question.DifficultyExpert, false
	}
	k := p.K
	if k <= 0 {
		k = DefaultStepK
	}
	if servedAtTier < k {
		return current, false
	}
	return current.Next(), true
}
