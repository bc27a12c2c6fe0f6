package question

import "fmt"

// Difficulty is the ordered difficulty tier of a question. The order is
// load-bearing: session progression walks tiers from DifficultyBeginner
// up to DifficultyExpert.
type Difficulty int

const (
	DifficultyBeginner Difficulty = iota
	DifficultyIntermediate
	DifficultySenior
	DifficultyExpert
)

var difficultyNames = [...]string{"beginner", "intermediate", "senior", "expert"}

func (d Difficulty) String() string {
	if d < DifficultyBeginner || d > DifficultyExpert {
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// Next returns the next tier up, clamped at expert.
func (d Difficulty) Next() Difficulty {
	if d >= DifficultyExpert {
		return DifficultyExpert
	}
	return d + 1
}

// ParseDifficulty maps a difficulty label to its tier.
func ParseDifficulty(s string) (Difficulty, bool) {
	for i, name := range difficultyNames {
		if s == name {
			return Difficulty(i), true
		}
	}
	return 0, false
}

// DifficultyNames returns the tier labels in ascending order.
func DifficultyNames() []string {
	out := make([]string, len(difficultyNames))
	copy(out, difficultyNames[:])
	return out
}

// AnswerFormat describes how a question is answered.
type AnswerFormat string

const (
	// FormatEssay means the answer is free prose (the default when a raw
	// record carries no answer_format).
	FormatEssay AnswerFormat = "essay"

	// FormatMultipleChoice means the question carries an Options list with
	// exactly one correct option.
	FormatMultipleChoice AnswerFormat = "multiple-choice"
)

// Option is a single multiple-choice option.
type Option struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

// Question is a validated, immutable question record. Once a Question has
// been produced by Validate it never changes; indexes and sessions refer to
// it by ID only.
type Question struct {
	// ID is the stable unique identifier, never reused.
	ID string

	// Category is a single open-ended label, e.g. "Next.js" or "Optimization".
	Category string

	// Text is the question prompt. Opaque to the engine.
	Text string

	// Answer is the reference answer. Opaque to the engine.
	Answer string

	// Difficulty is the ordered tier used for mix and progression logic.
	Difficulty Difficulty

	// Type is an open string facet, e.g. "conceptual", "coding", "debugging".
	Type string

	// Tags is the deduplicated tag set, sorted for stable iteration.
	Tags []string

	// TimeEstimate is the expected answering time in minutes, always > 0.
	TimeEstimate int

	// Format is the answer format; FormatEssay when the raw record had none.
	Format AnswerFormat

	// Options is populated only when Format is FormatMultipleChoice.
	Options []Option

	// CodeExample is optional opaque code text. Not indexed.
	CodeExample string
}

// CorrectOption returns the single correct option of a multiple-choice
// question. The validator guarantees exactly one exists.
func (q Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}

// RawQuestion is the wire shape of a question record as it appears in a
// corpus file, before validation.
type RawQuestion struct {
	ID           string   `json:"id" yaml:"id"`
	Category     string   `json:"category" yaml:"category"`
	Question     string   `json:"question" yaml:"question"`
	Answer       string   `json:"answer" yaml:"answer"`
	Difficulty   string   `json:"difficulty" yaml:"difficulty"`
	Type         string   `json:"type" yaml:"type"`
	Tags         []string `json:"tags" yaml:"tags"`
	TimeEstimate int      `json:"time_estimate" yaml:"time_estimate"`
	AnswerFormat string   `json:"answer_format,omitempty" yaml:"answer_format,omitempty"`
	Options      []Option `json:"options,omitempty" yaml:"options,omitempty"`
	CodeExample  string   `json:"code_example,omitempty" yaml:"code_example,omitempty"`
}
