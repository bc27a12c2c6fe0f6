package question

import (
	"fmt"
	"strings"
)

// MissingFieldError indicates a required field was absent or empty.
type MissingFieldError struct {
	ID    string // record id, may be empty when id itself is missing
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("question %q: missing required field %q", e.ID, e.Field)
}

// InvalidEnumError indicates a field holds a value outside its allowed set,
// or a numeric field is out of range.
type InvalidEnumError struct {
	ID      string
	Field   string
	Value   string
	Allowed []string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("question %q: field %q has invalid value %q (allowed: %s)",
		e.ID, e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// MultipleChoiceInvariantError indicates a multiple-choice record violates
// the options invariant: at least two options, exactly one correct, option
// ids unique within the question.
type MultipleChoiceInvariantError struct {
	ID     string
	Reason string
}

func (e *MultipleChoiceInvariantError) Error() string {
	return fmt.Sprintf("question %q: multiple-choice invariant violated: %s", e.ID, e.Reason)
}

// DuplicateIDError indicates a record reuses an id already present in the
// target corpus.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("question %q: id already exists in corpus", e.ID)
}
