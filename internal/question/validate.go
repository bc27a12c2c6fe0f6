package question

import (
	"sort"
	"strconv"
	"strings"
)

// IDSet is a read-only view of ids already present in the target corpus,
// consulted for duplicate detection during validation.
type IDSet interface {
	Contains(id string) bool
}

// Validate checks a single raw record against the schema invariants and
// returns the validated immutable Question. It is a pure function over the
// record plus a read-only view of existing ids; it never mutates either.
//
// Failure modes: *MissingFieldError, *InvalidEnumError,
// *MultipleChoiceInvariantError, *DuplicateIDError.
func Validate(raw RawQuestion, existing IDSet) (Question, error) {
	if raw.ID == "" {
		return Question{}, &MissingFieldError{Field: "id"}
	}
	if existing != nil && existing.Contains(raw.ID) {
		return Question{}, &DuplicateIDError{ID: raw.ID}
	}
	if raw.Category == "" {
		return Question{}, &MissingFieldError{ID: raw.ID, Field: "category"}
	}
	if raw.Question == "" {
		return Question{}, &MissingFieldError{ID: raw.ID, Field: "question"}
	}
	if raw.Answer == "" {
		return Question{}, &MissingFieldError{ID: raw.ID, Field: "answer"}
	}
	if raw.Type == "" {
		return Question{}, &MissingFieldError{ID: raw.ID, Field: "type"}
	}

	diff, ok := ParseDifficulty(raw.Difficulty)
	if !ok {
		return Question{}, &InvalidEnumError{
			ID:      raw.ID,
			Field:   "difficulty",
			Value:   raw.Difficulty,
			Allowed: DifficultyNames(),
		}
	}

	if raw.TimeEstimate <= 0 {
		return Question{}, &InvalidEnumError{
			ID:      raw.ID,
			Field:   "time_estimate",
			Value:   strconv.Itoa(raw.TimeEstimate),
			Allowed: []string{"any integer > 0"},
		}
	}

	tags, err := normalizeTags(raw.ID, raw.Tags)
	if err != nil {
		return Question{}, err
	}

	format, err := parseFormat(raw)
	if err != nil {
		return Question{}, err
	}

	var options []Option
	if format == FormatMultipleChoice {
		if err := checkOptions(raw.ID, raw.Options); err != nil {
			return Question{}, err
		}
		options = append([]Option(nil), raw.Options...)
	} else if len(raw.Options) > 0 {
		return Question{}, &MultipleChoiceInvariantError{
			ID:     raw.ID,
			Reason: "options present on a non-multiple-choice question",
		}
	}

	return Question{
		ID:           raw.ID,
		Category:     raw.Category,
		Text:         raw.Question,
		Answer:       raw.Answer,
		Difficulty:   diff,
		Type:         raw.Type,
		Tags:         tags,
		TimeEstimate: raw.TimeEstimate,
		Format:       format,
		Options:      options,
		CodeExample:  raw.CodeExample,
	}, nil
}

func parseFormat(raw RawQuestion) (AnswerFormat, error) {
	switch AnswerFormat(raw.AnswerFormat) {
	case "":
		return FormatEssay, nil
	case FormatEssay:
		return FormatEssay, nil
	case FormatMultipleChoice:
		return FormatMultipleChoice, nil
	default:
		return "", &InvalidEnumError{
			ID:      raw.ID,
			Field:   "answer_format",
			Value:   raw.AnswerFormat,
			Allowed: []string{string(FormatEssay), string(FormatMultipleChoice)},
		}
	}
}

// normalizeTags deduplicates and sorts the tag set. Empty tag strings are a
// validation error rather than being silently dropped.
func normalizeTags(id string, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			return nil, &MissingFieldError{ID: id, Field: "tags"}
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func checkOptions(id string, options []Option) error {
	if len(options) < 2 {
		return &MultipleChoiceInvariantError{ID: id, Reason: "fewer than 2 options"}
	}
	seen := make(map[string]bool, len(options))
	correct := 0
	for _, o := range options {
		if o.ID == "" {
			return &MultipleChoiceInvariantError{ID: id, Reason: "option with empty id"}
		}
		if seen[o.ID] {
			return &MultipleChoiceInvariantError{ID: id, Reason: "duplicate option id " + o.ID}
		}
		seen[o.ID] = true
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return &MultipleChoiceInvariantError{
			ID:     id,
			Reason: "expected exactly 1 correct option, found " + strconv.Itoa(correct),
		}
	}
	return nil
}
