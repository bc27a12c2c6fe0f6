package question

import (
	"errors"
	"testing"
)

func validRaw() RawQuestion {
	return RawQuestion{
		ID:           "q1",
		Category:     "Next.js",
		Question:     "What does getServerSideProps do?",
		Answer:       "Runs on every request to fetch data before rendering.",
		Difficulty:   "intermediate",
		Type:         "conceptual",
		Tags:         []string{"ssr", "data-fetching"},
		TimeEstimate: 4,
	}
}

func TestValidateAccepts(t *testing.T) {
	q, err := Validate(validRaw(), nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if q.ID != "q1" {
		t.Errorf("ID = %q, want q1", q.ID)
	}
	if q.Difficulty != DifficultyIntermediate {
		t.Errorf("Difficulty = %v, want intermediate", q.Difficulty)
	}
	if q.Format != FormatEssay {
		t.Errorf("Format = %q, want essay default", q.Format)
	}
	if len(q.Tags) != 2 || q.Tags[0] != "data-fetching" || q.Tags[1] != "ssr" {
		t.Errorf("Tags = %v, want sorted [data-fetching ssr]", q.Tags)
	}
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawQuestion)
		field  string
	}{
		{"no id", func(r *RawQuestion) { r.ID = "" }, "id"},
		{"no category", func(r *RawQuestion) { r.Category = "" }, "category"},
		{"no question", func(r *RawQuestion) { r.Question = "" }, "question"},
		{"no answer", func(r *RawQuestion) { r.Answer = "" }, "answer"},
		{"no type", func(r *RawQuestion) { r.Type = "" }, "type"},
		{"blank tag", func(r *RawQuestion) { r.Tags = []string{"ok", " "} }, "tags"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := Validate(raw, nil)
			var missing *MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("Validate() error = %v, want MissingFieldError", err)
			}
			if missing.Field != tt.field {
				t.Errorf("Field = %q, want %q", missing.Field, tt.field)
			}
		})
	}
}

func TestValidateEnums(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawQuestion)
		field  string
	}{
		{"bad difficulty", func(r *RawQuestion) { r.Difficulty = "impossible" }, "difficulty"},
		{"zero time", func(r *RawQuestion) { r.TimeEstimate = 0 }, "time_estimate"},
		{"negative time", func(r *RawQuestion) { r.TimeEstimate = -2 }, "time_estimate"},
		{"bad format", func(r *RawQuestion) { r.AnswerFormat = "oral" }, "answer_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := Validate(raw, nil)
			var enum *InvalidEnumError
			if !errors.As(err, &enum) {
				t.Fatalf("Validate() error = %v, want InvalidEnumError", err)
			}
			if enum.Field != tt.field {
				t.Errorf("Field = %q, want %q", enum.Field, tt.field)
			}
		})
	}
}

func TestValidateDuplicateID(t *testing.T) {
	existing := idMap{"q1": true}
	_, err := Validate(validRaw(), existing)
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("Validate() error = %v, want DuplicateIDError", err)
	}
	if dup.ID != "q1" {
		t.Errorf("ID = %q, want q1", dup.ID)
	}
}

func mcRaw(options []Option) RawQuestion {
	raw := validRaw()
	raw.AnswerFormat = string(FormatMultipleChoice)
	raw.Options = options
	return raw
}

func TestValidateMultipleChoice(t *testing.T) {
	good := []Option{
		{ID: "a", Text: "Server-side rendering", IsCorrect: true},
		{ID: "b", Text: "Static generation"},
		{ID: "c", Text: "Client-only fetch"},
	}
	q, err := Validate(mcRaw(good), nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	correct, ok := q.CorrectOption()
	if !ok || correct.ID != "a" {
		t.Errorf("CorrectOption() = %v, %v; want option a", correct, ok)
	}

	tests := []struct {
		name    string
		options []Option
	}{
		{"one option", []Option{{ID: "a", Text: "x", IsCorrect: true}}},
		{"no correct", []Option{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}}},
		{"two correct", []Option{
			{ID: "a", Text: "x", IsCorrect: true},
			{ID: "b", Text: "y", IsCorrect: true},
		}},
		{"duplicate option id", []Option{
			{ID: "a", Text: "x", IsCorrect: true},
			{ID: "a", Text: "y"},
		}},
		{"empty option id", []Option{
			{ID: "", Text: "x", IsCorrect: true},
			{ID: "b", Text: "y"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(mcRaw(tt.options), nil)
			var inv *MultipleChoiceInvariantError
			if !errors.As(err, &inv) {
				t.Fatalf("Validate() error = %v, want MultipleChoiceInvariantError", err)
			}
		})
	}
}

func TestValidateOptionsOnEssay(t *testing.T) {
	raw := validRaw()
	raw.Options = []Option{{ID: "a", Text: "x", IsCorrect: true}, {ID: "b", Text: "y"}}
	_, err := Validate(raw, nil)
	var inv *MultipleChoiceInvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("Validate() error = %v, want MultipleChoiceInvariantError", err)
	}
}

func TestValidateDeduplicatesTags(t *testing.T) {
	raw := validRaw()
	raw.Tags = []string{"ssr", "ssr", "hooks"}
	q, err := Validate(raw, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(q.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 unique tags", q.Tags)
	}
}
