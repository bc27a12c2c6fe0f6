package question

import "fmt"

// Corpus is the validated, immutable set of questions the engine operates
// on. It is shared read-only by the index, the planner, and the façade.
type Corpus struct {
	questions []Question
	byID      map[string]int
}

// NewCorpus builds a Corpus from already-validated questions. It returns a
// *DuplicateIDError if two questions share an id; callers normally reach a
// Corpus through BuildCorpus or LoadCorpus instead, which validate raw
// records first.
func NewCorpus(questions []Question) (*Corpus, error) {
	c := &Corpus{
		questions: append([]Question(nil), questions...),
		byID:      make(map[string]int, len(questions)),
	}
	for i, q := range c.questions {
		if _, dup := c.byID[q.ID]; dup {
			return nil, &DuplicateIDError{ID: q.ID}
		}
		c.byID[q.ID] = i
	}
	return c, nil
}

// Len returns the number of questions.
func (c *Corpus) Len() int { return len(c.questions) }

// Get returns the question with the given id.
func (c *Corpus) Get(id string) (Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Contains reports whether id is present. Corpus satisfies IDSet so it can
// back duplicate detection for incremental validation.
func (c *Corpus) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns the questions in ingestion order. The returned slice is a
// copy; the corpus itself never changes.
func (c *Corpus) All() []Question {
	return append([]Question(nil), c.questions...)
}

// TotalMinutes sums the time estimates of the given ids. Unknown ids are an
// error: the caller handed us an id the corpus never produced.
func (c *Corpus) TotalMinutes(ids []string) (int, error) {
	total := 0
	for _, id := range ids {
		q, ok := c.Get(id)
		if !ok {
			return 0, fmt.Errorf("unknown question id %q", id)
		}
		total += q.TimeEstimate
	}
	return total, nil
}

// RecordError ties a validation failure to its position in the input batch.
type RecordError struct {
	Index int    // position in the raw input sequence
	ID    string // raw record id, may be empty
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// LoadReport is the batch outcome of validating a raw record sequence.
// A bad record rejects only itself; loading always continues.
type LoadReport struct {
	Accepted int
	Errors   []RecordError
	Warnings []string
}

// OK reports whether every record validated cleanly. Warnings do not fail
// a load.
func (r *LoadReport) OK() bool { return len(r.Errors) == 0 }

// BuildCorpus validates raw records one by one, collecting per-record
// failures into the report rather than aborting the batch. Near-duplicate
// question text across different ids is reported as a warning, never
// deduplicated: the source data contains repeats whose intent is unclear.
func BuildCorpus(raws []RawQuestion) (*Corpus, *LoadReport) {
	report := &LoadReport{}
	accepted := make([]Question, 0, len(raws))
	ids := make(idMap, len(raws))

	for i, raw := range raws {
		q, err := Validate(raw, ids)
		if err != nil {
			report.Errors = append(report.Errors, RecordError{Index: i, ID: raw.ID, Err: err})
			continue
		}
		ids[q.ID] = true
		accepted = append(accepted, q)
	}

	report.Accepted = len(accepted)
	report.Warnings = nearDuplicateWarnings(accepted)

	corpus, err := NewCorpus(accepted)
	if err != nil {
		// Unreachable: Validate already rejected duplicate ids.
		report.Errors = append(report.Errors, RecordError{Err: err})
		corpus, _ = NewCorpus(nil)
	}
	return corpus, report
}

type idMap map[string]bool

func (m idMap) Contains(id string) bool { return m[id] }
