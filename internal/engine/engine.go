// Package engine is the façade external collaborators call. It composes
// the facet index, the selection planner, and the session tracker behind a
// single SelectQuestions entry point.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/abhisek/qbank/internal/index"
	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/planner"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/session"
)

// QueryRequest composes facet filters with the planner's selection fields.
// Empty filter fields are unconstrained.
type QueryRequest struct {
	Category   string
	Difficulty string
	Type       string
	Tags       []string // OR within tags, AND against the other filters

	Count         int
	TimeBudget    int // minutes, 0 = unlimited
	DifficultyMix map[question.Difficulty]float64

	// FollowCurve asks the engine to target the session's current
	// difficulty cursor. Ignored when DifficultyMix is set explicitly.
	FollowCurve bool

	Seed    int64
	HasSeed bool
}

// SelectionResult is the outcome of one selection call.
type SelectionResult struct {
	IDs    []string
	Status planner.Status

	// UnmetConstraints names the facet filters that matched zero questions,
	// so callers can diagnose empty or partial results without re-deriving
	// them.
	UnmetConstraints []string
}

// Engine owns the published index snapshot and the session tracker. The
// index is read-mostly: every reader loads the current snapshot from an
// atomic pointer, and writers (AddQuestion/RemoveQuestion) serialize on a
// mutex, build the next copy-on-write index, and publish it atomically.
type Engine struct {
	idx     atomic.Pointer[index.Index]
	writeMu sync.Mutex

	tracker *session.Tracker
	log     *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger; the default discards output.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDifficultyPolicy sets the session difficulty progression policy.
func WithDifficultyPolicy(p session.DifficultyPolicy) Option {
	return func(e *Engine) { e.tracker = session.NewTracker(p) }
}

// New builds an engine over a validated corpus.
func New(corpus *question.Corpus, opts ...Option) *Engine {
	e := &Engine{
		tracker: session.NewTracker(nil),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.idx.Store(index.Build(corpus))
	return e
}

// StartSession opens a new session and returns its id.
func (e *Engine) StartSession() string {
	id := e.tracker.Start()
	e.log.Debug("session started", "session_id", id)
	return id
}

// EndSession closes a session.
func (e *Engine) EndSession(sessionID string) error {
	return e.tracker.End(sessionID)
}

// Session returns a read-only snapshot of a session's state.
func (e *Engine) Session(sessionID string) (session.Snapshot, error) {
	return e.tracker.Get(sessionID)
}

// Skip excludes a question from a session without serving it.
func (e *Engine) Skip(sessionID, questionID string) error {
	return e.tracker.RecordSkipped(sessionID, questionID)
}

// SelectQuestions runs one selection against the current index snapshot:
// facet intersection, planning against the session's exclusion set, then
// committing the served ids to the session. Session state mutates only
// after the result list is final, so a failed plan leaves the session
// untouched. If ctx is already done the call aborts before planning.
func (e *Engine) SelectQuestions(ctx context.Context, sessionID string, req QueryRequest) (SelectionResult, error) {
	if err := ctx.Err(); err != nil {
		return SelectionResult{}, err
	}

	excluded, err := e.tracker.Excluded(sessionID)
	if err != nil {
		return SelectionResult{}, err
	}

	ix := e.idx.Load()
	constraints := buildConstraints(req)
	candidates := ix.Intersect(constraints)
	unmet := unmetConstraints(ix, constraints)

	mix := req.DifficultyMix
	if len(mix) == 0 && req.FollowCurve {
		cursor, err := e.tracker.NextDifficulty(sessionID)
		if err != nil {
			return SelectionResult{}, err
		}
		mix = map[question.Difficulty]float64{cursor: 1}
	}

	ids, status, err := planner.Plan(candidates, planner.Request{
		Count:         req.Count,
		TimeBudget:    req.TimeBudget,
		Excluded:      excluded,
		DifficultyMix: mix,
		Seed:          req.Seed,
		HasSeed:       req.HasSeed,
	}, ix)
	if err != nil {
		return SelectionResult{UnmetConstraints: unmet}, err
	}

	minutes := 0
	for _, id := range ids {
		if q, ok := ix.Question(id); ok {
			minutes += q.TimeEstimate
		}
	}
	if err := e.tracker.RecordServed(sessionID, ids, minutes); err != nil {
		return SelectionResult{}, err
	}

	e.log.Debug("selection served",
		"session_id", sessionID,
		"count", len(ids),
		"status", string(status),
	)
	return SelectionResult{IDs: ids, Status: status, UnmetConstraints: unmet}, nil
}

// Questions materializes full records for served ids, in order.
func (e *Engine) Questions(ids []string) ([]question.Question, error) {
	ix := e.idx.Load()
	out := make([]question.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := ix.Question(id)
		if !ok {
			return nil, fmt.Errorf("unknown question id %q", id)
		}
		out = append(out, q)
	}
	return out, nil
}

// FacetValues lists the distinct values of a facet kind, for filter UIs.
func (e *Engine) FacetValues(kind index.Kind) []string {
	return e.idx.Load().Values(kind)
}

// FacetCounts maps each value of a facet kind to its question count.
func (e *Engine) FacetCounts(kind index.Kind) map[string]int {
	return e.idx.Load().Counts(kind)
}

// AddQuestion validates a raw record against the live index and publishes
// a new index snapshot containing it.
func (e *Engine) AddQuestion(raw question.RawQuestion) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	cur := e.idx.Load()
	q, err := question.Validate(raw, cur.IDs())
	if err != nil {
		return err
	}
	next, err := cur.Add(q)
	if err != nil {
		return err
	}
	e.idx.Store(next)
	e.log.Info("question added", "id", q.ID, "category", q.Category)
	return nil
}

// RemoveQuestion publishes a new index snapshot without the given id.
func (e *Engine) RemoveQuestion(id string) {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	e.idx.Store(e.idx.Load().Remove(id))
	e.log.Info("question removed", "id", id)
}

// buildConstraints translates the request's non-empty filters.
func buildConstraints(req QueryRequest) []index.Constraint {
	var out []index.Constraint
	if req.Category != "" {
		out = append(out, index.Constraint{Kind: index.KindCategory, Values: []string{req.Category}})
	}
	if req.Difficulty != "" {
		out = append(out, index.Constraint{Kind: index.KindDifficulty, Values: []string{req.Difficulty}})
	}
	if req.Type != "" {
		out = append(out, index.Constraint{Kind: index.KindType, Values: []string{req.Type}})
	}
	if len(req.Tags) > 0 {
		out = append(out, index.Constraint{Kind: index.KindTag, Values: req.Tags})
	}
	return out
}

// unmetConstraints names the filters whose member set is empty.
func unmetConstraints(ix *index.Index, constraints []index.Constraint) []string {
	var out []string
	for _, c := range constraints {
		matched := 0
		for _, v := range c.Values {
			matched += len(ix.Lookup(c.Kind, v))
		}
		if matched == 0 {
			out = append(out, fmt.Sprintf("%s=%s", c.Kind, strings.Join(c.Values, "|")))
		}
	}
	return out
}
