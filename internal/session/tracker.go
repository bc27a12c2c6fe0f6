// Package session tracks per-session selection state: which questions have
// been served or skipped, how much of the time budget is spent, and where
// the difficulty progression stands.
package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/qbank/internal/index"
	"github.com/abhisek/qbank/internal/question"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// StateError reports a tracker call made in a phase that does not accept
// it, e.g. recording against an ended session.
type StateError struct {
	SessionID string
	Op        string
	Phase     Phase
}

func (e *StateError) Error() string {
	return fmt.Sprintf("session %s: cannot %s in phase %s", e.SessionID, e.Op, e.Phase)
}

// ErrUnknownSession wraps lookups of ids the tracker has never issued.
type ErrUnknownSession struct {
	SessionID string
}

func (e *ErrUnknownSession) Error() string {
	return fmt.Sprintf("unknown session %s", e.SessionID)
}

// State is the per-session record. It is owned by the Tracker; all access
// goes through tracker methods, which serialize on the per-session mutex so
// concurrent requests against one session (two tabs) cannot lose updates.
type State struct {
	mu sync.Mutex

	id           string
	phase        Phase
	served       []string // chronological
	excluded     index.IDSet
	timeSpent    int // minutes
	cursor       question.Difficulty
	servedAtTier int
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID         string
	Phase      Phase
	Served     []string
	Excluded   []string
	TimeSpent  int
	Difficulty question.Difficulty
}

// Tracker owns every live session.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*State
	policy   DifficultyPolicy
}

// NewTracker creates a tracker with the given progression policy; nil gets
// the default step policy.
func NewTracker(policy DifficultyPolicy) *Tracker {
	if policy == nil {
		policy = DefaultStepPolicy()
	}
	return &Tracker{
		sessions: make(map[string]*State),
		policy:   policy,
	}
}

// Start creates an Active session and returns its id.
func (t *Tracker) Start() string {
	s := &State{
		id:       uuid.NewString(),
		phase:    PhaseActive,
		excluded: make(index.IDSet),
		cursor:   question.DifficultyBeginner,
	}
	t.mu.Lock()
	t.sessions[s.id] = s
	t.mu.Unlock()
	return s.id
}

// End moves a session to Ended. Ending an already ended session is a
// StateError; ending an unknown one is ErrUnknownSession.
func (t *Tracker) End(sessionID string) error {
	s, err := t.get(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return &StateError{SessionID: sessionID, Op: "end", Phase: s.phase}
	}
	s.phase = PhaseEnded
	return nil
}

// Discard removes an ended session from the tracker. State is not
// persisted here; durable history is the store's concern.
func (t *Tracker) Discard(sessionID string) {
	t.mu.Lock()
	delete(t.sessions, sessionID)
	t.mu.Unlock()
}

// RecordServed appends ids to the served sequence, extends the exclusion
// set, and charges minutes against the session's spent time. Only Active
// sessions accept it.
func (t *Tracker) RecordServed(sessionID string, ids []string, minutes int) error {
	s, err := t.get(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return &StateError{SessionID: sessionID, Op: "record served", Phase: s.phase}
	}
	for _, id := range ids {
		s.served = append(s.served, id)
		s.excluded[id] = struct{}{}
		s.servedAtTier++
		if next, stepped := t.policy.Next(s.cursor, s.servedAtTier); stepped {
			s.cursor = next
			s.servedAtTier = 0
		}
	}
	s.timeSpent += minutes
	return nil
}

// RecordSkipped excludes an id without serving it or charging time.
func (t *Tracker) RecordSkipped(sessionID, id string) error {
	s, err := t.get(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseActive {
		return &StateError{SessionID: sessionID, Op: "record skipped", Phase: s.phase}
	}
	s.excluded[id] = struct{}{}
	return nil
}

// NextDifficulty returns the session's current target tier. The engine
// feeds this into the difficulty mix of the next selection.
func (t *Tracker) NextDifficulty(sessionID string) (question.Difficulty, error) {
	s, err := t.get(sessionID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, nil
}

// Excluded returns a copy of the session's exclusion set (served plus
// explicitly skipped).
func (t *Tracker) Excluded(sessionID string) (index.IDSet, error) {
	s, err := t.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(index.IDSet, len(s.excluded))
	for id := range s.excluded {
		out[id] = struct{}{}
	}
	return out, nil
}

// Get returns a read-only snapshot of a session.
func (t *Tracker) Get(sessionID string) (Snapshot, error) {
	s, err := t.get(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	excluded := make([]string, 0, len(s.excluded))
	for id := range s.excluded {
		excluded = append(excluded, id)
	}
	sort.Strings(excluded)
	return Snapshot{
		ID:         s.id,
		Phase:      s.phase,
		Served:     append([]string(nil), s.served...),
		Excluded:   excluded,
		TimeSpent:  s.timeSpent,
		Difficulty: s.cursor,
	}, nil
}

func (t *Tracker) get(sessionID string) (*State, error) {
	t.mu.RLock()
	s, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if !ok {
		return nil, &ErrUnknownSession{SessionID: sessionID}
	}
	return s, nil
}
