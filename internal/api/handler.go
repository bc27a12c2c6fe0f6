// Package api exposes the engine over HTTP. It is a thin collaborator
// wrapper: all semantics live in the engine; handlers only translate DTOs
// and map error types to status codes.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/qbank/internal/engine"
	"github.com/abhisek/qbank/internal/index"
	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/planner"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/session"
)

// Handler serves the engine endpoints.
type Handler struct {
	engine *engine.Engine
	log    *logger.Logger
}

// NewHandler builds a Handler; a nil logger discards output.
func NewHandler(e *engine.Engine, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{engine: e, log: log}
}

type createSessionResponse struct {
	ID string `json:"id"`
}

type selectRequest struct {
	Category      string             `json:"category,omitempty"`
	Difficulty    string             `json:"difficulty,omitempty"`
	Type          string             `json:"type,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Count         int                `json:"count"`
	TimeBudget    int                `json:"time_budget,omitempty"`
	DifficultyMix map[string]float64 `json:"difficulty_mix,omitempty"`
	FollowCurve   bool               `json:"follow_curve,omitempty"`
	Seed          *int64             `json:"seed,omitempty"`
}

type questionDTO struct {
	ID           string            `json:"id"`
	Category     string            `json:"category"`
	Question     string            `json:"question"`
	Answer       string            `json:"answer"`
	Difficulty   string            `json:"difficulty"`
	Type         string            `json:"type"`
	Tags         []string          `json:"tags,omitempty"`
	TimeEstimate int               `json:"time_estimate"`
	AnswerFormat string            `json:"answer_format"`
	Options      []question.Option `json:"options,omitempty"`
	CodeExample  string            `json:"code_example,omitempty"`
}

type selectResponse struct {
	IDs              []string      `json:"ids"`
	Questions        []questionDTO `json:"questions"`
	Status           string        `json:"status"`
	UnmetConstraints []string      `json:"unmet_constraints,omitempty"`
}

type skipRequest struct {
	QuestionID string `json:"question_id"`
}

type sessionResponse struct {
	ID         string   `json:"id"`
	Phase      string   `json:"phase"`
	Served     []string `json:"served"`
	Excluded   []string `json:"excluded"`
	TimeSpent  int      `json:"time_spent"`
	Difficulty string   `json:"difficulty"`
}

// POST /sessions
func (h *Handler) createSession(c *gin.Context) {
	id := h.engine.StartSession()
	c.JSON(http.StatusCreated, createSessionResponse{ID: id})
}

// GET /sessions/:id
func (h *Handler) getSession(c *gin.Context) {
	snap, err := h.engine.Session(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		ID:         snap.ID,
		Phase:      snap.Phase.String(),
		Served:     snap.Served,
		Excluded:   snap.Excluded,
		TimeSpent:  snap.TimeSpent,
		Difficulty: snap.Difficulty.String(),
	})
}

// DELETE /sessions/:id
func (h *Handler) endSession(c *gin.Context) {
	if err := h.engine.EndSession(c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /sessions/:id/select
func (h *Handler) selectQuestions(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Count < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be >= 1"})
		return
	}

	mix, err := parseMix(req.DifficultyMix)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qreq := engine.QueryRequest{
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		Type:          req.Type,
		Tags:          req.Tags,
		Count:         req.Count,
		TimeBudget:    req.TimeBudget,
		DifficultyMix: mix,
		FollowCurve:   req.FollowCurve,
	}
	if req.Seed != nil {
		qreq.Seed = *req.Seed
		qreq.HasSeed = true
	}

	result, err := h.engine.SelectQuestions(c.Request.Context(), c.Param("id"), qreq)
	if err != nil {
		h.renderError(c, err)
		return
	}

	questions, err := h.engine.Questions(result.IDs)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := selectResponse{
		IDs:              result.IDs,
		Questions:        make([]questionDTO, 0, len(questions)),
		Status:           string(result.Status),
		UnmetConstraints: result.UnmetConstraints,
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, toDTO(q))
	}
	c.JSON(http.StatusOK, resp)
}

// POST /sessions/:id/skip
func (h *Handler) skipQuestion(c *gin.Context) {
	var req skipRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id is required"})
		return
	}
	if err := h.engine.Skip(c.Param("id"), req.QuestionID); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /facets/:kind
func (h *Handler) facetValues(c *gin.Context) {
	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown facet kind " + c.Param("kind")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": string(kind), "values": h.engine.FacetValues(kind)})
}

// GET /facets/:kind/counts
func (h *Handler) facetCounts(c *gin.Context) {
	kind, ok := parseKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown facet kind " + c.Param("kind")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": string(kind), "counts": h.engine.FacetCounts(kind)})
}

// GET /healthz
func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// renderError maps engine error types onto HTTP statuses.
func (h *Handler) renderError(c *gin.Context, err error) {
	var unknown *session.ErrUnknownSession
	var state *session.StateError
	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &state):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrEmptyCandidateSet):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toDTO(q question.Question) questionDTO {
	return questionDTO{
		ID:           q.ID,
		Category:     q.Category,
		Question:     q.Text,
		Answer:       q.Answer,
		Difficulty:   q.Difficulty.String(),
		Type:         q.Type,
		Tags:         q.Tags,
		TimeEstimate: q.TimeEstimate,
		AnswerFormat: string(q.Format),
		Options:      q.Options,
		CodeExample:  q.CodeExample,
	}
}

func parseMix(raw map[string]float64) (map[question.Difficulty]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	mix := make(map[question.Difficulty]float64, len(raw))
	for name, w := range raw {
		tier, ok := question.ParseDifficulty(name)
		if !ok {
			return nil, errors.New("unknown difficulty tier " + name)
		}
		mix[tier] = w
	}
	return mix, nil
}

func parseKind(s string) (index.Kind, bool) {
	for _, k := range index.Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}
