package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/engine"
	"github.com/abhisek/qbank/internal/question"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	raws := []question.RawQuestion{
		{
			ID: "a", Question: "explain goroutines", Answer: "lightweight threads", Category: "go",
			Difficulty: "beginner", Type: "conceptual",
			TimeEstimate: 3, AnswerFormat: "essay", Tags: []string{"t1"},
		},
		{
			ID: "b", Question: "explain channels", Answer: "typed conduits", Category: "go",
			Difficulty: "senior", Type: "conceptual",
			TimeEstimate: 5, AnswerFormat: "essay", Tags: []string{"t2"},
		},
	}
	corpus, report := question.BuildCorpus(raws)
	require.True(t, report.OK(), "corpus rejected: %v", report.Errors)
	return NewRouter(NewHandler(engine.New(corpus), nil))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp createSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealthz(t *testing.T) {
	w := doJSON(t, testRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSelectFlow(t *testing.T) {
	router := testRouter(t)
	sid := startSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{
		Tags:  []string{"t1"},
		Count: 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp selectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"a"}, resp.IDs)
	assert.Equal(t, "complete", resp.Status)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "explain goroutines", resp.Questions[0].Question)
	assert.Equal(t, "beginner", resp.Questions[0].Difficulty)

	// Same filter again: a is excluded, pool exhausted, partial.
	w = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{
		Tags:  []string{"t1"},
		Count: 1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.IDs)
	assert.Equal(t, "partial", resp.Status)
}

func TestSelectValidation(t *testing.T) {
	router := testRouter(t)
	sid := startSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{Count: 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{
		Count:         1,
		DifficultyMix: map[string]float64{"impossible": 1},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sid+"/select", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectErrorStatuses(t *testing.T) {
	router := testRouter(t)
	sid := startSession(t, router)

	// Unknown session id.
	w := doJSON(t, router, http.MethodPost, "/sessions/nope/select", selectRequest{Count: 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// No question matches the filter.
	w = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{
		Category: "rust",
		Count:    1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Ended sessions refuse selection.
	w = doJSON(t, router, http.MethodDelete, "/sessions/"+sid, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{Count: 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/sessions/"+sid, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetSession(t *testing.T) {
	router := testRouter(t)
	sid := startSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/sessions/"+sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, sid, resp.ID)
	assert.Equal(t, "active", resp.Phase)
	assert.Equal(t, "beginner", resp.Difficulty)

	w = doJSON(t, router, http.MethodGet, "/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSkip(t *testing.T) {
	router := testRouter(t)
	sid := startSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/skip", skipRequest{QuestionID: "a"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/skip", skipRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Skipped ids never come back from selection.
	var resp selectResponse
	w = doJSON(t, router, http.MethodPost, "/sessions/"+sid+"/select", selectRequest{Count: 2})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"b"}, resp.IDs)
}

func TestFacets(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/facets/category", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var values struct {
		Kind   string   `json:"kind"`
		Values []string `json:"values"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &values))
	assert.Equal(t, "category", values.Kind)
	assert.Equal(t, []string{"go"}, values.Values)

	w = doJSON(t, router, http.MethodGet, "/facets/difficulty/counts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counts struct {
		Counts map[string]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	assert.Equal(t, 1, counts.Counts["beginner"])
	assert.Equal(t, 1, counts.Counts["senior"])

	w = doJSON(t, router, http.MethodGet, "/facets/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
