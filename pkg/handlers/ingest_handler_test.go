package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/ingest"
	"github.com/moedb/moedb-engine/pkg/models"
)

// ============================================================================
// Mock Implementations
// ============================================================================

type mockMatcher struct {
	candidates []models.WorkCandidate
	err        error
}

func (m *mockMatcher) FindCandidates(ctx context.Context, query string) ([]models.WorkCandidate, error) {
	return m.candidates, m.err
}

type mockDisambiguator struct {
	verdict *ingest.Verdict
	err     error
}

func (m *mockDisambiguator) Disambiguate(ctx context.Context, query string, candidates []models.WorkCandidate) (*ingest.Verdict, error) {
	return m.verdict, m.err
}

type mockIngester struct {
	result *ingest.IngestResult
	err    error

	gotQuery     string
	gotRequester string
}

func (m *mockIngester) IngestWork(ctx context.Context, query, requester string) (*ingest.IngestResult, error) {
	m.gotQuery = query
	m.gotRequester = requester
	return m.result, m.err
}

func newIngestMux(matcher WorkMatcher, disambiguator WorkDisambiguator, ingester WorkIngester) *http.ServeMux {
	mux := http.NewServeMux()
	NewIngestHandler(matcher, disambiguator, ingester, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Search
// ============================================================================

func TestSearchWorkFound(t *testing.T) {
	candidates := []models.WorkCandidate{{ID: uuid.New(), Type: models.WorkTypeAnime}}
	mux := newIngestMux(&mockMatcher{candidates: candidates}, &mockDisambiguator{}, &mockIngester{})

	rec := postJSON(t, mux, "/api/search-work", SearchWorkRequest{Query: "EVA"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchWorkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Len(t, resp.Candidates, 1)
	assert.Empty(t, resp.Message)
}

func TestSearchWorkNotFound(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{})

	rec := postJSON(t, mux, "/api/search-work", SearchWorkRequest{Query: "unknown"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchWorkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.NotNil(t, resp.Candidates)
	assert.Empty(t, resp.Candidates)
	assert.NotEmpty(t, resp.Message)
}

func TestSearchWorkEmptyQuery(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{})

	rec := postJSON(t, mux, "/api/search-work", SearchWorkRequest{Query: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchWorkInvalidBody(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{})

	req := httptest.NewRequest(http.MethodPost, "/api/search-work", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchWorkMethodNotAllowed(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{})

	req := httptest.NewRequest(http.MethodGet, "/api/search-work", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearchWorkRepositoryError(t *testing.T) {
	mux := newIngestMux(&mockMatcher{err: errors.New("connection refused")}, &mockDisambiguator{}, &mockIngester{})

	rec := postJSON(t, mux, "/api/search-work", SearchWorkRequest{Query: "EVA"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ============================================================================
// Disambiguate
// ============================================================================

func TestDisambiguateWork(t *testing.T) {
	matched := uuid.New()
	verdict := &ingest.Verdict{IsDuplicate: true, MatchedWorkID: &matched, Confidence: 0.9, Reason: "same title"}
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{verdict: verdict}, &mockIngester{})

	rec := postJSON(t, mux, "/api/disambiguate-work", DisambiguateWorkRequest{
		Query:      "EVA",
		Candidates: []models.WorkCandidate{{ID: matched}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ingest.Verdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsDuplicate)
	require.NotNil(t, resp.MatchedWorkID)
	assert.Equal(t, matched, *resp.MatchedWorkID)
}

func TestDisambiguateWorkOracleFailure(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{err: errors.New("oracle unreachable")}, &mockIngester{})

	rec := postJSON(t, mux, "/api/disambiguate-work", DisambiguateWorkRequest{Query: "EVA"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ============================================================================
// Ingest
// ============================================================================

func TestIngestWorkSuccess(t *testing.T) {
	work := &models.Work{ID: uuid.New(), Type: models.WorkTypeAnime, CreatedBy: "user-1"}
	ingester := &mockIngester{
		result: &ingest.IngestResult{
			Work:              work,
			CharactersCreated: 5,
			SourcesUsed:       []string{"moegirl", "wikipedia"},
		},
	}
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, ingester)

	rec := postJSON(t, mux, "/api/scrape-work-info", IngestWorkRequest{WorkName: "葬送的芙莉莲", UserID: "user-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp IngestWorkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Duplicate)
	assert.Equal(t, 5, resp.CharactersCount)
	assert.Equal(t, []string{"moegirl", "wikipedia"}, resp.Sources)
	assert.Equal(t, "葬送的芙莉莲", ingester.gotQuery)
	assert.Equal(t, "user-1", ingester.gotRequester)
}

func TestIngestWorkDuplicate(t *testing.T) {
	matched := uuid.New()
	ingester := &mockIngester{
		result: &ingest.IngestResult{Duplicate: true, MatchedWorkID: &matched},
	}
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, ingester)

	rec := postJSON(t, mux, "/api/scrape-work-info", IngestWorkRequest{WorkName: "EVA", UserID: "user-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp IngestWorkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Duplicate)
	require.NotNil(t, resp.MatchedWorkID)
	assert.Equal(t, matched.String(), *resp.MatchedWorkID)
	assert.Nil(t, resp.Work)
}

func TestIngestWorkMissingFields(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{})

	rec := postJSON(t, mux, "/api/scrape-work-info", IngestWorkRequest{WorkName: "", UserID: "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, mux, "/api/scrape-work-info", IngestWorkRequest{WorkName: "EVA", UserID: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestWorkClaimHeld(t *testing.T) {
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{err: apperrors.ErrClaimHeld})

	rec := postJSON(t, mux, "/api/scrape-work-info", IngestWorkRequest{WorkName: "EVA", UserID: "user-1"})

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ingest_in_progress", resp["error"])
}

func TestIngestWorkStageFailureNamesStage(t *testing.T) {
	stageErr := &ingest.StageError{Stage: ingest.StageHarvesting, Err: errors.New("all sources failed")}
	mux := newIngestMux(&mockMatcher{}, &mockDisambiguator{}, &mockIngester{err: stageErr})

	rec := postJSON(t, mux, "/api/scrape-work-info", IngestWorkRequest{WorkName: "EVA", UserID: "user-1"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "harvesting_failed", resp["error"])
}
