package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/ingest"
	"github.com/moedb/moedb-engine/pkg/models"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// SearchWorkRequest for POST /api/search-work
type SearchWorkRequest struct {
	Query string `json:"query"`
}

// SearchWorkResponse for POST /api/search-work
type SearchWorkResponse struct {
	Found      bool                   `json:"found"`
	Candidates []models.WorkCandidate `json:"candidates"`
	Message    string                 `json:"message,omitempty"`
}

// DisambiguateWorkRequest for POST /api/disambiguate-work
type DisambiguateWorkRequest struct {
	Query      string                 `json:"query"`
	Candidates []models.WorkCandidate `json:"candidates"`
}

// IngestWorkRequest for POST /api/scrape-work-info
type IngestWorkRequest struct {
	WorkName string `json:"workName"`
	UserID   string `json:"userId"`
}

// IngestWorkResponse for POST /api/scrape-work-info
type IngestWorkResponse struct {
	Success         bool         `json:"success"`
	Duplicate       bool         `json:"duplicate"`
	MatchedWorkID   *string      `json:"matchedWorkId,omitempty"`
	Work            *models.Work `json:"work,omitempty"`
	CharactersCount int          `json:"charactersCount"`
	Sources         []string     `json:"sources"`
}

// ============================================================================
// Handler
// ============================================================================

// WorkMatcher finds existing-work candidates for a free-text query.
type WorkMatcher interface {
	FindCandidates(ctx context.Context, query string) ([]models.WorkCandidate, error)
}

// WorkDisambiguator judges whether a query duplicates one of the candidates.
type WorkDisambiguator interface {
	Disambiguate(ctx context.Context, query string, candidates []models.WorkCandidate) (*ingest.Verdict, error)
}

// WorkIngester runs a submission through the full ingestion pipeline.
type WorkIngester interface {
	IngestWork(ctx context.Context, query, requester string) (*ingest.IngestResult, error)
}

// IngestHandler exposes the ingestion pipeline over HTTP. The three
// endpoints mirror the pipeline's stages so clients can run duplicate search
// and disambiguation interactively before committing to a full ingest.
type IngestHandler struct {
	matcher       WorkMatcher
	disambiguator WorkDisambiguator
	ingester      WorkIngester
	logger        *zap.Logger
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(
	matcher WorkMatcher,
	disambiguator WorkDisambiguator,
	ingester WorkIngester,
	logger *zap.Logger,
) *IngestHandler {
	return &IngestHandler{
		matcher:       matcher,
		disambiguator: disambiguator,
		ingester:      ingester,
		logger:        logger,
	}
}

// RegisterRoutes registers the ingest handler's routes on the given mux.
func (h *IngestHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search-work", h.Search)
	mux.HandleFunc("POST /api/disambiguate-work", h.Disambiguate)
	mux.HandleFunc("POST /api/scrape-work-info", h.Ingest)
}

// Search handles POST /api/search-work
func (h *IngestHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	candidates, err := h.matcher.FindCandidates(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("Candidate search failed", zap.String("query", req.Query), zap.Error(err))
		h.writeError(w, statusFor(err), "search_failed", err.Error())
		return
	}

	response := SearchWorkResponse{
		Found:      len(candidates) > 0,
		Candidates: candidates,
	}
	if len(candidates) == 0 {
		response.Candidates = []models.WorkCandidate{}
		response.Message = "no similar works found"
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Disambiguate handles POST /api/disambiguate-work
func (h *IngestHandler) Disambiguate(w http.ResponseWriter, r *http.Request) {
	var req DisambiguateWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}

	verdict, err := h.disambiguator.Disambiguate(r.Context(), req.Query, req.Candidates)
	if err != nil {
		h.logger.Error("Disambiguation failed", zap.String("query", req.Query), zap.Error(err))
		h.writeError(w, statusFor(err), "disambiguation_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, verdict); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Ingest handles POST /api/scrape-work-info
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.WorkName) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "workName is required")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "userId is required")
		return
	}

	result, err := h.ingester.IngestWork(r.Context(), req.WorkName, req.UserID)
	if err != nil {
		h.logger.Error("Ingestion failed",
			zap.String("work_name", req.WorkName),
			zap.String("user_id", req.UserID),
			zap.Error(err))
		h.writeError(w, statusFor(err), ingestErrorCode(err), err.Error())
		return
	}

	response := IngestWorkResponse{
		Success:         true,
		Duplicate:       result.Duplicate,
		Work:            result.Work,
		CharactersCount: result.CharactersCreated,
		Sources:         result.SourcesUsed,
	}
	if response.Sources == nil {
		response.Sources = []string{}
	}
	if result.MatchedWorkID != nil {
		id := result.MatchedWorkID.String()
		response.MatchedWorkID = &id
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ingestErrorCode names the pipeline stage that failed so clients can tell a
// harvest outage from an oracle failure.
func ingestErrorCode(err error) string {
	if errors.Is(err, apperrors.ErrClaimHeld) {
		return "ingest_in_progress"
	}
	if stage, ok := ingest.FailedStage(err); ok {
		return string(stage) + "_failed"
	}
	return "ingest_failed"
}

func (h *IngestHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
