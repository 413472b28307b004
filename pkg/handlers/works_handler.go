package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/models"
	"github.com/moedb/moedb-engine/pkg/repositories"
)

const (
	defaultWorkPageSize = 20
	maxWorkPageSize     = 100
)

// WorkListResponse for GET /api/works
type WorkListResponse struct {
	Works []models.Work `json:"works"`
	Total int           `json:"total"`
}

// CharacterListResponse for GET /api/works/{workId}/characters
type CharacterListResponse struct {
	Characters []models.Character `json:"characters"`
	Total      int                `json:"total"`
}

// WorksHandler serves read access to the catalog.
type WorksHandler struct {
	works      repositories.WorkRepository
	characters repositories.CharacterRepository
	logger     *zap.Logger
}

// NewWorksHandler creates a new works handler.
func NewWorksHandler(
	works repositories.WorkRepository,
	characters repositories.CharacterRepository,
	logger *zap.Logger,
) *WorksHandler {
	return &WorksHandler{works: works, characters: characters, logger: logger}
}

// RegisterRoutes registers the works handler's routes on the given mux.
func (h *WorksHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/works", h.List)
	mux.HandleFunc("GET /api/works/{workId}", h.Get)
	mux.HandleFunc("GET /api/works/{workId}/characters", h.Characters)
}

// List handles GET /api/works
func (h *WorksHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultWorkPageSize)
	if limit < 1 || limit > maxWorkPageSize {
		limit = defaultWorkPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	works, err := h.works.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list works", zap.Error(err))
		h.writeError(w, statusFor(err), "list_works_failed", err.Error())
		return
	}
	if works == nil {
		works = []models.Work{}
	}

	if err := WriteJSON(w, http.StatusOK, WorkListResponse{Works: works, Total: len(works)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/works/{workId}
func (h *WorksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "workId")
	if !ok {
		return
	}

	work, err := h.works.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get work", zap.String("work_id", id.String()), zap.Error(err))
		h.writeError(w, statusFor(err), "get_work_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, work); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Characters handles GET /api/works/{workId}/characters
func (h *WorksHandler) Characters(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "workId")
	if !ok {
		return
	}

	characters, err := h.characters.ListByWork(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list characters", zap.String("work_id", id.String()), zap.Error(err))
		h.writeError(w, statusFor(err), "list_characters_failed", err.Error())
		return
	}
	if characters == nil {
		characters = []models.Character{}
	}

	if err := WriteJSON(w, http.StatusOK, CharacterListResponse{Characters: characters, Total: len(characters)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *WorksHandler) parseID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func (h *WorksHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
