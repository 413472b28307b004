package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moedb/moedb-engine/pkg/models"
	"github.com/moedb/moedb-engine/pkg/repositories"
)

// CastVoteRequest for POST /api/characters/{characterId}/votes
type CastVoteRequest struct {
	UserID     string  `json:"userId"`
	MBTI       *string `json:"mbti"`
	Enneagram  *string `json:"enneagram"`
	Subtype    *string `json:"subtype"`
	YiHexagram *string `json:"yiHexagram"`
}

// VoteTallyResponse for GET /api/characters/{characterId}/votes
type VoteTallyResponse struct {
	CharacterID string             `json:"characterId"`
	Tallies     []models.VoteTally `json:"tallies"`
}

// VotesHandler handles personality vote casting and tallies.
type VotesHandler struct {
	votes  repositories.VoteRepository
	logger *zap.Logger
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(votes repositories.VoteRepository, logger *zap.Logger) *VotesHandler {
	return &VotesHandler{votes: votes, logger: logger}
}

// RegisterRoutes registers the votes handler's routes on the given mux.
func (h *VotesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/characters/{characterId}/votes", h.Cast)
	mux.HandleFunc("GET /api/characters/{characterId}/votes", h.Tally)
}

// Cast handles POST /api/characters/{characterId}/votes
func (h *VotesHandler) Cast(w http.ResponseWriter, r *http.Request) {
	characterID, err := uuid.Parse(r.PathValue("characterId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "invalid characterId")
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "userId is required")
		return
	}

	vote := &models.PersonalityVote{
		CharacterID: characterID,
		UserID:      req.UserID,
		MBTI:        req.MBTI,
		Enneagram:   req.Enneagram,
		Subtype:     req.Subtype,
		YiHexagram:  req.YiHexagram,
	}

	if err := h.votes.Upsert(r.Context(), vote); err != nil {
		h.logger.Error("Failed to record vote",
			zap.String("character_id", characterID.String()),
			zap.Error(err))
		h.writeError(w, statusFor(err), "vote_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, vote); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Tally handles GET /api/characters/{characterId}/votes
func (h *VotesHandler) Tally(w http.ResponseWriter, r *http.Request) {
	characterID, err := uuid.Parse(r.PathValue("characterId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "invalid characterId")
		return
	}

	tallies, err := h.votes.TallyByCharacter(r.Context(), characterID)
	if err != nil {
		h.logger.Error("Failed to tally votes",
			zap.String("character_id", characterID.String()),
			zap.Error(err))
		h.writeError(w, statusFor(err), "tally_failed", err.Error())
		return
	}
	if tallies == nil {
		tallies = []models.VoteTally{}
	}

	response := VoteTallyResponse{
		CharacterID: characterID.String(),
		Tallies:     tallies,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *VotesHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
