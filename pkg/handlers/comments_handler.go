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

// CreateCommentRequest for POST /api/comments
type CreateCommentRequest struct {
	TargetType      string  `json:"targetType"`
	TargetID        string  `json:"targetId"`
	UserID          string  `json:"userId"`
	ContentMD       string  `json:"contentMd"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}

// DeleteCommentRequest for DELETE /api/comments/{commentId}
type DeleteCommentRequest struct {
	UserID string `json:"userId"`
}

// CommentListResponse for GET /api/comments
type CommentListResponse struct {
	Comments []models.Comment `json:"comments"`
	Total    int              `json:"total"`
}

// CommentsHandler handles comment threads on works, characters, and polls.
type CommentsHandler struct {
	comments repositories.CommentRepository
	logger   *zap.Logger
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(comments repositories.CommentRepository, logger *zap.Logger) *CommentsHandler {
	return &CommentsHandler{comments: comments, logger: logger}
}

// RegisterRoutes registers the comments handler's routes on the given mux.
func (h *CommentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/comments", h.Create)
	mux.HandleFunc("GET /api/comments", h.List)
	mux.HandleFunc("DELETE /api/comments/{commentId}", h.Delete)
}

// Create handles POST /api/comments
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if !models.IsValidCommentTarget(req.TargetType) {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "unknown targetType")
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid targetId")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "userId is required")
		return
	}

	comment := &models.Comment{
		TargetType: req.TargetType,
		TargetID:   targetID,
		UserID:     req.UserID,
		ContentMD:  req.ContentMD,
	}
	if req.ParentCommentID != nil {
		parentID, err := uuid.Parse(*req.ParentCommentID)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid parentCommentId")
			return
		}
		comment.ParentCommentID = &parentID
	}

	if err := h.comments.Create(r.Context(), comment); err != nil {
		h.logger.Error("Failed to create comment",
			zap.String("target_type", req.TargetType),
			zap.String("target_id", targetID.String()),
			zap.Error(err))
		h.writeError(w, statusFor(err), "create_comment_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/comments?targetType=work&targetId=...
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	targetType := r.URL.Query().Get("targetType")
	if !models.IsValidCommentTarget(targetType) {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "unknown targetType")
		return
	}
	targetID, err := uuid.Parse(r.URL.Query().Get("targetId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid targetId")
		return
	}

	comments, err := h.comments.ListByTarget(r.Context(), targetType, targetID)
	if err != nil {
		h.logger.Error("Failed to list comments",
			zap.String("target_type", targetType),
			zap.String("target_id", targetID.String()),
			zap.Error(err))
		h.writeError(w, statusFor(err), "list_comments_failed", err.Error())
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	if err := WriteJSON(w, http.StatusOK, CommentListResponse{Comments: comments, Total: len(comments)}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/comments/{commentId}
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, err := uuid.Parse(r.PathValue("commentId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "invalid commentId")
		return
	}

	var req DeleteCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "userId is required")
		return
	}

	if err := h.comments.SoftDelete(r.Context(), commentID, req.UserID); err != nil {
		h.logger.Error("Failed to delete comment",
			zap.String("comment_id", commentID.String()),
			zap.Error(err))
		h.writeError(w, statusFor(err), "delete_comment_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CommentsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
