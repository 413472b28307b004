package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/apperrors"
	"github.com/moedb/moedb-engine/pkg/database"
	"github.com/moedb/moedb-engine/pkg/models"
)

// CommentRepository defines access to comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByTarget returns non-deleted comments for a target, oldest first.
	ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]models.Comment, error)
	// SoftDelete marks a user's own comment deleted. ErrNotFound if the
	// comment does not exist or belongs to someone else.
	SoftDelete(ctx context.Context, id uuid.UUID, userID string) error
}

type commentRepository struct {
	db *database.DB
}

// NewCommentRepository creates a PostgreSQL-backed comment repository.
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if !models.IsValidCommentTarget(comment.TargetType) {
		return fmt.Errorf("invalid comment target type %q", comment.TargetType)
	}
	if comment.ContentMD == "" {
		return apperrors.ErrInvalidRequest
	}

	const sql = `
		INSERT INTO comments (target_type, target_id, user_id, content_md, parent_comment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	comment.CreatedAt = time.Now()
	err := r.db.QueryRow(ctx, sql,
		comment.TargetType, comment.TargetID, comment.UserID,
		comment.ContentMD, comment.ParentCommentID, comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (r *commentRepository) ListByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]models.Comment, error) {
	const sql = `
		SELECT id, target_type, target_id, user_id, content_md, parent_comment_id, created_at, is_deleted, flagged
		FROM comments
		WHERE target_type = $1 AND target_id = $2 AND NOT is_deleted
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, sql, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.TargetType, &c.TargetID, &c.UserID, &c.ContentMD,
			&c.ParentCommentID, &c.CreatedAt, &c.IsDeleted, &c.Flagged,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return comments, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uuid.UUID, userID string) error {
	const sql = `UPDATE comments SET is_deleted = TRUE WHERE id = $1 AND user_id = $2 AND NOT is_deleted`

	tag, err := r.db.Exec(ctx, sql, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
