package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment target type values.
const (
	CommentTargetWork      = "work"
	CommentTargetCharacter = "character"
	CommentTargetPoll      = "poll"
)

// Comment is a user-authored markdown comment attached to a work, character,
// or poll. Deletion is soft; flagged comments stay visible to moderators.
type Comment struct {
	ID              uuid.UUID  `json:"id"`
	TargetType      string     `json:"target_type"`
	TargetID        uuid.UUID  `json:"target_id"`
	UserID          string     `json:"user_id"`
	ContentMD       string     `json:"content_md"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	IsDeleted       bool       `json:"is_deleted"`
	Flagged         bool       `json:"flagged"`
}

// IsValidCommentTarget checks the target type discriminator.
func IsValidCommentTarget(t string) bool {
	return t == CommentTargetWork || t == CommentTargetCharacter || t == CommentTargetPoll
}
