package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/apperrors"
)

var (
	errEmptyVote        = fmt.Errorf("%w: vote must populate at least one axis", apperrors.ErrInvalidRequest)
	errUnknownAxisValue = fmt.Errorf("%w: unknown personality type value", apperrors.ErrInvalidRequest)
)

// MBTITypes lists the sixteen MBTI type codes accepted on a vote.
var MBTITypes = []string{
	"INTJ", "INTP", "ENTJ", "ENTP",
	"INFJ", "INFP", "ENFJ", "ENFP",
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	"ISTP", "ISFP", "ESTP", "ESFP",
}

// EnneagramTypes lists accepted enneagram wing notations.
var EnneagramTypes = []string{
	"1w9", "1w2", "2w1", "2w3", "3w2", "3w4",
	"4w3", "4w5", "5w4", "5w6", "6w5", "6w7",
	"7w6", "7w8", "8w7", "8w9", "9w8", "9w1",
}

// InstinctSubtypes lists accepted instinctual subtype stackings.
var InstinctSubtypes = []string{"sp/sx", "sp/so", "sx/sp", "sx/so", "so/sp", "so/sx"}

// PersonalityVote is one user's typing of one character. A user holds at most
// one vote per character; re-voting replaces the previous row.
type PersonalityVote struct {
	ID          uuid.UUID `json:"id"`
	CharacterID uuid.UUID `json:"character_id"`
	UserID      string    `json:"user_id"`
	MBTI        *string   `json:"mbti"`
	Enneagram   *string   `json:"enneagram"`
	Subtype     *string   `json:"subtype"`
	YiHexagram  *string   `json:"yi_hexagram"`
	CreatedAt   time.Time `json:"created_at"`
}

// VoteTally is a per-axis count of votes for one character.
type VoteTally struct {
	Axis  string `json:"axis"` // "mbti", "enneagram", "subtype", "yi_hexagram"
	Value string `json:"value"`
	Count int    `json:"count"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate rejects votes whose populated axes carry unknown values. A vote
// with every axis null is also rejected (it would tally nothing).
func (v *PersonalityVote) Validate() error {
	if v.MBTI == nil && v.Enneagram == nil && v.Subtype == nil && v.YiHexagram == nil {
		return errEmptyVote
	}
	if v.MBTI != nil && !contains(MBTITypes, *v.MBTI) {
		return errUnknownAxisValue
	}
	if v.Enneagram != nil && !contains(EnneagramTypes, *v.Enneagram) {
		return errUnknownAxisValue
	}
	if v.Subtype != nil && !contains(InstinctSubtypes, *v.Subtype) {
		return errUnknownAxisValue
	}
	return nil
}
