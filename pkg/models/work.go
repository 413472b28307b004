package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/apperrors"
)

// Work type values.
const (
	WorkTypeAnime = "anime"
	WorkTypeManga = "manga"
	WorkTypeGame  = "game"
	WorkTypeNovel = "novel"
)

// ValidWorkTypes contains all accepted work type values.
var ValidWorkTypes = []string{WorkTypeAnime, WorkTypeManga, WorkTypeGame, WorkTypeNovel}

// IsValidWorkType checks if the given type is a known work type.
func IsValidWorkType(t string) bool {
	for _, v := range ValidWorkTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Work represents a cataloged piece of media (anime/manga/game/novel) with
// localized names. Stored in the works table.
type Work struct {
	ID         uuid.UUID         `json:"id"`
	NameCN     *string           `json:"name_cn"`
	NameEN     *string           `json:"name_en"`
	NameJP     *string           `json:"name_jp"`
	Aliases    []string          `json:"alias,omitempty"`
	Type       string            `json:"type"`
	SummaryMD  *string           `json:"summary_md,omitempty"`
	SourceURLs map[string]string `json:"source_urls,omitempty"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Validate checks the invariant that a work carries at least one non-null,
// non-empty localized name.
func (w *Work) Validate() error {
	if hasValue(w.NameCN) || hasValue(w.NameEN) || hasValue(w.NameJP) {
		return nil
	}
	return apperrors.ErrNameRequired
}

// DisplayName returns the first populated localized name, preferring Chinese.
func (w *Work) DisplayName() string {
	for _, n := range []*string{w.NameCN, w.NameEN, w.NameJP} {
		if hasValue(n) {
			return *n
		}
	}
	return ""
}

// WorkCandidate is a projection of an existing work returned to callers
// during duplicate search. Read-only within the ingestion pipeline.
type WorkCandidate struct {
	ID      uuid.UUID `json:"id"`
	NameCN  *string   `json:"name_cn"`
	NameEN  *string   `json:"name_en"`
	NameJP  *string   `json:"name_jp"`
	Aliases []string  `json:"alias,omitempty"`
	Type    string    `json:"type"`
}

func hasValue(s *string) bool {
	return s != nil && *s != ""
}
