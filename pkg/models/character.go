package models

import (
	"time"

	"github.com/google/uuid"
)

// Character represents a named entity belonging to exactly one work.
// Stored in the characters table.
type Character struct {
	ID         uuid.UUID `json:"id"`
	WorkID     uuid.UUID `json:"work_id"`
	NameCN     *string   `json:"name_cn"`
	NameEN     *string   `json:"name_en"`
	NameJP     *string   `json:"name_jp"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	SourceLink *string   `json:"source_link,omitempty"`
	SummaryMD  *string   `json:"summary_md,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DisplayName returns the first populated localized name, preferring Chinese.
func (c *Character) DisplayName() string {
	for _, n := range []*string{c.NameCN, c.NameEN, c.NameJP} {
		if hasValue(n) {
			return *n
		}
	}
	return ""
}
