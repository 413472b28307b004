package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// IngestClaim is a short-lived advisory claim on a normalized work name.
// A submission acquires the claim before harvesting and releases it when it
// reaches a terminal state, so two concurrent submissions of the same name
// cannot both create a work. Claims expire so a crashed ingestion cannot
// wedge a name forever.
type IngestClaim struct {
	ID             uuid.UUID `json:"id"`
	NormalizedName string    `json:"normalized_name"`
	ClaimedBy      string    `json:"claimed_by"`
	ClaimedAt      time.Time `json:"claimed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// NormalizeWorkName folds a free-text work name into the claim key: lowercase,
// letters and digits only, runs of everything else collapsed to one space.
func NormalizeWorkName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevSpace := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
