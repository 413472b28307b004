package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceSnapshot preserves the raw content fetched from an encyclopedic
// source during a harvest, for provenance and later re-extraction.
type SourceSnapshot struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	FetchedAt   time.Time `json:"fetched_at"`
	FetchedBy   *string   `json:"fetched_by,omitempty"`
	RawMD       string    `json:"raw_md"`
	RawHTML     *string   `json:"raw_html,omitempty"`
	LicenseInfo *string   `json:"license_info,omitempty"`
}
