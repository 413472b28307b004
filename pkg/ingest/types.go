// Package ingest implements the work-ingestion and deduplication pipeline:
// given a free-text work name, decide whether it already exists in the
// catalog, and if not, gather encyclopedic data and materialize a new work
// with its character roster.
package ingest

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/moedb/moedb-engine/pkg/jsonutil"
	"github.com/moedb/moedb-engine/pkg/models"
)

// LocalizedNames is a cn/en/jp name triple where nil means "not known".
type LocalizedNames struct {
	CN *string `json:"name_cn"`
	EN *string `json:"name_en"`
	JP *string `json:"name_jp"`
}

// Verdict is the ephemeral disambiguation judgment for one query. It is
// consumed immediately and never persisted; only its consequence (proceed or
// stop) affects state.
type Verdict struct {
	IsDuplicate    bool           `json:"isDuplicate"`
	MatchedWorkID  *uuid.UUID     `json:"matchedWorkId"`
	Confidence     float64        `json:"confidence"`
	Reason         string         `json:"reason"`
	SuggestedNames LocalizedNames `json:"suggestedNames"`
	SuggestedType  string         `json:"type"`
}

// verdictPayload is the raw oracle response shape. Name fields are raw so
// numeric or boolean oddities from the oracle coerce instead of failing.
type verdictPayload struct {
	IsDuplicate    bool    `json:"isDuplicate"`
	MatchedWorkID  *string `json:"matchedWorkId"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason"`
	SuggestedNames struct {
		NameCN json.RawMessage `json:"name_cn"`
		NameEN json.RawMessage `json:"name_en"`
		NameJP json.RawMessage `json:"name_jp"`
	} `json:"suggestedNames"`
	Type string `json:"type"`
}

func (p *verdictPayload) toVerdict() *Verdict {
	v := &Verdict{
		IsDuplicate: p.IsDuplicate,
		Confidence:  clamp01(p.Confidence),
		Reason:      p.Reason,
		SuggestedNames: LocalizedNames{
			CN: jsonutil.FlexibleString(p.SuggestedNames.NameCN),
			EN: jsonutil.FlexibleString(p.SuggestedNames.NameEN),
			JP: jsonutil.FlexibleString(p.SuggestedNames.NameJP),
		},
		SuggestedType: normalizeWorkType(p.Type),
	}
	if p.MatchedWorkID != nil {
		if id, err := uuid.Parse(strings.TrimSpace(*p.MatchedWorkID)); err == nil {
			v.MatchedWorkID = &id
		}
	}
	return v
}

// ExtractedWork is the structured work metadata synthesized by the
// extraction oracle.
type ExtractedWork struct {
	Names     LocalizedNames `json:"names"`
	Type      string         `json:"type"`
	SummaryMD *string        `json:"summary_md"`
}

// ExtractedCharacter is one roster entry synthesized by the extraction
// oracle.
type ExtractedCharacter struct {
	Names      LocalizedNames `json:"names"`
	AvatarURL  *string        `json:"avatar_url"`
	SourceLink *string        `json:"source_link"`
}

// Extraction is the all-or-nothing output of one extraction call.
type Extraction struct {
	Work       ExtractedWork        `json:"work"`
	Characters []ExtractedCharacter `json:"characters"`
	SourceURLs map[string]string    `json:"source_urls"`
}

type rawNames struct {
	NameCN json.RawMessage `json:"name_cn"`
	NameEN json.RawMessage `json:"name_en"`
	NameJP json.RawMessage `json:"name_jp"`
}

func (r rawNames) localized() LocalizedNames {
	return LocalizedNames{
		CN: jsonutil.FlexibleString(r.NameCN),
		EN: jsonutil.FlexibleString(r.NameEN),
		JP: jsonutil.FlexibleString(r.NameJP),
	}
}

// extractionPayload is the raw oracle response shape for extraction.
type extractionPayload struct {
	WorkInfo struct {
		rawNames
		Type      string          `json:"type"`
		SummaryMD json.RawMessage `json:"summary_md"`
	} `json:"workInfo"`
	Characters []struct {
		rawNames
		AvatarURL  json.RawMessage `json:"avatar_url"`
		SourceLink json.RawMessage `json:"source_link"`
	} `json:"characters"`
	SourceURLs map[string]*string `json:"source_urls"`
}

func (p *extractionPayload) toExtraction() *Extraction {
	e := &Extraction{
		Work: ExtractedWork{
			Names:     p.WorkInfo.localized(),
			Type:      normalizeWorkType(p.WorkInfo.Type),
			SummaryMD: jsonutil.FlexibleString(p.WorkInfo.SummaryMD),
		},
	}
	for _, c := range p.Characters {
		e.Characters = append(e.Characters, ExtractedCharacter{
			Names:      c.localized(),
			AvatarURL:  jsonutil.FlexibleString(c.AvatarURL),
			SourceLink: jsonutil.FlexibleString(c.SourceLink),
		})
	}
	if len(p.SourceURLs) > 0 {
		e.SourceURLs = make(map[string]string, len(p.SourceURLs))
		for name, url := range p.SourceURLs {
			if url != nil && *url != "" {
				e.SourceURLs[name] = *url
			}
		}
	}
	return e
}

// normalizeWorkType folds unknown oracle type values to anime, matching the
// catalog default.
func normalizeWorkType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if models.IsValidWorkType(t) {
		return t
	}
	return models.WorkTypeAnime
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
