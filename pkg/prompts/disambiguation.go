// Package prompts builds the oracle prompts for work disambiguation and
// metadata extraction.
package prompts

import (
	"fmt"
	"strings"

	"github.com/moedb/moedb-engine/pkg/models"
)

// DisambiguationSystemMessage primes the oracle as an ACGN naming expert that
// answers with JSON only.
const DisambiguationSystemMessage = "You are an expert in ACGN (anime, comics, games, novels) work identification, " +
	"fluent in Chinese, English, and Japanese naming conventions. " +
	"A work's native title, marketing English title, and localized-market title are often unrelated strings. " +
	"Respond with a single JSON object and nothing else."

// BuildDisambiguationPrompt creates the prompt asking whether a query string
// denotes the same work as any catalog candidate. An empty candidate list is
// legal; the oracle must still propose canonical names for the query.
func BuildDisambiguationPrompt(query string, candidates []models.WorkCandidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A user submitted the work name: %q\n\n", query)

	if len(candidates) > 0 {
		b.WriteString("The catalog already contains these similar works:\n")
		for i, c := range candidates {
			fmt.Fprintf(&b, "%d. id=%s", i+1, c.ID)
			if c.NameCN != nil {
				fmt.Fprintf(&b, " cn=%q", *c.NameCN)
			}
			if c.NameEN != nil {
				fmt.Fprintf(&b, " en=%q", *c.NameEN)
			}
			if c.NameJP != nil {
				fmt.Fprintf(&b, " jp=%q", *c.NameJP)
			}
			if len(c.Aliases) > 0 {
				fmt.Fprintf(&b, " aliases=%q", strings.Join(c.Aliases, ", "))
			}
			fmt.Fprintf(&b, " type=%s\n", c.Type)
		}
		b.WriteString("\nDecide whether the submitted name refers to the same underlying work as any candidate, " +
			"accounting for aliases, translated titles, and abbreviations.\n")
	} else {
		b.WriteString("The catalog contains no similar works.\n")
	}

	b.WriteString(`
Reply with JSON in exactly this shape:
{
  "isDuplicate": true or false,
  "matchedWorkId": "candidate id if duplicate, else null",
  "confidence": number between 0 and 1,
  "reason": "short justification",
  "suggestedNames": {
    "name_cn": "suggested Chinese title or null",
    "name_en": "suggested English title or null",
    "name_jp": "suggested Japanese title or null"
  },
  "type": "anime" | "manga" | "game" | "novel"
}

Return only the JSON object, no other text.`)

	return b.String()
}
