package prompts

import (
	"fmt"
	"strings"
)

// ExtractionSystemMessage primes the oracle as a structured-information
// extractor that answers with JSON only.
const ExtractionSystemMessage = "You are an expert at extracting structured ACGN work and character information " +
	"from encyclopedia content in Chinese, English, or Japanese. " +
	"Respond with a single JSON object and nothing else."

// BuildExtractionPrompt creates the prompt asking the oracle to synthesize
// work metadata and a character roster from harvested wiki content. The
// content passed in is already truncated to the pipeline's character budget.
func BuildExtractionPrompt(workName, content string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Extract information about the work %q from the following encyclopedia content.\n\n", workName)
	b.WriteString("Content:\n")
	b.WriteString(content)
	b.WriteString(`

Reply with JSON in exactly this shape:
{
  "workInfo": {
    "name_cn": "Chinese title",
    "name_en": "English title if any",
    "name_jp": "Japanese title if any",
    "type": "anime" | "manga" | "game" | "novel",
    "summary_md": "short introduction, at most 50 characters"
  },
  "characters": [
    {
      "name_cn": "character Chinese name",
      "name_en": "character English name",
      "name_jp": "character Japanese name",
      "avatar_url": "character image URL found in the content",
      "source_link": "character encyclopedia page link"
    }
  ],
  "source_urls": {
    "moegirl": "source page URL",
    "baike": "source page URL",
    "wikipedia": "source page URL"
  }
}

Return only the JSON object, no other text. Use null for any field you
cannot determine from the content; never invent placeholder values.`)

	return b.String()
}
