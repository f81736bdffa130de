package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a music librarian assistant. You receive a merged PDF of a sheet-music arrangement and must identify its structure.

Respond with ONLY a JSON object, no prose and no markdown fences, in this exact shape:
{
  "title": "<work title>",
  "composers": ["<composer>", ...],
  "category": "<one of the allowed categories, copied exactly>",
  "parts": [
    {
      "label": "<part name as printed, e.g. Full Score, Flute I>",
      "is_full_score": <true|false>,
      "start_page": <first page of this part, 1-indexed>,
      "end_page": <last page of this part, 1-indexed inclusive>,
      "primary_instrumentation": "<instrument or ensemble this part serves>"
    }
  ]
}

Rules:
- "category" MUST be copied character-for-character from the allowed list.
- Parts appear in the order they appear in the document and must cover every part present.
- Page numbers refer to PDF pages, not printed page numbers.`

func userPrompt(allowed []string) string {
	var b strings.Builder
	b.WriteString("Allowed categories:\n")
	for _, c := range allowed {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nIdentify the title, composers, category and part page ranges of the attached arrangement.")
	return b.String()
}
