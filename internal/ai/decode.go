package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// decodeMetadata parses a provider reply into Metadata. Models occasionally
// wrap JSON in markdown fences or prose despite instructions, so the first
// balanced object in the text is what gets decoded.
func decodeMetadata(text string) (Metadata, error) {
	raw := strings.TrimSpace(text)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if i := strings.LastIndex(raw, "```"); i >= 0 {
			raw = raw[:i]
		}
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Metadata{}, errors.New("no JSON object in extraction reply")
	}

	var md Metadata
	if err := json.Unmarshal([]byte(raw[start:end+1]), &md); err != nil {
		return Metadata{}, fmt.Errorf("decode extraction reply: %w", err)
	}
	return md, nil
}
