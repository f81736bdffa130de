package ai

import (
	"fmt"
	"strings"
)

// Validate enforces the extraction contract on the caller side. The remote
// service is never trusted to return a complete result.
//
// Returns *IncompleteMetadataError naming every missing or invalid field,
// or *InvalidCategoryError when the category is not a case-exact member of
// allowed. Validation order: completeness first, then category containment.
func Validate(md Metadata, allowed []string) error {
	var missing []string

	if strings.TrimSpace(md.Title) == "" {
		missing = append(missing, "title")
	}
	if len(md.Composers) == 0 {
		missing = append(missing, "composers")
	} else {
		for i, c := range md.Composers {
			if strings.TrimSpace(c) == "" {
				missing = append(missing, fmt.Sprintf("composers[%d]", i))
			}
		}
	}
	if strings.TrimSpace(md.Category) == "" {
		missing = append(missing, "category")
	}
	if len(md.Parts) == 0 {
		missing = append(missing, "parts")
	}
	for i, p := range md.Parts {
		if strings.TrimSpace(p.Label) == "" {
			missing = append(missing, fmt.Sprintf("parts[%d].label", i))
		}
		if strings.TrimSpace(p.Instrumentation) == "" {
			missing = append(missing, fmt.Sprintf("parts[%d].primary_instrumentation", i))
		}
		if p.StartPage < 1 {
			missing = append(missing, fmt.Sprintf("parts[%d].start_page", i))
		}
		if p.EndPage < 1 {
			missing = append(missing, fmt.Sprintf("parts[%d].end_page", i))
		}
	}
	if len(missing) > 0 {
		return &IncompleteMetadataError{Missing: missing}
	}

	for _, c := range allowed {
		if md.Category == c {
			return nil
		}
	}
	return &InvalidCategoryError{Category: md.Category, Allowed: allowed}
}
