// Package naming builds standardized filenames for uploaded part PDFs.
package naming

import (
	"fmt"
	"strings"
)

// InvalidInputError signals an empty or unusable generator input.
type InvalidInputError struct {
	Field string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s is empty", e.Field)
}

// sanitizer replaces path separators and filesystem-reserved characters.
var sanitizer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "-",
	"\"", "-",
	"<", "-",
	">", "-",
	"|", "-",
)

// Sanitize strips characters that are invalid in filenames.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// Generate composes "{displayName} - {instrumentation}.pdf" from sanitized
// inputs. The result always ends with ".pdf" (case-insensitive check).
func Generate(displayName, instrumentation string) (string, error) {
	if strings.TrimSpace(displayName) == "" {
		return "", &InvalidInputError{Field: "display name"}
	}
	if strings.TrimSpace(instrumentation) == "" {
		return "", &InvalidInputError{Field: "instrumentation"}
	}

	name := fmt.Sprintf("%s - %s", Sanitize(displayName), Sanitize(instrumentation))
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name, nil
}
