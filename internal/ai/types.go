package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PartDescriptor describes one part of the score as identified by the
// extraction service. Pages are 1-indexed inclusive.
type PartDescriptor struct {
	Label           string `json:"label"`
	IsFullScore     bool   `json:"is_full_score"`
	StartPage       int    `json:"start_page"`
	EndPage         int    `json:"end_page"`
	Instrumentation string `json:"primary_instrumentation"`
}

// Metadata is the structured result of one extraction call.
type Metadata struct {
	Title     string           `json:"title"`
	Composers []string         `json:"composers"`
	Category  string           `json:"category"`
	Parts     []PartDescriptor `json:"parts"`
}

// Image is one rendered page for vision transport.
type Image struct {
	PageNum int
	MIME    string
	Base64  string
}

// Request carries one document (exactly one transport populated) and the
// allowed category labels for a single extraction call.
type Request struct {
	DocumentBase64    string
	Images            []Image
	AllowedCategories []string
	Model             string
}

// Client is implemented per provider (OpenAI, Anthropic).
type Client interface {
	Name() string
	Extract(ctx context.Context, req Request) (Metadata, error)
}

// ErrRateLimited is returned on provider 429 responses.
var ErrRateLimited = errors.New("rate_limited")

// IncompleteMetadataError names every missing or invalid field in an
// extraction result.
type IncompleteMetadataError struct {
	Missing []string
}

func (e *IncompleteMetadataError) Error() string {
	return fmt.Sprintf("incomplete metadata: missing or invalid fields: %s", strings.Join(e.Missing, ", "))
}

// InvalidCategoryError signals a category outside the allowed set. The
// category determines folder placement, so a loose match is never accepted.
type InvalidCategoryError struct {
	Category string
	Allowed  []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("category %q is not among allowed categories [%s]", e.Category, strings.Join(e.Allowed, ", "))
}
