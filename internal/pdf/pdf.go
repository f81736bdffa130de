// Package pdf provides the document operations the arrangement pipeline
// needs: load, page count, page-range extraction and merge. All operations
// work on in-memory bytes; pdfcpu does the heavy lifting.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrEmptyRange signals a page range that resolves to no pages after
// clamping to the document bounds.
var ErrEmptyRange = errors.New("page range resolves to no pages")

// MalformedDocumentError identifies an input that could not be read as a
// PDF (corrupted, encrypted or password-protected).
type MalformedDocumentError struct {
	Name string
	Err  error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %q: %v", e.Name, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// Input is a named byte source for Load and Merge.
type Input struct {
	Name string
	Data []byte
}

// Document is a loaded, validated PDF.
type Document struct {
	name  string
	data  []byte
	pages int
}

func conf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}

// Load parses and validates raw bytes into a Document.
func Load(name string, data []byte) (*Document, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), conf())
	if err != nil {
		return nil, &MalformedDocumentError{Name: name, Err: err}
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, &MalformedDocumentError{Name: name, Err: err}
	}
	return &Document{name: name, data: data, pages: ctx.PageCount}, nil
}

// Name returns the name the document was loaded under.
func (d *Document) Name() string { return d.name }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.pages }

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte { return d.data }

// ExtractRange copies the 1-indexed inclusive page range [start, end] into
// a new document. The range is clamped to [1, PageCount]; an empty clamped
// range fails with ErrEmptyRange.
func (d *Document) ExtractRange(start, end int) ([]byte, error) {
	lo, hi := start, end
	if lo < 1 {
		lo = 1
	}
	if hi > d.pages {
		hi = d.pages
	}
	if lo > hi {
		return nil, fmt.Errorf("pages %d-%d of %d-page document: %w", start, end, d.pages, ErrEmptyRange)
	}

	var buf bytes.Buffer
	sel := []string{fmt.Sprintf("%d-%d", lo, hi)}
	if err := api.Trim(bytes.NewReader(d.data), &buf, sel, conf()); err != nil {
		return nil, fmt.Errorf("extract pages %d-%d: %w", lo, hi, err)
	}
	return buf.Bytes(), nil
}

// Merge concatenates the pages of all inputs, in input order, into one new
// document. Each input is validated first so a failure names the offending
// file.
func Merge(inputs []Input) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, errors.New("merge: no input files")
	}

	readers := make([]io.ReadSeeker, len(inputs))
	for i, in := range inputs {
		if _, err := Load(in.Name, in.Data); err != nil {
			return nil, err
		}
		readers[i] = bytes.NewReader(in.Data)
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, conf()); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return buf.Bytes(), nil
}
