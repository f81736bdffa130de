package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/scorefiler/internal/metrics"
	"github.com/local/scorefiler/internal/pdf"
)

// Transport selects how the working document travels to the provider.
const (
	TransportPDF    = "pdf"
	TransportImages = "images"
	TransportAuto   = "auto" // probe for extractable text, fall back to images
)

// Payload is a transport-encoded document ready for one extraction call.
type Payload struct {
	PDFBase64 string
	Images    []Image
}

// ExtractorOptions configures transport encoding and the provider call.
type ExtractorOptions struct {
	Model     string
	Transport string
	Render    pdf.RenderOptions
	Timeout   time.Duration
}

// Extractor wraps a provider Client with transport encoding, response
// validation and metrics. This is the only extraction surface the
// orchestrator consumes.
type Extractor struct {
	client Client
	opts   ExtractorOptions
}

func NewExtractor(client Client, opts ExtractorOptions) *Extractor {
	if opts.Transport == "" {
		opts.Transport = TransportAuto
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Extractor{client: client, opts: opts}
}

// Prepare encodes the working document for transport. In auto mode a
// sampled text probe decides: engraved scores travel as base64 PDF,
// scan-only documents as rendered page images.
func (e *Extractor) Prepare(doc []byte) (Payload, error) {
	transport := e.opts.Transport
	if transport == TransportAuto {
		hasText, report, err := pdf.Probe(doc, 0)
		if err != nil {
			return Payload{}, fmt.Errorf("probe document: %w", err)
		}
		log.Debug().Int("sampled_chars", report.TotalCharsInSample).Bool("has_text", hasText).Msg("transport probe")
		if hasText {
			transport = TransportPDF
		} else {
			transport = TransportImages
		}
	}

	switch transport {
	case TransportImages:
		pages, err := pdf.RenderPages(doc, e.opts.Render)
		if err != nil {
			return Payload{}, fmt.Errorf("render pages for transport: %w", err)
		}
		images := make([]Image, len(pages))
		for i, p := range pages {
			images[i] = Image{PageNum: p.PageNum, MIME: p.MIME, Base64: p.Base64()}
		}
		return Payload{Images: images}, nil
	default:
		return Payload{PDFBase64: base64.StdEncoding.EncodeToString(doc)}, nil
	}
}

// Extract performs the single blocking extraction call and validates the
// result against the allowed category set.
func (e *Extractor) Extract(ctx context.Context, p Payload, allowed []string) (Metadata, error) {
	req := Request{
		DocumentBase64:    p.PDFBase64,
		Images:            p.Images,
		AllowedCategories: allowed,
		Model:             e.opts.Model,
	}

	cctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	start := time.Now()
	md, err := e.client.Extract(cctx, req)
	if err != nil {
		metrics.ObserveExtract(e.client.Name(), e.opts.Model, "error", time.Since(start))
		return Metadata{}, err
	}

	if err := Validate(md, allowed); err != nil {
		metrics.ObserveExtract(e.client.Name(), e.opts.Model, "invalid", time.Since(start))
		return Metadata{}, err
	}

	metrics.ObserveExtract(e.client.Name(), e.opts.Model, "ok", time.Since(start))
	log.Info().
		Str("provider", e.client.Name()).
		Str("model", e.opts.Model).
		Str("title", md.Title).
		Str("category", md.Category).
		Int("parts", len(md.Parts)).
		Msg("metadata extracted")
	return md, nil
}
