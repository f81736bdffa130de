package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// PageImage is one rendered page ready for vision transport.
type PageImage struct {
	PageNum int
	MIME    string
	Data    []byte
}

// Base64 returns the image data base64-encoded for JSON transport.
func (p PageImage) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// RenderOptions controls page rendering for vision transport.
type RenderOptions struct {
	DPI       int
	Quality   int
	Grayscale bool
	MaxPages  int // 0 renders every page
}

// RenderPages renders document pages to in-memory JPEGs, in page order.
// MaxPages bounds how many leading pages are rendered.
func RenderPages(data []byte, opts RenderOptions) ([]PageImage, error) {
	if opts.DPI <= 0 {
		opts.DPI = 150
	}
	if opts.Quality <= 0 {
		opts.Quality = 80
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open document for rendering: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if opts.MaxPages > 0 && total > opts.MaxPages {
		total = opts.MaxPages
	}

	images := make([]PageImage, 0, total)
	for i := 0; i < total; i++ {
		img, err := doc.ImageDPI(i, float64(opts.DPI))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		var final image.Image = img
		if opts.Grayscale {
			bounds := img.Bounds()
			gray := image.NewGray(bounds)
			draw.Draw(gray, bounds, img, image.Point{}, draw.Src)
			final = gray
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, final, &jpeg.Options{Quality: opts.Quality}); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}

		log.Debug().Int("page", i+1).Int("jpeg_size", buf.Len()).Int("dpi", opts.DPI).Msg("rendered page for transport")
		images = append(images, PageImage{PageNum: i + 1, MIME: "image/jpeg", Data: buf.Bytes()})
	}
	return images, nil
}
