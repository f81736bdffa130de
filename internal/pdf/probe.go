package pdf

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"time"

	"github.com/gen2brain/go-fitz"
)

// ProbeThreshold is the default character count above which a document is
// considered to carry extractable text. Engraved scores exported from
// notation software clear it easily; scanned scores do not.
const ProbeThreshold = 300

// PageProbe captures the result of probing a single page.
type PageProbe struct {
	PageIndex int    `json:"page_index"`
	CharCount int    `json:"char_count"`
	Err       string `json:"err,omitempty"`
}

// ProbeReport describes how the extractable-text decision was reached.
type ProbeReport struct {
	TotalPages         int         `json:"total_pages"`
	SampledPages       []int       `json:"sampled_pages"`
	TotalCharsInSample int         `json:"total_chars_in_sample"`
	Threshold          int         `json:"threshold"`
	Probes             []PageProbe `json:"probes"`
	HasExtractableText bool        `json:"has_extractable_text"`
	DurationMs         int64       `json:"duration_ms"`
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Probe samples pages of the document and reports whether it carries
// extractable text. If threshold <= 0, ProbeThreshold is used. The answer
// drives transport selection: text-bearing documents travel as raw PDF,
// scan-only documents as rendered page images.
func Probe(data []byte, threshold int) (bool, *ProbeReport, error) {
	if threshold <= 0 {
		threshold = ProbeThreshold
	}

	start := time.Now()
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return false, nil, fmt.Errorf("open document for probing: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	report := &ProbeReport{
		TotalPages:   total,
		SampledPages: []int{},
		Threshold:    threshold,
	}
	if total <= 0 {
		report.DurationMs = time.Since(start).Milliseconds()
		return false, report, nil
	}

	sample := sampleIndices(total)
	report.SampledPages = sample

	totalChars := 0
	for _, idx := range sample {
		probe := PageProbe{PageIndex: idx}
		text, terr := doc.Text(idx)
		if terr != nil {
			probe.Err = terr.Error()
			report.Probes = append(report.Probes, probe)
			continue
		}
		count := len([]rune(whitespaceRegex.ReplaceAllString(text, "")))
		probe.CharCount = count
		totalChars += count
		report.Probes = append(report.Probes, probe)
		if totalChars >= threshold {
			break
		}
	}

	report.TotalCharsInSample = totalChars
	report.HasExtractableText = totalChars >= threshold
	report.DurationMs = time.Since(start).Milliseconds()
	return report.HasExtractableText, report, nil
}

// sampleIndices picks up to 5 pages: all of them for short documents,
// otherwise first, mid, last plus random distinct fill.
func sampleIndices(total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= 5 {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	base := map[int]struct{}{0: {}, total / 2: {}, total - 1: {}}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for len(base) < 5 {
		base[rnd.Intn(total)] = struct{}{}
	}

	out := make([]int, 0, len(base))
	for i := range base {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
