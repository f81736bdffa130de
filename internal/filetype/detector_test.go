package filetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	pdf := Detect("score.pdf", []byte("%PDF-1.4\n%...\n"))
	assert.True(t, pdf.IsPDF)
	assert.Equal(t, ".pdf", pdf.Extension)

	txt := Detect("renamed.pdf", []byte("just some notes"))
	assert.False(t, txt.IsPDF, "extension must not override magic bytes")

	empty := Detect("empty", nil)
	assert.False(t, empty.IsPDF)
}
