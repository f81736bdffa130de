package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReply = `{"title":"Bolero","composers":["Ravel"],"category":"Concert Band","parts":[{"label":"Full Score","is_full_score":true,"start_page":1,"end_page":4,"primary_instrumentation":"Full Score"}]}`

func TestDecodeMetadata(t *testing.T) {
	md, err := decodeMetadata(sampleReply)
	require.NoError(t, err)
	assert.Equal(t, "Bolero", md.Title)
	assert.Equal(t, []string{"Ravel"}, md.Composers)
	assert.Equal(t, "Concert Band", md.Category)
	require.Len(t, md.Parts, 1)
	assert.True(t, md.Parts[0].IsFullScore)
	assert.Equal(t, 4, md.Parts[0].EndPage)
}

func TestDecodeMetadataFenced(t *testing.T) {
	md, err := decodeMetadata("```json\n" + sampleReply + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Bolero", md.Title)
}

func TestDecodeMetadataWithProse(t *testing.T) {
	md, err := decodeMetadata("Here is the result:\n" + sampleReply + "\nLet me know if you need anything else.")
	require.NoError(t, err)
	assert.Equal(t, "Concert Band", md.Category)
}

func TestDecodeMetadataNoJSON(t *testing.T) {
	_, err := decodeMetadata("I could not read the document.")
	require.Error(t, err)
}
