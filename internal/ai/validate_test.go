package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetadata() Metadata {
	return Metadata{
		Title:     "Bolero",
		Composers: []string{"Ravel"},
		Category:  "Concert Band",
		Parts: []PartDescriptor{
			{Label: "Full Score", IsFullScore: true, StartPage: 1, EndPage: 4, Instrumentation: "Full Score"},
			{Label: "Flute I", StartPage: 5, EndPage: 7, Instrumentation: "Flute"},
		},
	}
}

var allowed = []string{"Concert Band", "Jazz Ensemble", "Choir"}

func TestValidateOK(t *testing.T) {
	require.NoError(t, Validate(validMetadata(), allowed))
}

func TestValidateNamesEveryMissingField(t *testing.T) {
	md := Metadata{
		Composers: []string{"Ravel", "  "},
		Parts: []PartDescriptor{
			{Label: "", StartPage: 0, EndPage: 3, Instrumentation: "Flute"},
		},
	}
	err := Validate(md, allowed)
	require.Error(t, err)

	var incomplete *IncompleteMetadataError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{
		"title",
		"composers[1]",
		"category",
		"parts[0].label",
		"parts[0].start_page",
	}, incomplete.Missing)
}

func TestValidateZeroParts(t *testing.T) {
	md := validMetadata()
	md.Parts = nil

	var incomplete *IncompleteMetadataError
	err := Validate(md, allowed)
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{"parts"}, incomplete.Missing)
}

func TestValidateCategoryCaseExact(t *testing.T) {
	md := validMetadata()
	md.Category = "concert band"

	var invalid *InvalidCategoryError
	err := Validate(md, allowed)
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "concert band", invalid.Category)
	assert.Equal(t, allowed, invalid.Allowed)
}

func TestValidateCategoryOutsideAllowed(t *testing.T) {
	md := validMetadata()
	md.Category = "Marching Band"

	var invalid *InvalidCategoryError
	require.True(t, errors.As(Validate(md, allowed), &invalid))
}
