package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal(t *testing.T) {
	assert.True(t, ArrangementDone.Terminal())
	assert.True(t, ArrangementAllPartsProcessed.Terminal())
	assert.True(t, ArrangementError.Terminal())
	assert.False(t, ArrangementPendingUpload.Terminal())
	assert.False(t, ArrangementProcessingParts.Terminal())
}

func TestNewArrangement(t *testing.T) {
	a := NewArrangement("0193e6a1-aaaa-bbbb-cccc-ddddeeeeffff")
	assert.Equal(t, ArrangementPendingUpload, a.Status)
	assert.Equal(t, "Arrangement 0193e6a1", a.DisplayName)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestPartID(t *testing.T) {
	assert.Equal(t, "a1/part-0-Full Score", PartID("a1", "Full Score", 0))
	assert.NotEqual(t, PartID("a1", "Flute", 1), PartID("a1", "Flute", 2))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	a := NewArrangement("id")
	a.Files = []InputFile{{Name: "score.pdf", Data: []byte("x")}}
	a.Metadata = &ExtractedMetadata{Title: "Bolero", Composers: []string{"Ravel"}, Category: "Concert Band"}
	a.Parts = []*Part{{ID: "id/part-0-Full Score", Status: PartPending}}

	snap := a.Snapshot()
	assert.Nil(t, snap.Files, "input bytes are not part of snapshots")

	snap.Metadata.Title = "changed"
	snap.Metadata.Composers[0] = "changed"
	snap.Parts[0].Status = PartDone

	assert.Equal(t, "Bolero", a.Metadata.Title)
	assert.Equal(t, "Ravel", a.Metadata.Composers[0])
	assert.Equal(t, PartPending, a.Parts[0].Status)
}

func TestPartCounts(t *testing.T) {
	a := NewArrangement("id")
	a.Parts = []*Part{
		{Status: PartDone},
		{Status: PartError},
		{Status: PartDone},
		{Status: PartUploading},
	}
	done, failed := a.PartCounts()
	require.Equal(t, 2, done)
	require.Equal(t, 1, failed)
}
