package naming

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		name            string
		displayName     string
		instrumentation string
		want            string
	}{
		{"plain", "Bolero", "Full Score", "Bolero - Full Score.pdf"},
		{"separators replaced", "A/B", "C:D", "A-B - C-D.pdf"},
		{"all reserved chars", `a\b*c?d`, `e"f<g>h|i`, "a-b-c-d - e-f-g-h-i.pdf"},
		{"existing pdf suffix kept", "Suite", "Horn.PDF", "Suite - Horn.PDF"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Generate(tc.displayName, tc.instrumentation)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first, err := Generate("A/B", "C:D")
	require.NoError(t, err)
	second, err := Generate("A/B", "C:D")
	require.NoError(t, err)
	assert.Equal(t, "A-B - C-D.pdf", first)
	assert.Equal(t, first, second)
}

func TestGenerateInvalidInput(t *testing.T) {
	var invalid *InvalidInputError

	_, err := Generate("", "Flute I")
	require.Error(t, err)
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "display name", invalid.Field)

	_, err = Generate("Bolero", "   ")
	require.Error(t, err)
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "instrumentation", invalid.Field)
}

func TestGenerateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		displayName := rapid.StringMatching(`[ -~]{1,40}`).Draw(t, "displayName")
		instrumentation := rapid.StringMatching(`[ -~]{1,40}`).Draw(t, "instrumentation")
		if strings.TrimSpace(displayName) == "" || strings.TrimSpace(instrumentation) == "" {
			t.Skip("empty input")
		}

		got, err := Generate(displayName, instrumentation)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(strings.ToLower(got), ".pdf") {
			t.Fatalf("missing .pdf suffix: %q", got)
		}
		if strings.ContainsAny(got, `/\:*?"<>|`) {
			t.Fatalf("reserved character survived: %q", got)
		}

		again, err := Generate(displayName, instrumentation)
		if err != nil || again != got {
			t.Fatalf("not deterministic: %q vs %q (%v)", got, again, err)
		}
	})
}
