package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKernelScale(t *testing.T) {
	k, err := NewKernel("boost", 3, []float64{0.1, 0.1, 0.1, 0.1, 1.1, 0.1, 0.1, 0.1, 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 1.9, k.Scale(), 1e-12)
	assert.Equal(t, 1.1, k.Weight(0, 0))

	edge, err := NewKernel("edge", 3, []float64{0, -1, 0, -1, 4, -1, 0, -1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, edge.Scale(), "zero-sum kernels are applied unscaled")
}

func TestNewKernelRejectsBadShapes(t *testing.T) {
	_, err := NewKernel("even", 2, make([]float64, 4))
	assert.Error(t, err)
	_, err = NewKernel("short", 3, make([]float64, 8))
	assert.Error(t, err)
}

func TestKernelIsImmutable(t *testing.T) {
	w := []float64{0, 0, 0, 0, 1, 0, 0, 0, 0}
	k := MustKernel("id", 3, w)
	w[4] = 7
	k.Weights()[4] = 9
	assert.Equal(t, 1.0, k.Weight(0, 0))
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in       string
		want     Format
		fallback bool
	}{
		{"jpeg", FormatJPEG, false},
		{"JPG", FormatJPEG, false},
		{"png", FormatPNG, false},
		{" webp ", FormatWebP, false},
		{"bogus", FormatJPEG, true},
		{"", FormatJPEG, true},
	}
	for _, tc := range cases {
		f, fb := ParseFormat(tc.in)
		assert.Equal(t, tc.want, f, tc.in)
		assert.Equal(t, tc.fallback, fb, tc.in)
	}
	assert.Equal(t, "image/jpeg", FormatJPEG.MimeType())
	assert.Equal(t, "image/png", FormatPNG.MimeType())
	assert.Equal(t, "image/webp", FormatWebP.MimeType())
}

func TestParseQualityTier(t *testing.T) {
	q, err := ParseQualityTier("High")
	require.NoError(t, err)
	assert.Equal(t, QualityHigh, q)

	_, err = ParseQualityTier("ultra")
	assert.True(t, IsInvalidInput(err))
}

func TestBlurKindJSON(t *testing.T) {
	data, err := json.Marshal(Classification{IsBlurry: true, Kind: BlurOutOfFocus, Score: 12})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isBlurry":true,"blurKind":"outOfFocus","score":12}`, string(data))

	var c Classification
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, BlurOutOfFocus, c.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"blurKind":"wobbly"}`), &c))
}
