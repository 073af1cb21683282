package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressive-upscaler/internal/core"
)

func stripes(w, h, period int) *core.Buffer {
	b := core.NewBuffer(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 40.0
			if (x/period)%2 == 0 {
				v = 210
			}
			for c := 0; c < 3; c++ {
				b.Set(x, y, c, v)
			}
		}
	}
	return b
}

func TestEvaluateIdenticalImages(t *testing.T) {
	src := stripes(16, 16, 2)
	got := NewEvaluator().Evaluate(src, src.Clone())
	require.Len(t, got, 3)
	assert.Equal(t, 100.0, got["psnr"])
	assert.InDelta(t, 1.0, got["contrast"], 1e-9)
	assert.InDelta(t, 1.0, got["sharpness"], 1e-9)
}

func TestEvaluateDifferentSizes(t *testing.T) {
	src := stripes(16, 16, 4)
	up := stripes(32, 32, 8)
	got := NewEvaluator().Evaluate(src, up)
	assert.Contains(t, got, "psnr")
	assert.Greater(t, got["psnr"], 20.0)
	assert.InDelta(t, 1.0, got["contrast"], 1e-9)
}

func TestEvaluateFlatSourceIsNeutral(t *testing.T) {
	flat := core.NewBuffer(8, 8, 3)
	got := NewEvaluator().Evaluate(flat, stripes(8, 8, 2))
	assert.Equal(t, 1.0, got["contrast"])
	assert.Equal(t, 1.0, got["sharpness"])
}

func TestEvaluateInvalidBuffers(t *testing.T) {
	assert.Nil(t, NewEvaluator().Evaluate(core.NewBuffer(0, 0, 3), stripes(4, 4, 1)))
}

func TestEvaluatorRegistry(t *testing.T) {
	e := NewEvaluator()
	assert.Equal(t, []string{"contrast", "psnr", "sharpness"}, e.Names())
	for _, name := range e.Names() {
		m, ok := e.Lookup(name)
		require.True(t, ok, name)
		assert.True(t, m.HigherIsBetter(), name)
		assert.NotEmpty(t, m.Description(), name)
	}

	_, ok := e.Lookup("ssim")
	assert.False(t, ok)

	e.Add("contrast", NewSharpness())
	assert.Len(t, e.Names(), 3)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, stdDev(nil))
	assert.InDelta(t, 2.0, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}
