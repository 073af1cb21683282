package blur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressive-upscaler/internal/algorithms"
	"progressive-upscaler/internal/core"
)

func flat(w, h, ch int, v uint8) *core.Buffer {
	b := core.NewBuffer(w, h, ch)
	for i := range b.Pix {
		b.Pix[i] = v
	}
	return b
}

func gradient(w, h int) *core.Buffer {
	b := core.NewBuffer(w, h, 3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(x) * 255 / float64(w-1)
			b.Set(x, y, 0, v)
			b.Set(x, y, 1, 255-v)
			b.Set(x, y, 2, float64(y)*255/float64(h-1))
		}
	}
	return b
}

func TestStats(t *testing.T) {
	b := core.NewBuffer(2, 1, 4)
	copy(b.Pix, []uint8{0, 10, 20, 255, 100, 10, 40, 0})
	stats, err := Stats(b)
	require.NoError(t, err)
	require.Len(t, stats, 3, "alpha is excluded")
	assert.InDelta(t, 50, stats[0].Mean, 1e-9)
	assert.InDelta(t, 50, stats[0].StdDev, 1e-9)
	assert.InDelta(t, 0, stats[1].StdDev, 1e-9)
	assert.InDelta(t, 30, stats[2].Mean, 1e-9)

	_, err = Stats(core.NewBuffer(0, 0, 3))
	assert.Error(t, err)
}

func TestAnalyzeFlatBlackIsOutOfFocus(t *testing.T) {
	c, err := Analyze(flat(32, 32, 3, 0))
	require.NoError(t, err)
	assert.True(t, c.IsBlurry)
	assert.Equal(t, core.BlurOutOfFocus, c.Kind)
	assert.Zero(t, c.Score)
}

func TestAnalyzeFlatGreyIsMotion(t *testing.T) {
	// Mean 128 with zero spread trips the directional proxy.
	c, err := Analyze(flat(32, 32, 3, 128))
	require.NoError(t, err)
	assert.True(t, c.IsBlurry)
	assert.Equal(t, core.BlurMotion, c.Kind)
}

func TestAnalyzeGradientIsSharp(t *testing.T) {
	c, err := Analyze(gradient(100, 100))
	require.NoError(t, err)
	assert.False(t, c.IsBlurry)
	assert.Equal(t, core.BlurNone, c.Kind)
	assert.GreaterOrEqual(t, c.Score, BlurryThreshold)
}

func TestAnalyzeDegradesOnEmptyBuffer(t *testing.T) {
	c, err := Analyze(&core.Buffer{Channels: 3})
	assert.Error(t, err)
	assert.False(t, c.IsBlurry)
	assert.Equal(t, core.BlurNone, c.Kind)
	assert.True(t, c.Degraded)
}

func TestClassifyBoundaries(t *testing.T) {
	at := func(std, mean float64) core.Classification {
		return Classify([]core.ChannelStatistics{{Mean: mean, StdDev: std}})
	}
	// variance 529 is not blurry
	assert.False(t, at(23, 22).IsBlurry)
	// variance 400 with mean close to stdev is general
	assert.Equal(t, core.BlurGeneral, at(20, 30).Kind)
	// variance 100 is out of focus
	assert.Equal(t, core.BlurOutOfFocus, at(10, 30).Kind)
	// directional proxy wins over out of focus
	assert.Equal(t, core.BlurMotion, at(10, 61).Kind)
	assert.Equal(t, core.NotBlurry(), Classify(nil))
}

func TestChainFor(t *testing.T) {
	assert.Equal(t, []string{"convolve:sharpen-motion", "sharpen:2.2"}, ChainFor(core.BlurMotion).Names())
	assert.Equal(t, []string{"sharpen:1.8", "convolve:sharpen-out-of-focus"}, ChainFor(core.BlurOutOfFocus).Names())
	assert.Equal(t, []string{"sharpen:2", "convolve:sharpen-general"}, ChainFor(core.BlurGeneral).Names())
	assert.Empty(t, ChainFor(core.BlurNone))
}

func TestCorrect(t *testing.T) {
	src := gradient(20, 20)

	same, err := Correct(src, core.NotBlurry())
	require.NoError(t, err)
	assert.Same(t, src, same, "sharp images skip correction")

	c := core.Classification{IsBlurry: true, Kind: core.BlurGeneral}
	out, err := Correct(src, c)
	require.NoError(t, err)
	want, err := algorithms.Sharpen(src, algorithms.DefaultSharpen(2.0))
	require.NoError(t, err)
	want, err = algorithms.Convolve(want, algorithms.MustLookupKernel(algorithms.KernelSharpenGeneral))
	require.NoError(t, err)
	assert.Equal(t, want.Pix, out.Pix)
	assert.NotSame(t, src, out)
}

func TestCorrectReportsFilterFailure(t *testing.T) {
	bad := &core.Buffer{Width: 4, Height: 4, Channels: 3, Pix: make([]uint8, 3)}
	_, err := Correct(bad, core.Classification{IsBlurry: true, Kind: core.BlurMotion})
	assert.ErrorContains(t, err, "deblur motion")
}
