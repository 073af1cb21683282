package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressive-upscaler/internal/core"
)

func sharpen(t *testing.T, src *core.Buffer, p SharpenParams) *core.Buffer {
	t.Helper()
	out, err := Sharpen(src, p)
	require.NoError(t, err)
	return out
}

func modulate(t *testing.T, src *core.Buffer, brightness, saturation float64) *core.Buffer {
	t.Helper()
	out, err := Modulate(src, brightness, saturation)
	require.NoError(t, err)
	return out
}

func TestSharpenFlatImageUnchanged(t *testing.T) {
	src := flatBuffer(12, 12, 3, 77)
	out := sharpen(t, src, DefaultSharpen(2.0))
	assert.Equal(t, src.Pix, out.Pix)
}

func TestSharpenResponseCurve(t *testing.T) {
	p := DefaultSharpen(1)
	assert.InDelta(t, 1.5, p.response(1.5), 1e-12)
	assert.InDelta(t, -1.5, p.response(-1.5), 1e-12)
	// Beyond the threshold: 1*2 + 2*(4-2).
	assert.InDelta(t, 6.0, p.response(4), 1e-12)
	assert.Equal(t, 10.0, p.response(50))
	assert.Equal(t, -20.0, p.response(-50))
}

func TestSharpenIncreasesEdgeContrast(t *testing.T) {
	src := core.NewBuffer(16, 4, 3)
	for y := 0; y < 4; y++ {
		for x := 8; x < 16; x++ {
			for c := 0; c < 3; c++ {
				src.Set(x, y, c, 200)
			}
		}
	}
	out := sharpen(t, src, DefaultSharpen(1.4))

	// Dark side of the edge gets darker (floored), bright side gets brighter, capped at +10.
	assert.Equal(t, uint8(0), out.At(7, 1, 0))
	assert.Greater(t, out.At(8, 1, 0), uint8(200))
	assert.LessOrEqual(t, out.At(8, 1, 0), uint8(210))
	// Far from the edge nothing changes.
	assert.Equal(t, uint8(200), out.At(15, 1, 0))
}

func TestSharpenEdgesReplicateBorder(t *testing.T) {
	// A vertical step touching the left border: replicated samples keep the border
	// column on its own side of the edge.
	src := core.NewBuffer(6, 3, 3)
	for y := 0; y < 3; y++ {
		for c := 0; c < 3; c++ {
			src.Set(0, y, c, 100)
			src.Set(1, y, c, 100)
		}
	}
	out := sharpen(t, src, DefaultSharpen(0.5))
	assert.GreaterOrEqual(t, out.At(0, 1, 0), uint8(100))
	assert.Equal(t, uint8(0), out.At(5, 1, 0))
}

func TestSharpenKeepsAlpha(t *testing.T) {
	src := noiseBuffer(10, 10, 4)
	out := sharpen(t, src, DefaultSharpen(1.0))
	for i := 3; i < len(src.Pix); i += 4 {
		require.Equal(t, src.Pix[i], out.Pix[i])
	}
}

func TestSharpenZeroSigmaIsCopy(t *testing.T) {
	src := noiseBuffer(5, 5, 3)
	out := sharpen(t, src, DefaultSharpen(0))
	assert.Equal(t, src.Pix, out.Pix)
	out.Pix[0]++
	assert.NotEqual(t, src.Pix[0], out.Pix[0])
}

func TestSharpenIsDeterministic(t *testing.T) {
	src := noiseBuffer(23, 17, 3)
	first := sharpen(t, src, DefaultSharpen(1.4))
	for i := 0; i < 3; i++ {
		assert.Equal(t, first.Pix, sharpen(t, src, DefaultSharpen(1.4)).Pix)
	}
}

func TestGaussianRadius(t *testing.T) {
	assert.Equal(t, 7, gaussianRadius(2.2))
	assert.Equal(t, 3, gaussianRadius(1.0))
	assert.Equal(t, 1, gaussianRadius(0.1))
}

func TestGaussianBlurKeepsFlatField(t *testing.T) {
	blurred, err := gaussianBlur(flatBuffer(7, 5, 4, 90), 1.8)
	require.NoError(t, err)
	require.Len(t, blurred, 7*5*4)
	for _, v := range blurred {
		assert.InDelta(t, 90.0, v, 1e-9)
	}
}

func TestModulate(t *testing.T) {
	grey := flatBuffer(2, 2, 3, 120)
	// Saturation has no effect on neutral pixels.
	assert.Equal(t, grey.Pix, modulate(t, grey, 1, 1.5).Pix)
	assert.Equal(t, uint8(132), modulate(t, grey, 1.1, 1).At(0, 0, 0))

	red := core.NewBuffer(1, 1, 4)
	copy(red.Pix, []uint8{200, 50, 50, 128})
	out := modulate(t, red, 1, 1.2)
	assert.Greater(t, out.At(0, 0, 0), uint8(200))
	assert.Less(t, out.At(0, 0, 1), uint8(50))
	assert.Equal(t, uint8(128), out.At(0, 0, 3))

	assert.Equal(t, uint8(255), modulate(t, flatBuffer(1, 1, 3, 250), 2, 1).At(0, 0, 2))
}

func TestModulateMatrix(t *testing.T) {
	m := modulateMatrix(4, 2, 0)
	// Zero saturation maps every colour channel to twice the luma.
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 2*0.2126, m[i*4+0], 1e-12)
		assert.InDelta(t, 2*0.7152, m[i*4+1], 1e-12)
		assert.InDelta(t, 2*0.0722, m[i*4+2], 1e-12)
		assert.Equal(t, 0.0, m[i*4+3])
	}
	assert.Equal(t, []float64{0, 0, 0, 1}, m[12:])
}

func TestChainAndRegistry(t *testing.T) {
	src := noiseBuffer(6, 6, 3)
	chain := Chain{Kernel(KernelPreSmooth), SharpenOp{Params: DefaultSharpen(1)}}
	assert.Equal(t, []string{"convolve:pre-smooth", "sharpen:1"}, chain.Names())

	want := sharpen(t, convolve(t, src, MustLookupKernel(KernelPreSmooth)), DefaultSharpen(1))
	got, err := chain.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, got.Pix)

	empty, err := Chain{}.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, empty.Pix)
	assert.NotSame(t, src, empty)

	for _, name := range KernelNames() {
		assert.True(t, IsValidOp(name), name)
	}
	out, err := Apply("vibrance", src)
	require.NoError(t, err)
	assert.Equal(t, src.Width, out.Width)

	_, err = Apply("missing", src)
	assert.Error(t, err)
	assert.Contains(t, OpNames(), "sharpen-medium")
}

func TestChainReportsFailingOp(t *testing.T) {
	bad := &core.Buffer{Width: 3, Height: 3, Channels: 3, Pix: make([]uint8, 4)}
	_, err := Chain{Kernel(KernelPreSmooth)}.Apply(bad)
	assert.ErrorContains(t, err, "convolve:pre-smooth")
}
