package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progressive-upscaler/internal/core"
)

func noiseBuffer(w, h, ch int) *core.Buffer {
	b := core.NewBuffer(w, h, ch)
	seed := uint32(2463534242)
	for i := range b.Pix {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		b.Pix[i] = uint8(seed)
	}
	return b
}

func flatBuffer(w, h, ch int, v uint8) *core.Buffer {
	b := core.NewBuffer(w, h, ch)
	for i := range b.Pix {
		b.Pix[i] = v
	}
	return b
}

func convolve(t *testing.T, src *core.Buffer, k core.Kernel) *core.Buffer {
	t.Helper()
	out, err := Convolve(src, k)
	require.NoError(t, err)
	return out
}

func TestConvolveIdentityIsBitIdentical(t *testing.T) {
	src := noiseBuffer(17, 11, 4)
	for _, size := range []int{3, 5} {
		out := convolve(t, src, core.IdentityKernel(size))
		assert.Equal(t, src.Pix, out.Pix, "identity %dx%d", size, size)
	}
}

func TestConvolveDoesNotMutateInput(t *testing.T) {
	src := noiseBuffer(8, 8, 3)
	before := src.Clone()
	convolve(t, src, MustLookupKernel(KernelSharpenGeneral))
	assert.Equal(t, before.Pix, src.Pix)
}

func TestConvolveFlatImageIsInvariantUnderUnitKernels(t *testing.T) {
	// Every library kernel sums to at least 1 and is divided by that sum when it is
	// greater, so a flat field survives unchanged whenever the sum is exactly 1 or the
	// kernel is normalised.
	src := flatBuffer(9, 7, 3, 100)
	for _, name := range []string{KernelPreSmooth, KernelStepSmooth, KernelFinalAdaptive} {
		out := convolve(t, src, MustLookupKernel(name))
		for i, v := range out.Pix {
			require.Equal(t, uint8(100), v, "%s at %d", name, i)
		}
	}
}

func TestConvolveHorizontalBoxAtEdges(t *testing.T) {
	src := core.NewBuffer(3, 1, 3)
	for x, v := range []uint8{0, 90, 180} {
		for c := 0; c < 3; c++ {
			src.Pix[x*3+c] = v
		}
	}
	box := core.MustKernel("box", 3, []float64{0, 0, 0, 1, 1, 1, 0, 0, 0})
	require.Equal(t, 3.0, box.Scale())

	out := convolve(t, src, box)
	// Left edge reads (0,0,90), right edge reads (90,180,180).
	assert.Equal(t, uint8(30), out.At(0, 0, 0))
	assert.Equal(t, uint8(90), out.At(1, 0, 1))
	assert.Equal(t, uint8(150), out.At(2, 0, 2))
}

func TestConvolveClampsOutput(t *testing.T) {
	src := core.NewBuffer(3, 3, 3)
	src.Set(1, 1, 0, 200)
	out := convolve(t, src, MustLookupKernel(KernelSharpenGeneral))
	// 5*200 / 1 saturates, neighbours go negative and floor at zero.
	assert.Equal(t, uint8(255), out.At(1, 1, 0))
	assert.Equal(t, uint8(0), out.At(0, 0, 0))
}

func TestConvolveFiveByFiveReadsNearestEdge(t *testing.T) {
	src := core.NewBuffer(3, 1, 3)
	for x, v := range []uint8{10, 20, 60} {
		for c := 0; c < 3; c++ {
			src.Pix[x*3+c] = v
		}
	}
	w := make([]float64, 25)
	w[2*5+0] = 1 // two columns to the left
	out := convolve(t, src, core.MustKernel("far-left", 5, w))
	assert.Equal(t, uint8(10), out.At(0, 0, 0))
	assert.Equal(t, uint8(10), out.At(1, 0, 0))
	assert.Equal(t, uint8(10), out.At(2, 0, 0))

	w = make([]float64, 25)
	w[0*5+4] = 1 // two rows up, two columns right
	out = convolve(t, src, core.MustKernel("up-right", 5, w))
	assert.Equal(t, uint8(60), out.At(0, 0, 1))
	assert.Equal(t, uint8(60), out.At(2, 0, 1))
}

func TestConvolveRejectsInconsistentBuffer(t *testing.T) {
	_, err := Convolve(&core.Buffer{Width: 2, Height: 2, Channels: 3, Pix: make([]uint8, 5)}, core.IdentityKernel(3))
	assert.Error(t, err)
}

func TestConvolveIncludesAlpha(t *testing.T) {
	src := flatBuffer(4, 4, 4, 255)
	src.Set(0, 0, 3, 0)
	out := convolve(t, src, MustLookupKernel(KernelPreSmooth))
	assert.Less(t, out.At(1, 1, 3), uint8(255))
}

func TestConvolveEmpty(t *testing.T) {
	out := convolve(t, core.NewBuffer(0, 0, 3), core.IdentityKernel(3))
	assert.True(t, out.Empty())
}

func TestKernelLibrary(t *testing.T) {
	names := KernelNames()
	assert.Len(t, names, 8)
	for _, name := range names {
		k, ok := LookupKernel(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.Name())
		assert.GreaterOrEqual(t, k.Scale(), 1.0, name)
	}
	_, ok := LookupKernel("nope")
	assert.False(t, ok)
	assert.Panics(t, func() { MustLookupKernel("nope") })

	assert.Equal(t, 5, MustLookupKernel(KernelSharpenOutOfFocus).Size())
	assert.Equal(t, 5, MustLookupKernel(KernelPostDetail).Size())
	assert.InDelta(t, 1.9, MustLookupKernel(KernelStepSmooth).Scale(), 1e-12)
}
