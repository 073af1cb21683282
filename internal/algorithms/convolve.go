// Convolution engine with clamp-to-edge borders
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// Convolve applies k to every channel of src and returns a new buffer of the same
// geometry. Taps that fall outside the image read the nearest edge pixel. Each sum is
// divided by the kernel scale, then rounded and clamped on write.
func Convolve(src *core.Buffer, k core.Kernel) (*core.Buffer, error) {
	dst := core.NewBufferLike(src)
	if src.Empty() {
		return dst, nil
	}

	in, err := cvmat.Interleaved(src)
	if err != nil {
		return nil, fmt.Errorf("convolve %s: %w", k.Name(), err)
	}
	defer in.Close()

	kernel, err := cvmat.Float64Matrix(k.Size(), k.Size(), k.Weights())
	if err != nil {
		return nil, fmt.Errorf("convolve %s: %w", k.Name(), err)
	}
	defer kernel.Close()

	sums := gocv.NewMat()
	defer sums.Close()
	err = gocv.Filter2D(in, &sums, gocv.MatTypeCV64F, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReplicate)
	if err != nil {
		return nil, fmt.Errorf("convolve %s: %w", k.Name(), err)
	}

	values, err := cvmat.Float64s(sums)
	if err != nil {
		return nil, fmt.Errorf("convolve %s: %w", k.Name(), err)
	}
	if len(values) != len(dst.Pix) {
		return nil, fmt.Errorf("convolve %s: got %d samples, want %d", k.Name(), len(values), len(dst.Pix))
	}

	scale := k.Scale()
	for i, v := range values {
		dst.Pix[i] = core.ClampRound(v / scale)
	}
	return dst, nil
}
