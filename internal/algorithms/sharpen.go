package algorithms

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// SharpenParams describes a Gaussian unsharp mask. Detail up to Threshold is scaled
// by Flat, detail beyond it by Jagged; the resulting delta is limited to
// [-MaxDarken, MaxBrighten].
type SharpenParams struct {
	Sigma       float64
	Flat        float64
	Jagged      float64
	Threshold   float64
	MaxBrighten float64
	MaxDarken   float64
}

// DefaultSharpen returns the standard response curve for the given sigma.
func DefaultSharpen(sigma float64) SharpenParams {
	return SharpenParams{
		Sigma:       sigma,
		Flat:        1.0,
		Jagged:      2.0,
		Threshold:   2.0,
		MaxBrighten: 10,
		MaxDarken:   20,
	}
}

// WithGain overrides the flat and jagged multipliers.
func (p SharpenParams) WithGain(flat, jagged float64) SharpenParams {
	p.Flat = flat
	p.Jagged = jagged
	return p
}

// Sharpen applies the unsharp mask to colour channels; alpha is copied through.
func Sharpen(src *core.Buffer, p SharpenParams) (*core.Buffer, error) {
	if src.Empty() || p.Sigma <= 0 {
		return src.Clone(), nil
	}

	blurred, err := gaussianBlur(src, p.Sigma)
	if err != nil {
		return nil, fmt.Errorf("sharpen sigma %g: %w", p.Sigma, err)
	}

	dst := src.Clone()
	ch := src.Channels
	cc := src.ColorChannels()
	for i := 0; i < len(src.Pix); i += ch {
		for c := 0; c < cc; c++ {
			v := float64(src.Pix[i+c])
			dst.Pix[i+c] = core.ClampRound(v + p.response(v-blurred[i+c]))
		}
	}
	return dst, nil
}

func (p SharpenParams) response(detail float64) float64 {
	mag := math.Abs(detail)
	var gain float64
	if mag <= p.Threshold {
		gain = p.Flat * mag
	} else {
		gain = p.Flat*p.Threshold + p.Jagged*(mag-p.Threshold)
	}
	if detail < 0 {
		gain = -gain
	}
	if gain > p.MaxBrighten {
		return p.MaxBrighten
	}
	if gain < -p.MaxDarken {
		return -p.MaxDarken
	}
	return gain
}

// gaussianBlur returns every channel of src blurred with a Gaussian of radius
// gaussianRadius(sigma), as unrounded floats in the buffer layout.
func gaussianBlur(src *core.Buffer, sigma float64) ([]float64, error) {
	in, err := cvmat.Interleaved(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	samples := gocv.NewMat()
	defer samples.Close()
	in.ConvertTo(&samples, gocv.MatTypeCV64F)
	if samples.Empty() {
		return nil, fmt.Errorf("failed to convert to float")
	}

	size := 2*gaussianRadius(sigma) + 1
	blurred := gocv.NewMat()
	defer blurred.Close()
	err = gocv.GaussianBlur(samples, &blurred, image.Point{X: size, Y: size}, sigma, sigma, gocv.BorderReplicate)
	if err != nil {
		return nil, err
	}
	return cvmat.Float64s(blurred)
}

// gaussianRadius is ceil(3*sigma), at least 1.
func gaussianRadius(sigma float64) int {
	return max(int(math.Ceil(3*sigma)), 1)
}
