package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// Rec. 709 luma weights.
var luma = [3]float64{0.2126, 0.7152, 0.0722}

// Modulate scales saturation around luma, then multiplies by brightness.
// Alpha is copied through unchanged.
func Modulate(src *core.Buffer, brightness, saturation float64) (*core.Buffer, error) {
	dst := src.Clone()
	if src.Empty() || (brightness == 1 && saturation == 1) {
		return dst, nil
	}

	in, err := cvmat.Interleaved(src)
	if err != nil {
		return nil, fmt.Errorf("modulate: %w", err)
	}
	defer in.Close()

	samples := gocv.NewMat()
	defer samples.Close()
	in.ConvertTo(&samples, gocv.MatTypeCV64F)
	if samples.Empty() {
		return nil, fmt.Errorf("modulate: failed to convert to float")
	}

	ch := src.Channels
	tm, err := cvmat.Float64Matrix(ch, ch, modulateMatrix(ch, brightness, saturation))
	if err != nil {
		return nil, fmt.Errorf("modulate: %w", err)
	}
	defer tm.Close()

	mixed := gocv.NewMat()
	defer mixed.Close()
	if err := gocv.Transform(samples, &mixed, tm); err != nil {
		return nil, fmt.Errorf("modulate: %w", err)
	}
	values, err := cvmat.Float64s(mixed)
	if err != nil {
		return nil, fmt.Errorf("modulate: %w", err)
	}

	for i := 0; i < len(dst.Pix); i += ch {
		for c := 0; c < 3; c++ {
			dst.Pix[i+c] = core.ClampRound(values[i+c])
		}
	}
	return dst, nil
}

// modulateMatrix maps each pixel to brightness*(luma + saturation*(c-luma)) as a
// channels×channels colour transform. The alpha row, if any, is the identity.
func modulateMatrix(channels int, brightness, saturation float64) []float64 {
	m := make([]float64, channels*channels)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := (1 - saturation) * luma[j]
			if i == j {
				v += saturation
			}
			m[i*channels+j] = brightness * v
		}
	}
	if channels == 4 {
		m[15] = 1
	}
	return m
}
