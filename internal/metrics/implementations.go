// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// RoundTripPSNR scales the processed image back to the source size with area
// interpolation and compares it with the source. Identical images report 100.
type RoundTripPSNR struct{}

func NewRoundTripPSNR() *RoundTripPSNR {
	return &RoundTripPSNR{}
}

func (p *RoundTripPSNR) Measure(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	gray1, err := toGray(original)
	if err != nil {
		return 0, err
	}
	defer gray1.Close()

	gray2, err := toGray(processed)
	if err != nil {
		return 0, err
	}
	defer gray2.Close()

	if gray2.Rows() != gray1.Rows() || gray2.Cols() != gray1.Cols() {
		back := gocv.NewMat()
		defer back.Close()
		if err := gocv.Resize(gray2, &back, image.Point{X: gray1.Cols(), Y: gray1.Rows()}, 0, 0, gocv.InterpolationArea); err != nil {
			return 0, fmt.Errorf("failed to resize for comparison: %w", err)
		}
		back.CopyTo(&gray2)
	}

	psnr := gocv.PSNR(gray1, gray2)
	if math.IsInf(psnr, 1) || psnr > 100 {
		return 100.0, nil
	}
	return psnr, nil
}

func (p *RoundTripPSNR) Description() string {
	return "Peak signal-to-noise ratio after scaling the result back to the source size"
}

func (p *RoundTripPSNR) HigherIsBetter() bool {
	return true
}

// Contrast reports the ratio of grey-level standard deviations, processed over original.
type Contrast struct{}

func NewContrast() *Contrast {
	return &Contrast{}
}

func (c *Contrast) Measure(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	origContrast, err := greyStdDev(original)
	if err != nil {
		return 0, err
	}
	procContrast, err := greyStdDev(processed)
	if err != nil {
		return 0, err
	}

	if origContrast == 0 {
		return 1.0, nil
	}
	return procContrast / origContrast, nil
}

func (c *Contrast) Description() string {
	return "Ratio of contrast preservation"
}

func (c *Contrast) HigherIsBetter() bool {
	return true
}

// Sharpness reports the ratio of Laplacian variances, processed over original.
type Sharpness struct{}

func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Measure(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	origSharpness, err := laplacianVariance(original)
	if err != nil {
		return 0, err
	}
	procSharpness, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}

	if origSharpness == 0 {
		return 1.0, nil
	}
	return procSharpness / origSharpness, nil
}

func (s *Sharpness) Description() string {
	return "Edge energy gain measured by the variance of the Laplacian"
}

func (s *Sharpness) HigherIsBetter() bool {
	return true
}

// toGray returns a new single-channel copy of input. The caller closes it.
func toGray(input gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	var err error
	switch input.Channels() {
	case 1:
		input.CopyTo(&gray)
	case 4:
		err = gocv.CvtColor(input, &gray, gocv.ColorBGRAToGray)
	default:
		err = gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
	}
	if err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	return gray, nil
}

func greyStdDev(input gocv.Mat) (float64, error) {
	gray, err := toGray(input)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	data := gray.ToBytes()
	if len(data) == 0 {
		return 0, fmt.Errorf("empty grayscale data")
	}
	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return stdDev(values), nil
}

func laplacianVariance(input gocv.Mat) (float64, error) {
	gray, err := toGray(input)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)
	if laplacian.Empty() {
		return 0, fmt.Errorf("laplacian failed")
	}

	values := make([]float64, 0, laplacian.Rows()*laplacian.Cols())
	for y := 0; y < laplacian.Rows(); y++ {
		for x := 0; x < laplacian.Cols(); x++ {
			values = append(values, laplacian.GetDoubleAt(y, x))
		}
	}
	sd := stdDev(values)
	return sd * sd, nil
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sumSquaredDiff := 0.0
	for _, v := range values {
		d := v - mean
		sumSquaredDiff += d * d
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}
