package codec

import (
	"bytes"
	"fmt"

	"github.com/deepteams/webp"
	"github.com/samber/lo"
	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// Base quality per tier before the fixed uplift.
var tierQuality = map[core.QualityTier]int{
	core.QualityHigh:   90,
	core.QualityMedium: 80,
	core.QualityLow:    70,
}

const (
	qualityUplift = 5

	// Above this quality WebP output switches to lossless.
	webpLosslessAbove = 80

	// cv::IMWRITE_JPEG_SAMPLING_FACTOR and its 4:4:4 value.
	jpegSamplingFactor    = 7
	jpegSamplingFactor444 = 0x111111
)

// QualityFor maps a tier to the encoder quality, 1..100.
func QualityFor(tier core.QualityTier) int {
	base, ok := tierQuality[tier]
	if !ok {
		base = tierQuality[core.QualityHigh]
	}
	return lo.Clamp(base+qualityUplift, 1, 100)
}

// Encoder writes buffers to the supported output containers.
type Encoder struct {
	PNGCompression int
	WebPMethod     int
}

// DefaultEncoder favours size over speed.
func DefaultEncoder() *Encoder {
	return &Encoder{PNGCompression: 9, WebPMethod: 4}
}

// Encode uses the default encoder with the quality of tier.
func Encode(buf *core.Buffer, format core.Format, tier core.QualityTier) ([]byte, error) {
	return DefaultEncoder().Encode(buf, format, QualityFor(tier))
}

// Encode serialises buf. JPEG output drops alpha. Failures are processing errors.
func (e *Encoder) Encode(buf *core.Buffer, format core.Format, quality int) ([]byte, error) {
	const op = "encode"
	if err := buf.Validate(); err != nil {
		return nil, core.Failed(op, err)
	}

	var (
		out []byte
		err error
	)
	switch format {
	case core.FormatPNG:
		out, err = e.encodeOpenCV(buf, gocv.PNGFileExt, []int{int(gocv.IMWritePngCompression), e.PNGCompression})
	case core.FormatWebP:
		out, err = e.encodeWebP(buf, quality)
	default:
		params := []int{
			int(gocv.IMWriteJpegQuality), quality,
			int(gocv.IMWriteJpegOptimize), 1,
			jpegSamplingFactor, jpegSamplingFactor444,
		}
		out, err = e.encodeOpenCV(withoutAlpha(buf), gocv.JPEGFileExt, params)
	}
	if err != nil {
		return nil, core.Failed(op, fmt.Errorf("%s: %w", format, err))
	}
	return out, nil
}

func (e *Encoder) encodeOpenCV(buf *core.Buffer, ext gocv.FileExt, params []int) ([]byte, error) {
	mat, err := cvmat.ToMat(buf)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	native, err := gocv.IMEncodeWithParams(ext, mat, params)
	if err != nil {
		return nil, fmt.Errorf("opencv encode failed: %w", err)
	}
	defer native.Close()

	encoded := native.GetBytes()
	if len(encoded) == 0 {
		return nil, fmt.Errorf("opencv encode produced no data")
	}
	out := make([]byte, len(encoded))
	copy(out, encoded)
	return out, nil
}

func (e *Encoder) encodeWebP(buf *core.Buffer, quality int) ([]byte, error) {
	var opts *webp.EncoderOptions
	if quality > webpLosslessAbove {
		opts = webp.DefaultOptions()
		opts.Lossless = true
		opts.Quality = float32(quality)
	} else {
		opts = webp.OptionsForPreset(webp.PresetPhoto, float32(quality))
	}
	opts.Method = e.WebPMethod

	var b bytes.Buffer
	if err := webp.Encode(&b, buf.ToNRGBA(), opts); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func withoutAlpha(buf *core.Buffer) *core.Buffer {
	if !buf.HasAlpha() {
		return buf
	}
	out := core.NewBuffer(buf.Width, buf.Height, 3)
	n := buf.Width * buf.Height
	for i := 0; i < n; i++ {
		copy(out.Pix[i*3:i*3+3], buf.Pix[i*4:i*4+3])
	}
	return out
}
