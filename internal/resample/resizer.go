package resample

import (
	"fmt"
	"image"
	"strings"

	"github.com/nfnt/resize"
	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// Backend names accepted by NewResizer.
const (
	BackendLanczos3 = "lanczos3"
	BackendLanczos4 = "lanczos4"
)

// Resizer produces a new buffer of the requested size. Implementations never modify src.
type Resizer interface {
	Resize(src *core.Buffer, width, height int) (*core.Buffer, error)
	Name() string
}

// NewResizer returns the backend registered under name. An empty name selects Lanczos3.
func NewResizer(name string) (Resizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendLanczos3:
		return Lanczos3{}, nil
	case BackendLanczos4:
		return Lanczos4{}, nil
	default:
		return nil, fmt.Errorf("unknown resampler %q (want %s or %s)", name, BackendLanczos3, BackendLanczos4)
	}
}

// Lanczos3 is the pure Go backend.
type Lanczos3 struct{}

func (Lanczos3) Name() string { return BackendLanczos3 }

func (Lanczos3) Resize(src *core.Buffer, width, height int) (*core.Buffer, error) {
	if err := checkResize(src, width, height); err != nil {
		return nil, err
	}
	var img image.Image = src.ToNRGBA()
	if !src.HasAlpha() {
		img = src.ToRGBA()
	}
	out := core.FromImage(resize.Resize(uint(width), uint(height), img, resize.Lanczos3))
	return matchChannels(out, src.Channels), nil
}

// Lanczos4 delegates to OpenCV.
type Lanczos4 struct{}

func (Lanczos4) Name() string { return BackendLanczos4 }

func (Lanczos4) Resize(src *core.Buffer, width, height int) (*core.Buffer, error) {
	if err := checkResize(src, width, height); err != nil {
		return nil, err
	}

	mat, err := cvmat.ToMat(src)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	scaled := gocv.NewMat()
	defer scaled.Close()
	if err := gocv.Resize(mat, &scaled, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLanczos4); err != nil {
		return nil, fmt.Errorf("lanczos4 resize failed: %w", err)
	}
	if scaled.Empty() {
		return nil, fmt.Errorf("lanczos4 resize produced an empty matrix")
	}

	out, err := cvmat.FromMat(scaled)
	if err != nil {
		return nil, err
	}
	return matchChannels(out, src.Channels), nil
}

func checkResize(src *core.Buffer, width, height int) error {
	if err := src.Validate(); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid target dimensions: %dx%d", width, height)
	}
	if width > core.MaxDimension || height > core.MaxDimension {
		return fmt.Errorf("target dimensions too large: %dx%d (max: %d)", width, height, core.MaxDimension)
	}
	return nil
}

// matchChannels keeps the channel count stable across a step. Resampling can make a
// nearly opaque image fully opaque, and the converters would then drop alpha.
func matchChannels(b *core.Buffer, channels int) *core.Buffer {
	if b.Channels == channels {
		return b
	}
	out := core.NewBuffer(b.Width, b.Height, channels)
	n := b.Width * b.Height
	for i := 0; i < n; i++ {
		src := b.Pix[i*b.Channels:]
		dst := out.Pix[i*channels:]
		dst[0], dst[1], dst[2] = src[0], src[1], src[2]
		if channels == 4 {
			dst[3] = 255
		}
	}
	return out
}
