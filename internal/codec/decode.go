// Package codec is the byte boundary of the pipeline: it turns uploaded bytes into a
// buffer and a finished buffer back into an encoded container.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"

	"github.com/deepteams/webp"
	"github.com/gen2brain/jpegn"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"progressive-upscaler/internal/core"
	"progressive-upscaler/internal/cvmat"
)

// FormatOpenCV is reported for inputs only OpenCV could read.
const FormatOpenCV = "opencv"

var jpegOptions = &jpegn.Options{
	ToRGBA:         true,
	UpsampleMethod: jpegn.CatmullRom,
	AutoRotate:     true,
}

// SupportedInputFormats lists the containers decoded natively; anything else is
// offered to OpenCV.
func SupportedInputFormats() []string {
	return []string{"jpeg", "png", "gif", "webp", "bmp", "tiff"}
}

// Decode reads an image and reports the detected format. All failures are
// invalid-input errors.
func Decode(data []byte) (*core.Buffer, string, error) {
	const op = "decode"
	if len(data) == 0 {
		return nil, "", core.Invalid(op, errors.New("no image data"))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return decodeOpenCV(data)
		}
		return nil, "", core.Invalid(op, fmt.Errorf("failed to read image dimensions: %w", err))
	}
	if err := checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, format, core.Invalid(op, err)
	}

	var img image.Image
	switch format {
	case "jpeg":
		img, err = jpegn.Decode(bytes.NewReader(data), jpegOptions)
	case "webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, format, core.Invalid(op, fmt.Errorf("failed to decode %s: %w", format, err))
	}

	buf := core.FromImage(img)
	if err := buf.Validate(); err != nil {
		return nil, format, core.Invalid(op, err)
	}
	return buf, format, nil
}

func decodeOpenCV(data []byte) (*core.Buffer, string, error) {
	const op = "decode"
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, "", core.Invalid(op, fmt.Errorf("unrecognized image format: %w", err))
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, "", core.Invalid(op, image.ErrFormat)
	}
	if err := checkDimensions(mat.Cols(), mat.Rows()); err != nil {
		return nil, FormatOpenCV, core.Invalid(op, err)
	}

	buf, err := cvmat.FromMat(mat)
	if err != nil {
		return nil, FormatOpenCV, core.Invalid(op, err)
	}
	return buf, FormatOpenCV, nil
}

func checkDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", w, h)
	}
	if w > core.MaxDimension || h > core.MaxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", w, h, core.MaxDimension)
	}
	return nil
}
