// Package cvmat converts between core buffers and OpenCV matrices.
package cvmat

import (
	"fmt"

	"gocv.io/x/gocv"

	"progressive-upscaler/internal/core"
)

// ToMat returns a BGR or BGRA 8-bit matrix holding a copy of buf. The caller closes it.
func ToMat(buf *core.Buffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid buffer: %w", err)
	}

	mt, code := gocv.MatTypeCV8UC3, gocv.ColorRGBToBGR
	if buf.HasAlpha() {
		mt, code = gocv.MatTypeCV8UC4, gocv.ColorRGBAToBGRA
	}

	rgb, err := gocv.NewMatFromBytes(buf.Height, buf.Width, mt, buf.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create matrix: %w", err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	if err := gocv.CvtColor(rgb, &bgr, code); err != nil {
		bgr.Close()
		return gocv.NewMat(), fmt.Errorf("failed to convert color: %w", err)
	}
	return bgr, nil
}

// FromMat copies a grey, BGR or BGRA matrix of 8-bit or 16-bit depth into a new
// buffer. Alpha is kept only when at least one pixel is not fully opaque.
func FromMat(mat gocv.Mat) (*core.Buffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty matrix")
	}

	src := mat
	channels := mat.Channels()
	if channels < 1 || channels > 4 || channels == 2 {
		return nil, fmt.Errorf("unsupported number of channels: %d", channels)
	}

	switch mat.ElemSize() / channels {
	case 1:
	case 2:
		// 16-bit sources are scaled down to 8 bits.
		narrowed := gocv.NewMat()
		defer narrowed.Close()
		mat.ConvertToWithParams(&narrowed, gocv.MatTypeCV8U, 1.0/257, 0)
		if narrowed.Empty() {
			return nil, fmt.Errorf("failed to convert 16-bit matrix")
		}
		src = narrowed
	default:
		return nil, fmt.Errorf("unsupported matrix depth: %d bytes per sample", mat.ElemSize()/channels)
	}

	w, h := src.Cols(), src.Rows()
	data := src.ToBytes()
	if len(data) != w*h*channels {
		return nil, fmt.Errorf("matrix data length %d does not match %dx%dx%d", len(data), w, h, channels)
	}

	opaque := true
	if channels == 4 {
		for i := 3; i < len(data); i += 4 {
			if data[i] != 255 {
				opaque = false
				break
			}
		}
	}

	outCh := 3
	if channels == 4 && !opaque {
		outCh = 4
	}
	out := core.NewBuffer(w, h, outCh)

	for i, o := 0, 0; i < len(data); i, o = i+channels, o+outCh {
		switch channels {
		case 1:
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = data[i], data[i], data[i]
		default:
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = data[i+2], data[i+1], data[i]
			if outCh == 4 {
				out.Pix[o+3] = data[i+3]
			}
		}
	}
	return out, nil
}

// Interleaved returns an 8-bit matrix over buf in its own channel order, without
// colour conversion. Per-channel filters use it directly. The caller closes it.
func Interleaved(buf *core.Buffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid buffer: %w", err)
	}
	mt := gocv.MatTypeCV8UC3
	if buf.HasAlpha() {
		mt = gocv.MatTypeCV8UC4
	}
	mat, err := gocv.NewMatFromBytes(buf.Height, buf.Width, mt, buf.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create matrix: %w", err)
	}
	return mat, nil
}

// Float64s copies the samples of a continuous 64-bit float matrix, interleaved.
func Float64s(mat gocv.Mat) ([]float64, error) {
	data, err := mat.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix data: %w", err)
	}
	want := mat.Rows() * mat.Cols() * mat.Channels()
	if len(data) != want {
		return nil, fmt.Errorf("matrix data length %d, want %d", len(data), want)
	}
	out := make([]float64, len(data))
	copy(out, data)
	return out, nil
}

// Float64Matrix builds a rows×cols single-channel float matrix from row-major values.
func Float64Matrix(rows, cols int, values []float64) (gocv.Mat, error) {
	if len(values) != rows*cols {
		return gocv.NewMat(), fmt.Errorf("expected %d values, got %d", rows*cols, len(values))
	}
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			mat.SetDoubleAt(r, c, values[r*cols+c])
		}
	}
	return mat, nil
}
