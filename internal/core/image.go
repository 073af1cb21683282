// Core pixel buffer shared by every pipeline stage
package core

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// MaxDimension bounds either side of a buffer to keep per-request memory predictable.
const MaxDimension = 16384

// Buffer is an interleaved 8-bit RGB or RGBA raster. A Buffer is owned by a single
// pipeline invocation and is never shared between requests.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height, channels int) *Buffer {
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// NewBufferLike allocates a zeroed buffer with the same geometry as b.
func NewBufferLike(b *Buffer) *Buffer {
	return NewBuffer(b.Width, b.Height, b.Channels)
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Pix:      make([]uint8, len(b.Pix)),
	}
	copy(out.Pix, b.Pix)
	return out
}

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0 || len(b.Pix) == 0
}

// HasAlpha reports whether the last channel is alpha.
func (b *Buffer) HasAlpha() bool {
	return b.Channels == 4
}

// ColorChannels is the number of non-alpha channels.
func (b *Buffer) ColorChannels() int {
	if b.HasAlpha() {
		return 3
	}
	return b.Channels
}

// Index returns the offset of channel c of pixel (x, y) in Pix.
func (b *Buffer) Index(x, y, c int) int {
	return (y*b.Width+x)*b.Channels + c
}

// At returns channel c of pixel (x, y).
func (b *Buffer) At(x, y, c int) uint8 {
	return b.Pix[b.Index(x, y, c)]
}

// Set stores v, rounded and clamped, into channel c of pixel (x, y).
func (b *Buffer) Set(x, y, c int, v float64) {
	b.Pix[b.Index(x, y, c)] = ClampRound(v)
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// ClampRound is the single rounding rule used for every sample write:
// round half away from zero, then clamp to [0, 255].
func ClampRound(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	r := math.Round(v)
	if r >= 255 {
		return 255
	}
	return uint8(r)
}

// Validate checks the buffer geometry.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("buffer is nil")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", b.Width, b.Height)
	}
	if b.Channels != 3 && b.Channels != 4 {
		return fmt.Errorf("unsupported number of channels: %d", b.Channels)
	}
	if b.Width > MaxDimension || b.Height > MaxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", b.Width, b.Height, MaxDimension)
	}
	if want := b.Width * b.Height * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("pixel data length %d does not match %dx%dx%d", len(b.Pix), b.Width, b.Height, b.Channels)
	}
	return nil
}

// FromImage converts any decoded image into a Buffer. Grey sources expand to RGB;
// an alpha channel is kept only when the source has at least one non-opaque pixel.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	w, h := bounds.Dx(), bounds.Dy()
	channels := 3
	if !nrgba.Opaque() {
		channels = 4
	}

	out := NewBuffer(w, h, channels)
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			src := row[x*4 : x*4+4]
			dst := out.Pix[(y*w+x)*channels:]
			dst[0], dst[1], dst[2] = src[0], src[1], src[2]
			if channels == 4 {
				dst[3] = src[3]
			}
		}
	}
	return out
}

// ToNRGBA converts the buffer to a non-premultiplied image.
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := b.Index(x, y, 0)
			a := uint8(255)
			if b.HasAlpha() {
				a = b.Pix[i+3]
			}
			img.SetNRGBA(x, y, color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: a})
		}
	}
	return img
}

// ToRGBA converts the buffer to a premultiplied image, which is what most resamplers expect.
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	draw.Draw(img, img.Bounds(), b.ToNRGBA(), image.Point{}, draw.Src)
	return img
}
