// Package convert moves pixel data between the representations used by
// the matte pipeline: packed bitmaps, float opacity maps, and 8-bit and
// 16-bit RGBA frames.
package convert

import (
	"errors"
	"fmt"

	"github.com/gogpu/matte/internal/frame"
)

// ErrChannels is returned when a color conversion receives a frame that
// is not 4-channel RGBA.
var ErrChannels = errors.New("convert: expected 4-channel frame")

// BitmapToFloat expands a packed 1-bit mask into a dense float map holding
// 0 or 1 per pixel. The source stride is honored; the output is packed.
func BitmapToFloat(b *frame.Bitmap) *frame.Frame[float32] {
	out := &frame.Frame[float32]{
		Width:    b.Width,
		Height:   b.Height,
		Channels: 1,
		Pix:      make([]float32, b.Width*b.Height),
	}

	for y := 0; y < b.Height; y++ {
		dst := out.Pix[y*b.Width : (y+1)*b.Width]
		for x := range dst {
			if b.At(x, y) {
				dst[x] = 1
			}
		}
	}

	return out
}

// DownsampledSize returns the dimensions of a frame downsampled by factor.
func DownsampledSize(width, height, factor int) (int, int) {
	if factor < 1 {
		factor = 1
	}
	return width / factor, height / factor
}

// Expand16 widens an 8-bit RGBA frame to 16 bits while downsampling by
// factor. Only source pixels whose coordinates are both multiples of factor
// are kept (no averaging); each kept sample is shifted left by 8 bits.
// All four channels are widened.
func Expand16(src *frame.Frame[uint8], factor int) (*frame.Frame[uint16], error) {
	if src.Channels != frame.RGBAChannels {
		return nil, fmt.Errorf("%w: got %d", ErrChannels, src.Channels)
	}
	if factor < 1 {
		factor = 1
	}

	w, h := DownsampledSize(src.Width, src.Height, factor)
	dst, err := frame.New[uint16](w, h, frame.RGBAChannels)
	if err != nil {
		return nil, fmt.Errorf("convert: downsample %dx%d by %d: %w", src.Width, src.Height, factor, err)
	}

	for y := 0; y < h; y++ {
		srow := src.Row(y * factor)
		drow := dst.Row(y)
		for x := 0; x < w; x++ {
			s := x * factor * frame.RGBAChannels
			d := x * frame.RGBAChannels
			drow[d+0] = uint16(srow[s+0]) << 8
			drow[d+1] = uint16(srow[s+1]) << 8
			drow[d+2] = uint16(srow[s+2]) << 8
			drow[d+3] = uint16(srow[s+3]) << 8
		}
	}

	return dst, nil
}

// Narrow8 quantizes a 16-bit frame back to 8 bits by dropping the low
// byte of every sample. There is no rounding.
func Narrow8(src *frame.Frame[uint16]) *frame.Frame[uint8] {
	dst := &frame.Frame[uint8]{
		Width:    src.Width,
		Height:   src.Height,
		Channels: src.Channels,
		Pix:      make([]uint8, src.Width*src.Height*src.Channels),
	}

	rowLen := src.Width * src.Channels
	for y := 0; y < src.Height; y++ {
		srow := src.Row(y)
		drow := dst.Pix[y*rowLen : (y+1)*rowLen]
		for i, v := range srow {
			drow[i] = uint8(v >> 8)
		}
	}

	return dst
}
