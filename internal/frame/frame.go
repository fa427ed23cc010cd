// Package frame provides the rectangular sample buffers shared by the
// matte pipeline stages.
//
// A Frame owns a flat slice of scalar samples with explicit dimensions and
// an optional row stride for padded sources. Color frames carry 4 interleaved
// channels per pixel (R, G, B and a filler/alpha channel); scalar maps such
// as opacity masks carry 1.
package frame

import "errors"

// Common errors for frame construction.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("frame: invalid dimensions")

	// ErrInvalidChannels is returned when the channel count is non-positive.
	ErrInvalidChannels = errors.New("frame: invalid channel count")

	// ErrInvalidStride is returned when stride is less than the row length.
	ErrInvalidStride = errors.New("frame: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("frame: data buffer too small")
)

// Sample is the set of scalar types a Frame can hold.
type Sample interface {
	~uint8 | ~uint16 | ~float32
}

// RGBAChannels is the number of interleaved samples per color pixel.
const RGBAChannels = 4

// Frame is a width x height buffer of samples.
//
// Stride is the distance in samples between row starts. Zero means rows are
// packed (Width * Channels). Frames are mutated in place by the blur engines
// and are never resized.
type Frame[T Sample] struct {
	Width    int
	Height   int
	Channels int
	Stride   int
	Pix      []T
}

// New allocates a zeroed, packed frame.
func New[T Sample](width, height, channels int) (*Frame[T], error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	return &Frame[T]{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]T, width*height*channels),
	}, nil
}

// FromRaw wraps existing samples without copying.
// A stride of 0 means packed rows; otherwise it must be at least
// width*channels. The data must cover stride*height samples.
func FromRaw[T Sample](pix []T, width, height, channels, stride int) (*Frame[T], error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	rowLen := width * channels
	if stride != 0 && stride < rowLen {
		return nil, ErrInvalidStride
	}
	if stride == rowLen {
		stride = 0
	}
	f := &Frame[T]{
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   stride,
	}
	if len(pix) < f.RowStride()*height {
		return nil, ErrDataTooSmall
	}
	f.Pix = pix[:f.RowStride()*height]
	return f, nil
}

// RowStride returns the distance in samples between row starts.
func (f *Frame[T]) RowStride() int {
	if f.Stride != 0 {
		return f.Stride
	}
	return f.Width * f.Channels
}

// Row returns the samples of row y, excluding any padding.
func (f *Frame[T]) Row(y int) []T {
	off := y * f.RowStride()
	return f.Pix[off : off+f.Width*f.Channels]
}

// Offset returns the index of the first sample of pixel (x, y).
func (f *Frame[T]) Offset(x, y int) int {
	return y*f.RowStride() + x*f.Channels
}
