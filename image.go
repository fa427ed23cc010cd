package matte

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/matte/internal/frame"
)

// ErrInvalidFormat is returned for any malformed input: unknown pixel
// format, non-positive dimensions, a byte count that does not match the
// stated dimensions, a mask stride shorter than its row, or an image too
// small for the configured blur kernels. The returned error wraps
// ErrInvalidFormat and describes the specific problem.
var ErrInvalidFormat = errors.New("matte: invalid input format")

// PixelFormat identifies the byte layout of an Image.
type PixelFormat int

const (
	// FormatRGB is 3 bytes per pixel: R, G, B.
	FormatRGB PixelFormat = iota + 1

	// FormatRGBA is 4 bytes per pixel: R, G, B and a fourth byte that the
	// effects pass through unchanged.
	FormatRGBA
)

// String returns the conventional name of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// BytesPerPixel returns the pixel size, or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB:
		return 3
	case FormatRGBA:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether f is a known format.
func (f PixelFormat) IsValid() bool {
	return f.BytesPerPixel() != 0
}

// ParseFormat parses "RGB" or "RGBA".
func ParseFormat(s string) (PixelFormat, error) {
	switch s {
	case "RGB":
		return FormatRGB, nil
	case "RGBA":
		return FormatRGBA, nil
	default:
		return 0, fmt.Errorf("%w: unknown pixel format %q", ErrInvalidFormat, s)
	}
}

// Image is a packed, row-major color frame.
type Image struct {
	Format PixelFormat
	Width  int
	Height int
	Pix    []byte
}

// Validate reports whether the image is well formed.
// The pixel data must be exactly Width*Height*BytesPerPixel bytes.
func (img Image) Validate() error {
	if !img.Format.IsValid() {
		return fmt.Errorf("%w: unknown pixel format %v", ErrInvalidFormat, img.Format)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: image %dx%d: %w", ErrInvalidFormat, img.Width, img.Height, frame.ErrInvalidDimensions)
	}
	if want := img.Width * img.Height * img.Format.BytesPerPixel(); len(img.Pix) != want {
		return fmt.Errorf("%w: %v image %dx%d has %d bytes, want %d",
			ErrInvalidFormat, img.Format, img.Width, img.Height, len(img.Pix), want)
	}
	return nil
}

// FromImage converts any image to an RGBA Image with non-premultiplied
// color. The fourth byte carries the source alpha.
func FromImage(src image.Image) Image {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return Image{
		Format: FormatRGBA,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    dst.Pix,
	}
}

// ToImage returns the image as an *image.NRGBA.
// RGB images are given an opaque alpha channel.
func (img Image) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	switch img.Format {
	case FormatRGBA:
		copy(out.Pix, img.Pix)
	case FormatRGB:
		for i, j := 0, 0; i+2 < len(img.Pix) && j+3 < len(out.Pix); i, j = i+3, j+4 {
			out.Pix[j+0] = img.Pix[i+0]
			out.Pix[j+1] = img.Pix[i+1]
			out.Pix[j+2] = img.Pix[i+2]
			out.Pix[j+3] = 0xFF
		}
	}
	return out
}

// Mask is a packed 1-bit-per-pixel segmentation mask.
//
// Bit x of row y is stored in byte Stride*y + x/8 at bit position x%8,
// least significant bit first. A set bit marks foreground. Stride is in
// bytes and may exceed (Width+7)/8 when rows are padded.
type Mask struct {
	Width  int
	Height int
	Stride int
	Bits   []byte
}

// NewMask allocates a cleared mask with the minimum stride.
func NewMask(width, height int) Mask {
	stride := frame.MinBitmapStride(width)
	return Mask{
		Width:  width,
		Height: height,
		Stride: stride,
		Bits:   make([]byte, stride*height),
	}
}

// Validate reports whether the mask layout is consistent.
func (m Mask) Validate() error {
	if _, err := frame.NewBitmap(m.Bits, m.Width, m.Height, m.Stride); err != nil {
		return fmt.Errorf("%w: mask %dx%d stride %d (%d bytes): %w",
			ErrInvalidFormat, m.Width, m.Height, m.Stride, len(m.Bits), err)
	}
	return nil
}

// At reports whether pixel (x, y) is foreground.
func (m Mask) At(x, y int) bool {
	return m.bitmap().At(x, y)
}

// Set marks pixel (x, y) as foreground or background.
func (m Mask) Set(x, y int, fg bool) {
	m.bitmap().Set(x, y, fg)
}

// bitmap views the mask bits without validating or copying them.
func (m Mask) bitmap() *frame.Bitmap {
	return &frame.Bitmap{Width: m.Width, Height: m.Height, Stride: m.Stride, Bits: m.Bits}
}

// MaskFromImage builds a mask from a grayscale rendering of src: pixels
// whose luminance is at least threshold become foreground. Transparent
// pixels render as black.
func MaskFromImage(src image.Image, threshold uint8) Mask {
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)

	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+b.Dx()]
		for x, v := range row {
			if v >= threshold {
				m.Set(x, y, true)
			}
		}
	}
	return m
}
