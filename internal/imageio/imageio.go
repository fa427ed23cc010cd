// Package imageio reads and writes the files the matte command works
// with: encoded images (PNG, JPEG, GIF, BMP, TIFF, WebP) and raw frame
// dumps, optionally zstd-compressed.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/matte"
)

// DefaultJPEGQuality is used by SaveImage for .jpg output.
const DefaultJPEGQuality = 90

// ErrUnsupportedOutput is returned when the output extension has no encoder.
var ErrUnsupportedOutput = errors.New("imageio: unsupported output format")

// DecodeFile decodes an encoded image file of any registered format.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return img, nil
}

// EncodeFile writes img to path. The encoder is chosen by extension:
// .png, .jpg or .jpeg. JPEG output uses the given quality (1-100).
func EncodeFile(path string, img image.Image, jpegQuality int) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("%w: %q", ErrUnsupportedOutput, ext)
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("imageio: close %s: %w", path, cerr)
		}
	}()

	switch ext {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	return nil
}

// LoadImage reads a frame or background from path. Raw dumps need the
// caller's dimensions; encoded images carry their own and are returned
// as RGBA.
func LoadImage(path string, width, height int) (matte.Image, error) {
	if kind, _ := RawKind(path); kind != "" {
		return ReadRawImage(path, width, height)
	}
	img, err := DecodeFile(path)
	if err != nil {
		return matte.Image{}, err
	}
	return matte.FromImage(img), nil
}

// LoadMask reads a segmentation mask from path. Encoded images are
// thresholded on luminance.
func LoadMask(path string, width, height int, threshold uint8) (matte.Mask, error) {
	if kind, _ := RawKind(path); kind != "" {
		return ReadRawMask(path, width, height)
	}
	img, err := DecodeFile(path)
	if err != nil {
		return matte.Mask{}, err
	}
	return matte.MaskFromImage(img, threshold), nil
}

// SaveImage writes img as a raw dump or an encoded image, by extension.
func SaveImage(path string, img matte.Image) error {
	if kind, _ := RawKind(path); kind != "" {
		return WriteRawImage(path, img)
	}
	return EncodeFile(path, img.ToImage(), DefaultJPEGQuality)
}
