package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/gogpu/matte"
)

// Raw dump extensions. Any of them may carry a trailing ".zst".
const (
	ExtRGB  = ".rgb"
	ExtRGBA = ".rgba"
	ExtMask = ".mask"
	ExtZstd = ".zst"
)

var (
	// ErrNotRaw is returned when a path does not name a raw dump.
	ErrNotRaw = errors.New("imageio: not a raw dump")

	// ErrFormatMismatch is returned when a raw extension does not match
	// the pixel format being written.
	ErrFormatMismatch = errors.New("imageio: pixel format does not match extension")
)

// RawKind returns the raw dump extension of path (".rgb", ".rgba" or
// ".mask") and whether the dump is zstd compressed. An empty kind means
// path is not a raw dump.
func RawKind(path string) (kind string, compressed bool) {
	p := strings.ToLower(path)
	if strings.HasSuffix(p, ExtZstd) {
		compressed = true
		p = strings.TrimSuffix(p, ExtZstd)
	}
	switch ext := filepath.Ext(p); ext {
	case ExtRGB, ExtRGBA, ExtMask:
		return ext, compressed
	}
	return "", false
}

// ReadRawImage reads a packed RGB or RGBA dump of the given dimensions.
// The pixel format follows the extension.
func ReadRawImage(path string, width, height int) (matte.Image, error) {
	var format matte.PixelFormat
	switch kind, _ := RawKind(path); kind {
	case ExtRGB:
		format = matte.FormatRGB
	case ExtRGBA:
		format = matte.FormatRGBA
	default:
		return matte.Image{}, fmt.Errorf("%w: %s", ErrNotRaw, path)
	}

	data, err := readRaw(path)
	if err != nil {
		return matte.Image{}, err
	}

	img := matte.Image{Format: format, Width: width, Height: height, Pix: data}
	if err := img.Validate(); err != nil {
		return matte.Image{}, fmt.Errorf("imageio: %s: %w", path, err)
	}
	return img, nil
}

// WriteRawImage writes the packed pixel bytes of img to path. The
// extension must match the image format.
func WriteRawImage(path string, img matte.Image) error {
	kind, _ := RawKind(path)
	switch {
	case kind != ExtRGB && kind != ExtRGBA:
		return fmt.Errorf("%w: %s", ErrNotRaw, path)
	case (kind == ExtRGB) != (img.Format == matte.FormatRGB):
		return fmt.Errorf("%w: cannot write %v pixels to %s", ErrFormatMismatch, img.Format, path)
	}
	return writeRaw(path, img.Pix)
}

// ReadRawMask reads a packed 1-bit mask dump with the minimum stride.
func ReadRawMask(path string, width, height int) (matte.Mask, error) {
	if kind, _ := RawKind(path); kind != ExtMask {
		return matte.Mask{}, fmt.Errorf("%w: %s", ErrNotRaw, path)
	}

	data, err := readRaw(path)
	if err != nil {
		return matte.Mask{}, err
	}

	m := matte.NewMask(width, height)
	m.Bits = data
	if err := m.Validate(); err != nil {
		return matte.Mask{}, fmt.Errorf("imageio: %s: %w", path, err)
	}
	return m, nil
}

func readRaw(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var r io.Reader = f
	if _, compressed := RawKind(path); compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("imageio: zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: read %s: %w", path, err)
	}
	return data, nil
}

func writeRaw(path string, data []byte) error {
	if _, compressed := RawKind(path); compressed {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf, zstd.WithEncoderConcurrency(runtime.NumCPU()))
		if err != nil {
			return fmt.Errorf("imageio: zstd %s: %w", path, err)
		}
		if _, err := enc.Write(data); err != nil {
			_ = enc.Close()
			return fmt.Errorf("imageio: zstd %s: %w", path, err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("imageio: zstd %s: %w", path, err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // output files are world-readable
		return fmt.Errorf("imageio: write %s: %w", path, err)
	}
	return nil
}
