package filter

import (
	"testing"

	"github.com/gogpu/matte/internal/frame"
)

// Test helper functions shared across filter tests.

// newRGBA16 creates a w x h 16-bit frame with every pixel set to rgba.
func newRGBA16(t *testing.T, w, h int, rgba [4]uint16) *frame.Frame[uint16] {
	t.Helper()
	f, err := frame.New[uint16](w, h, frame.RGBAChannels)
	if err != nil {
		t.Fatalf("frame.New() error = %v", err)
	}
	for i := 0; i < len(f.Pix); i += 4 {
		copy(f.Pix[i:i+4], rgba[:])
	}
	return f
}

// newMask creates a w x h float map filled with v.
func newMask(t *testing.T, w, h int, v float32) *frame.Frame[float32] {
	t.Helper()
	m, err := frame.New[float32](w, h, 1)
	if err != nil {
		t.Fatalf("frame.New() error = %v", err)
	}
	for i := range m.Pix {
		m.Pix[i] = v
	}
	return m
}

// cloneFrame returns a deep copy of f.
func cloneFrame[T frame.Sample](f *frame.Frame[T]) *frame.Frame[T] {
	c := *f
	c.Pix = append([]T(nil), f.Pix...)
	return &c
}

// roll16 returns a copy of f shifted by (dx, dy) with wraparound.
func roll16(f *frame.Frame[uint16], dx, dy int) *frame.Frame[uint16] {
	out := cloneFrame(f)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			src := f.Offset(x, y)
			dst := out.Offset(modulo(x+dx, f.Width), modulo(y+dy, f.Height))
			copy(out.Pix[dst:dst+4], f.Pix[src:src+4])
		}
	}
	return out
}

// absf32 returns the absolute value of a float32.
func absf32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
