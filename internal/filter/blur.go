package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/matte/internal/frame"
	"github.com/gogpu/matte/internal/parallel"
)

// Errors returned by the blur engines.
var (
	// ErrKernelTooLarge is returned when a kernel window is wider than the
	// buffer extent it slides along.
	ErrKernelTooLarge = errors.New("filter: kernel larger than buffer")

	// ErrChannels is returned when a frame has the wrong channel count.
	ErrChannels = errors.New("filter: unexpected channel count")
)

// colorChannels is the number of blurred channels in a 4-channel pixel.
// The fourth channel is left untouched.
const colorChannels = 3

// Scratch lines, shared by every blur in the process.
var (
	lines16 = frame.NewPool[uint16](32)
	lines32 = frame.NewPool[float32](32)
)

// BoxBlur applies an approximate Gaussian blur to 16-bit RGBA frames by
// iterating a separable box filter with wraparound edges.
type BoxBlur struct {
	// Kernel is the box window used on both axes.
	Kernel Kernel

	// Iterations is the number of horizontal+vertical pass pairs.
	Iterations int

	// Pool spreads rows and columns across goroutines. Nil runs serially.
	Pool *parallel.Pool
}

// NewBoxBlur creates a blur with the given kernel and iteration count.
func NewBoxBlur(k Kernel, iterations int) *BoxBlur {
	return &BoxBlur{Kernel: k, Iterations: iterations}
}

// Validate checks that f can be blurred without running the filter.
func (b *BoxBlur) Validate(width, height, channels int) error {
	if channels != frame.RGBAChannels {
		return fmt.Errorf("%w: got %d, want %d", ErrChannels, channels, frame.RGBAChannels)
	}
	if !b.Kernel.Fits(width) || !b.Kernel.Fits(height) {
		return fmt.Errorf("%w: width %d for %dx%d", ErrKernelTooLarge, b.Kernel.Width, width, height)
	}
	return nil
}

// Apply blurs f in place.
// Channels 0-2 are filtered; channel 3 is left as is.
func (b *BoxBlur) Apply(f *frame.Frame[uint16]) error {
	if err := b.Validate(f.Width, f.Height, f.Channels); err != nil {
		return err
	}
	if b.Kernel.IsIdentity() {
		return nil
	}

	rowStride := f.RowStride()
	for iter := 0; iter < b.Iterations; iter++ {
		// Horizontal pass: one line per row.
		b.Pool.Run(f.Height, func(lo, hi int) {
			scratch := lines16.Get(f.Width * frame.RGBAChannels)
			defer lines16.Put(scratch)
			for y := lo; y < hi; y++ {
				blurLine16(f.Pix, y*rowStride, frame.RGBAChannels, f.Width, b.Kernel, scratch)
			}
		})

		// Vertical pass: one line per column.
		b.Pool.Run(f.Width, func(lo, hi int) {
			scratch := lines16.Get(f.Height * frame.RGBAChannels)
			defer lines16.Put(scratch)
			for x := lo; x < hi; x++ {
				blurLine16(f.Pix, x*frame.RGBAChannels, rowStride, f.Height, b.Kernel, scratch)
			}
		})
	}

	return nil
}

// blurLine16 box-filters n pixels starting at pix[start], step samples apart.
//
// The line is first copied to scratch so the window always slides over the
// samples as they were before this pass. The first output is the full
// kernel average; each later output is derived from the previous output:
//
//	out[i] = out[i-1] - factor*in[i-half-1] + factor*in[i+half]
//
// with all indices taken modulo n.
func blurLine16(pix []uint16, start, step, n int, k Kernel, scratch []uint16) {
	for i := 0; i < n; i++ {
		src := start + i*step
		copy(scratch[i*frame.RGBAChannels:i*frame.RGBAChannels+colorChannels], pix[src:src+colorChannels])
	}

	var prev [colorChannels]float64

	// Whole kernel for the first pixel.
	var sum [colorChannels]float64
	for j := -k.Half; j <= k.Half; j++ {
		s := modulo(j, n) * frame.RGBAChannels
		for c := 0; c < colorChannels; c++ {
			sum[c] += float64(scratch[s+c])
		}
	}
	for c := 0; c < colorChannels; c++ {
		v := clampUint16(roundHalf(k.Factor * sum[c]))
		pix[start+c] = v
		prev[c] = float64(v)
	}

	// Rest of the line: delta from the previous pixel.
	for i := 1; i < n; i++ {
		out := modulo(i-k.Half-1, n) * frame.RGBAChannels
		in := modulo(i+k.Half, n) * frame.RGBAChannels
		dst := start + i*step
		for c := 0; c < colorChannels; c++ {
			v := clampUint16(roundHalf(prev[c] - k.Factor*float64(scratch[out+c]) + k.Factor*float64(scratch[in+c])))
			pix[dst+c] = v
			prev[c] = float64(v)
		}
	}
}

// roundHalf rounds by adding 0.5 and truncating toward zero.
// Exact halves always round up; no banker's rounding.
func roundHalf(v float64) int {
	return int(v + 0.5)
}

// clampUint16 clamps v to [0, 65535].
func clampUint16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
