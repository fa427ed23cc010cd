package filter

import (
	"fmt"

	"github.com/gogpu/matte/internal/frame"
	"github.com/gogpu/matte/internal/parallel"
)

// MaskBlur softens single-channel opacity maps.
//
// Horizontal and vertical windows are sized independently so a mask can be
// pre-compensated for the aspect ratio it will be stretched to. Every value
// is saturated to [0, 1] after each update.
//
// The horizontal pass wraps around like BoxBlur. The vertical pass mirrors
// the top edge when computing the first row (rows -1, -2, ... read rows
// 1, 2, ...), so content at the bottom of the mask never bleeds into the
// top. Later rows slide with plain wraparound.
type MaskBlur struct {
	// KernelX is the horizontal box window.
	KernelX Kernel

	// KernelY is the vertical box window.
	KernelY Kernel

	// Iterations is the number of horizontal+vertical pass pairs.
	Iterations int

	// Pool spreads rows and columns across goroutines. Nil runs serially.
	Pool *parallel.Pool
}

// NewMaskBlur creates a mask blur with horizontal and vertical radii.
func NewMaskBlur(radiusX, radiusY, iterations int) *MaskBlur {
	return &MaskBlur{
		KernelX:    BoxKernel(radiusX),
		KernelY:    BoxKernel(radiusY),
		Iterations: iterations,
	}
}

// Validate checks that a mask of the given shape can be blurred.
func (b *MaskBlur) Validate(width, height, channels int) error {
	if channels != 1 {
		return fmt.Errorf("%w: got %d, want 1", ErrChannels, channels)
	}
	if !b.KernelX.Fits(width) {
		return fmt.Errorf("%w: horizontal width %d for mask width %d", ErrKernelTooLarge, b.KernelX.Width, width)
	}
	if !b.KernelY.Fits(height) {
		return fmt.Errorf("%w: vertical width %d for mask height %d", ErrKernelTooLarge, b.KernelY.Width, height)
	}
	return nil
}

// Apply blurs m in place.
func (b *MaskBlur) Apply(m *frame.Frame[float32]) error {
	if err := b.Validate(m.Width, m.Height, m.Channels); err != nil {
		return err
	}

	rowStride := m.RowStride()
	for iter := 0; iter < b.Iterations; iter++ {
		if !b.KernelX.IsIdentity() {
			b.Pool.Run(m.Height, func(lo, hi int) {
				scratch := lines32.Get(m.Width)
				defer lines32.Put(scratch)
				for y := lo; y < hi; y++ {
					blurMaskRow(m.Pix[y*rowStride:y*rowStride+m.Width], b.KernelX, scratch)
				}
			})
		}

		if !b.KernelY.IsIdentity() {
			b.Pool.Run(m.Width, func(lo, hi int) {
				scratch := lines32.Get(m.Height)
				defer lines32.Put(scratch)
				for x := lo; x < hi; x++ {
					blurMaskColumn(m.Pix, x, rowStride, m.Height, b.KernelY, scratch)
				}
			})
		}
	}

	return nil
}

// blurMaskRow filters one row with wraparound on both ends.
func blurMaskRow(row []float32, k Kernel, scratch []float32) {
	n := len(row)
	copy(scratch, row)

	var sum float64
	for j := -k.Half; j <= k.Half; j++ {
		sum += float64(scratch[modulo(j, n)])
	}
	prev := saturate(k.Factor * sum)
	row[0] = float32(prev)

	for i := 1; i < n; i++ {
		out := scratch[modulo(i-k.Half-1, n)]
		in := scratch[modulo(i+k.Half, n)]
		prev = saturate(prev - k.Factor*float64(out) + k.Factor*float64(in))
		row[i] = float32(prev)
	}
}

// blurMaskColumn filters column x of an n-row mask.
// Only the first row's window uses |y|; the sliding updates wrap normally.
func blurMaskColumn(pix []float32, x, stride, n int, k Kernel, scratch []float32) {
	for y := 0; y < n; y++ {
		scratch[y] = pix[y*stride+x]
	}

	var sum float64
	for j := -k.Half; j <= k.Half; j++ {
		sum += float64(scratch[modulo(absInt(j), n)])
	}
	prev := saturate(k.Factor * sum)
	pix[x] = float32(prev)

	for y := 1; y < n; y++ {
		out := scratch[modulo(y-k.Half-1, n)]
		in := scratch[modulo(y+k.Half, n)]
		prev = saturate(prev - k.Factor*float64(out) + k.Factor*float64(in))
		pix[y*stride+x] = float32(prev)
	}
}

// saturate clamps v to [0, 1].
func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
