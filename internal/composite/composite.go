// Package composite blends a sharp foreground over a background through a
// floating-point opacity map.
package composite

import (
	"errors"
	"fmt"

	"github.com/gogpu/matte/internal/frame"
)

// ErrLayout is returned when an input does not have the channel count the
// compositor expects (4 for color frames, 1 for the opacity map).
var ErrLayout = errors.New("composite: unexpected frame layout")

// Blend returns a new frame sized like fg where every pixel is
//
//	out = bg + (fg - bg) * mask
//
// for the R, G and B channels. The fourth channel is copied from fg.
//
// Mask and background may have any resolution. Output pixel (x, y) samples
// them at normalized coordinates (x/W, y/H) with nearest-neighbor lookup,
// so a low-resolution mask or background is stretched over fg.
func Blend(fg *frame.Frame[uint8], mask *frame.Frame[float32], bg *frame.Frame[uint8]) (*frame.Frame[uint8], error) {
	if fg.Channels != frame.RGBAChannels || bg.Channels != frame.RGBAChannels {
		return nil, fmt.Errorf("%w: color frames need %d channels", ErrLayout, frame.RGBAChannels)
	}
	if mask.Channels != 1 {
		return nil, fmt.Errorf("%w: mask has %d channels", ErrLayout, mask.Channels)
	}

	out := &frame.Frame[uint8]{
		Width:    fg.Width,
		Height:   fg.Height,
		Channels: frame.RGBAChannels,
		Pix:      make([]uint8, fg.Width*fg.Height*frame.RGBAChannels),
	}

	maskX := sampleIndices(fg.Width, mask.Width)
	bgX := sampleIndices(fg.Width, bg.Width)

	for y := 0; y < fg.Height; y++ {
		maskY := sampleIndex(y, fg.Height, mask.Height)
		bgY := sampleIndex(y, fg.Height, bg.Height)

		for x := 0; x < fg.Width; x++ {
			m := mask.Pix[mask.Offset(maskX[x], maskY)]
			i := fg.Offset(x, y)
			b := bg.Offset(bgX[x], bgY)
			o := out.Offset(x, y)

			out.Pix[o+0] = mix(fg.Pix[i+0], bg.Pix[b+0], m)
			out.Pix[o+1] = mix(fg.Pix[i+1], bg.Pix[b+1], m)
			out.Pix[o+2] = mix(fg.Pix[i+2], bg.Pix[b+2], m)
			out.Pix[o+3] = fg.Pix[i+3]
		}
	}

	return out, nil
}

// sampleIndices precomputes the nearest-neighbor column of a src-wide grid
// for every column of a dst-wide output.
func sampleIndices(dst, src int) []int {
	idx := make([]int, dst)
	for i := range idx {
		idx[i] = sampleIndex(i, dst, src)
	}
	return idx
}

// sampleIndex maps i in [0, dst) to floor(i/dst * src). The product is
// taken in integers so equal grids map every index to itself.
func sampleIndex(i, dst, src int) int {
	return i * src / dst
}

// mix blends one channel and rounds by adding 0.5 and truncating,
// so exact halves always round up.
func mix(f, b uint8, m float32) uint8 {
	v := float32(b) + (float32(f)-float32(b))*m
	return clampUint8(int(v + 0.5))
}

// clampUint8 clamps v to [0, 255].
func clampUint8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
