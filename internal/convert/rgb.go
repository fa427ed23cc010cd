package convert

import "github.com/gogpu/matte/internal/frame"

// RGBToRGBA copies packed 3-byte RGB pixels into a new 4-channel frame
// with an opaque fourth channel. The caller validates the byte count.
func RGBToRGBA(pix []byte, width, height int) *frame.Frame[uint8] {
	n := width * height
	out := &frame.Frame[uint8]{
		Width:    width,
		Height:   height,
		Channels: frame.RGBAChannels,
		Pix:      make([]uint8, n*frame.RGBAChannels),
	}

	for i := 0; i < n; i++ {
		out.Pix[4*i+0] = pix[3*i+0]
		out.Pix[4*i+1] = pix[3*i+1]
		out.Pix[4*i+2] = pix[3*i+2]
		out.Pix[4*i+3] = 0xFF
	}

	return out
}
