package frame

// Bitmap is a packed 1-bit-per-pixel mask.
//
// Bit x of row y lives in byte Stride*y + x/8 at bit position x%8
// (least significant bit first). Stride is in bytes and may exceed
// ceil(Width/8) when rows are padded for alignment.
type Bitmap struct {
	Width  int
	Height int
	Stride int
	Bits   []byte
}

// MinBitmapStride returns the smallest valid stride for a bitmap row.
func MinBitmapStride(width int) int {
	return (width + 7) / 8
}

// NewBitmap wraps packed bits without copying after validating the layout.
func NewBitmap(bits []byte, width, height, stride int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if stride < MinBitmapStride(width) {
		return nil, ErrInvalidStride
	}
	if len(bits) < stride*height {
		return nil, ErrDataTooSmall
	}
	return &Bitmap{
		Width:  width,
		Height: height,
		Stride: stride,
		Bits:   bits[:stride*height],
	}, nil
}

// At reports whether the bit at (x, y) is set.
func (b *Bitmap) At(x, y int) bool {
	return (b.Bits[y*b.Stride+x/8]>>(x%8))&1 == 1
}

// Set sets or clears the bit at (x, y).
func (b *Bitmap) Set(x, y int, v bool) {
	i := y*b.Stride + x/8
	if v {
		b.Bits[i] |= 1 << (x % 8)
	} else {
		b.Bits[i] &^= 1 << (x % 8)
	}
}
