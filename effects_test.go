package matte

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
)

// solidRGB returns a w x h RGB image filled with one color.
func solidRGB(w, h int, r, g, b uint8) Image {
	pix := make([]byte, w*h*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return Image{Format: FormatRGB, Width: w, Height: h, Pix: pix}
}

// randomImage returns a w x h image of the given format with random bytes.
func randomImage(rng *rand.Rand, format PixelFormat, w, h int) Image {
	pix := make([]byte, w*h*format.BytesPerPixel())
	for i := range pix {
		pix[i] = uint8(rng.IntN(256))
	}
	return Image{Format: format, Width: w, Height: h, Pix: pix}
}

// filledMask returns a w x h mask with every bit set to fg.
func filledMask(w, h int, fg bool) Mask {
	m := NewMask(w, h)
	if fg {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// expectRGBA checks that out is the RGBA rendering of an RGB image.
func expectRGBA(t *testing.T, out *Image, want Image) {
	t.Helper()
	if out.Format != FormatRGBA || out.Width != want.Width || out.Height != want.Height {
		t.Fatalf("output %v %dx%d, want RGBA %dx%d", out.Format, out.Width, out.Height, want.Width, want.Height)
	}
	for i := 0; i < want.Width*want.Height; i++ {
		o, w := out.Pix[4*i:4*i+4], want.Pix[3*i:3*i+3]
		if o[0] != w[0] || o[1] != w[1] || o[2] != w[2] || o[3] != 255 {
			t.Fatalf("pixel %d = %v, want %v + 255", i, o, w)
		}
	}
}

func TestReplaceBackgroundOpaqueMaskKeepsFrame(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	img := randomImage(rng, FormatRGB, 20, 16)
	bg := randomImage(rng, FormatRGB, 5, 5)

	fx := New(WithMaskRadius(1, 1), WithWorkers(1))
	defer fx.Close()

	out, err := fx.ReplaceBackground(img, filledMask(4, 4, true), bg)
	if err != nil {
		t.Fatalf("ReplaceBackground() error = %v", err)
	}
	expectRGBA(t, out, img)
}

func TestReplaceBackgroundClearMaskShowsBackground(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	img := randomImage(rng, FormatRGB, 8, 6)
	bg := randomImage(rng, FormatRGBA, 4, 3)

	fx := New(WithMaskRadius(1, 1), WithWorkers(1))
	defer fx.Close()

	out, err := fx.ReplaceBackground(img, filledMask(4, 4, false), bg)
	if err != nil {
		t.Fatalf("ReplaceBackground() error = %v", err)
	}

	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			o := (y*8 + x) * 4
			b := ((y/2)*4 + x/2) * 4
			for c := 0; c < 3; c++ {
				if out.Pix[o+c] != bg.Pix[b+c] {
					t.Errorf("(%d,%d) channel %d = %d, want background %d", x, y, c, out.Pix[o+c], bg.Pix[b+c])
				}
			}
			if out.Pix[o+3] != 255 {
				t.Errorf("(%d,%d) alpha = %d, want frame alpha 255", x, y, out.Pix[o+3])
			}
		}
	}
}

func TestReplaceBackgroundSameSizeBackgroundIsExact(t *testing.T) {
	for _, sz := range []struct{ w, h int }{{23, 37}, {37, 23}, {22, 15}} {
		rng := rand.New(rand.NewPCG(uint64(sz.w), uint64(sz.h)))
		img := randomImage(rng, FormatRGB, sz.w, sz.h)
		bg := randomImage(rng, FormatRGB, sz.w, sz.h)

		fx := New(WithWorkers(1))
		out, err := fx.ReplaceBackground(img, filledMask(sz.w, sz.h, false), bg)
		fx.Close()
		if err != nil {
			t.Fatalf("%dx%d: ReplaceBackground() error = %v", sz.w, sz.h, err)
		}
		expectRGBA(t, out, bg)
	}
}

func TestBlurBackgroundUniformFrame(t *testing.T) {
	img := solidRGB(60, 45, 10, 200, 30)

	fx := New()
	defer fx.Close()

	out, err := fx.BlurBackground(img, filledMask(16, 16, false))
	if err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}
	expectRGBA(t, out, img)
}

func TestBlurBackgroundOpaqueMaskKeepsFrame(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	img := randomImage(rng, FormatRGB, 64, 48)

	fx := New()
	defer fx.Close()

	out, err := fx.BlurBackground(img, filledMask(16, 16, true))
	if err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}
	expectRGBA(t, out, img)
}

func TestBlurBackgroundSoftensEdges(t *testing.T) {
	// Left half black, right half white.
	const w, h = 300, 60
	img := solidRGB(w, h, 0, 0, 0)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			i := (y*w + x) * 3
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 255, 255, 255
		}
	}

	fx := New(WithWorkers(2))
	defer fx.Close()

	out, err := fx.BlurBackground(img, filledMask(16, 16, false))
	if err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}

	mid := out.Pix[((h/2)*w+w/2)*4]
	if mid == 0 || mid == 255 {
		t.Errorf("pixel at the edge = %d, want a blurred gray", mid)
	}
	// Far from both edges (including the wraparound one) the halves stay solid.
	if v := out.Pix[((h/2)*w+w/4)*4]; v > 8 {
		t.Errorf("black half center = %d, want ~0", v)
	}
	if v := out.Pix[((h/2)*w+3*w/4)*4]; v < 247 {
		t.Errorf("white half center = %d, want ~255", v)
	}
}

func TestBlurBackgroundDoesNotMutateInputs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	img := randomImage(rng, FormatRGB, 45, 45)
	mask := filledMask(16, 16, false)
	mask.Set(3, 3, true)

	imgBefore := bytes.Clone(img.Pix)
	maskBefore := bytes.Clone(mask.Bits)

	fx := New()
	defer fx.Close()

	if _, err := fx.BlurBackground(img, mask); err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}
	if !bytes.Equal(img.Pix, imgBefore) {
		t.Error("BlurBackground modified the frame")
	}
	if !bytes.Equal(mask.Bits, maskBefore) {
		t.Error("BlurBackground modified the mask")
	}
}

func TestEffectsRejectInvalidInput(t *testing.T) {
	okImg := solidRGB(60, 45, 1, 2, 3)
	okMask := filledMask(16, 16, false)

	tests := []struct {
		name string
		img  Image
		mask Mask
	}{
		{"zero width", Image{Format: FormatRGB, Width: 0, Height: 45}, okMask},
		{"negative height", Image{Format: FormatRGB, Width: 60, Height: -1}, okMask},
		{"truncated frame", Image{Format: FormatRGB, Width: 60, Height: 45, Pix: okImg.Pix[:len(okImg.Pix)-1]}, okMask},
		{"unknown format", Image{Format: PixelFormat(7), Width: 60, Height: 45, Pix: okImg.Pix}, okMask},
		{"rgba sized as rgb", Image{Format: FormatRGBA, Width: 60, Height: 45, Pix: okImg.Pix}, okMask},
		{"mask stride too small", okImg, Mask{Width: 16, Height: 16, Stride: 1, Bits: make([]byte, 32)}},
		{"mask truncated", okImg, Mask{Width: 16, Height: 16, Stride: 2, Bits: make([]byte, 31)}},
		{"mask shorter than kernel", okImg, filledMask(16, 14, false)},
		{"mask narrower than kernel", okImg, filledMask(8, 16, false)},
		{"frame too small for blur", solidRGB(30, 45, 0, 0, 0), okMask},
	}

	fx := New(WithWorkers(1))
	defer fx.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := fx.BlurBackground(tt.img, tt.mask)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("BlurBackground() error = %v, want ErrInvalidFormat", err)
			}
			if out != nil {
				t.Error("BlurBackground() returned output on error")
			}
		})
	}
}

func TestReplaceBackgroundRejectsInvalidBackground(t *testing.T) {
	fx := New(WithWorkers(1))
	defer fx.Close()

	img := solidRGB(20, 20, 0, 0, 0)
	bad := Image{Format: FormatRGB, Width: 4, Height: 4, Pix: make([]byte, 47)}

	out, err := fx.ReplaceBackground(img, filledMask(16, 16, true), bad)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ReplaceBackground() error = %v, want ErrInvalidFormat", err)
	}
	if out != nil {
		t.Error("ReplaceBackground() returned output on error")
	}
}

func TestReplaceBackgroundSmallFrameIsFine(t *testing.T) {
	// Only the mask kernels constrain ReplaceBackground; the frame itself
	// is never blurred.
	fx := New(WithWorkers(1))
	defer fx.Close()

	img := solidRGB(2, 2, 9, 9, 9)
	out, err := fx.ReplaceBackground(img, filledMask(16, 16, true), solidRGB(1, 1, 0, 0, 0))
	if err != nil {
		t.Fatalf("ReplaceBackground() error = %v", err)
	}
	expectRGBA(t, out, img)
}

func TestPackageLevelFunctions(t *testing.T) {
	img := solidRGB(60, 45, 40, 50, 60)

	out, err := BlurBackground(img, filledMask(16, 16, false))
	if err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}
	expectRGBA(t, out, img)

	bg := solidRGB(3, 3, 7, 8, 9)
	out, err = ReplaceBackground(img, filledMask(16, 16, false), bg)
	if err != nil {
		t.Fatalf("ReplaceBackground() error = %v", err)
	}
	expectRGBA(t, out, solidRGB(60, 45, 7, 8, 9))
}

func TestEffectsConcurrentCallsMatchSerial(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	img := randomImage(rng, FormatRGB, 96, 72)
	mask := NewMask(32, 24)
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			mask.Set(x, y, (x-16)*(x-16)+(y-12)*(y-12) < 64)
		}
	}

	serial := New(WithWorkers(1))
	defer serial.Close()
	want, err := serial.BlurBackground(img, mask)
	if err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}

	fx := New(WithWorkers(4))
	defer fx.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := fx.BlurBackground(img, mask)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got.Pix, want.Pix) {
				errs <- errors.New("parallel output differs from serial output")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func BenchmarkBlurBackground1080p(b *testing.B) {
	rng := rand.New(rand.NewPCG(11, 12))
	img := randomImage(rng, FormatRGB, 1920, 1080)
	mask := NewMask(256, 144)

	fx := New()
	defer fx.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fx.BlurBackground(img, mask)
	}
}

func TestRGBAInputsAreReadOnly(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	img := randomImage(rng, FormatRGBA, 60, 45)
	bg := randomImage(rng, FormatRGBA, 20, 15)
	mask := filledMask(16, 16, false)
	mask.Set(8, 8, true)

	imgBefore, bgBefore := bytes.Clone(img.Pix), bytes.Clone(bg.Pix)

	fx := New(WithWorkers(2))
	defer fx.Close()

	blurred, err := fx.BlurBackground(img, mask)
	if err != nil {
		t.Fatalf("BlurBackground() error = %v", err)
	}
	replaced, err := fx.ReplaceBackground(img, mask, bg)
	if err != nil {
		t.Fatalf("ReplaceBackground() error = %v", err)
	}

	if !bytes.Equal(img.Pix, imgBefore) || !bytes.Equal(bg.Pix, bgBefore) {
		t.Fatal("RGBA input modified")
	}
	for _, out := range []*Image{blurred, replaced} {
		out.Pix[0] ^= 0xFF
		if img.Pix[0] != imgBefore[0] {
			t.Fatal("output shares memory with the frame")
		}
		// Fourth byte passes through from the frame.
		if out.Pix[3] != img.Pix[3] {
			t.Errorf("fourth byte = %d, want frame's %d", out.Pix[3], img.Pix[3])
		}
	}
}
