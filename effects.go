package matte

import (
	"fmt"
	"sync"

	"github.com/gogpu/matte/internal/composite"
	"github.com/gogpu/matte/internal/convert"
	"github.com/gogpu/matte/internal/filter"
	"github.com/gogpu/matte/internal/frame"
	"github.com/gogpu/matte/internal/parallel"
)

// Effects applies background effects with a fixed set of parameters.
//
// Every call validates its inputs, allocates fresh working buffers and
// returns a newly allocated output; caller buffers are never modified.
// Effects is safe for concurrent use.
type Effects struct {
	opts     options
	pool     *parallel.Pool
	blur     *filter.BoxBlur
	maskBlur *filter.MaskBlur
}

// New creates an Effects with the given options.
// Call Close to release the worker pool when done.
func New(opts ...Option) *Effects {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Effects{opts: o}
	if o.workers != 1 {
		e.pool = parallel.NewPool(o.workers)
	}

	e.blur = filter.NewBoxBlur(filter.KernelForSize(o.blurSize, o.downsample), o.blurIterations)
	e.blur.Pool = e.pool

	e.maskBlur = filter.NewMaskBlur(o.maskRadiusX, o.maskRadiusY, o.maskIterations)
	e.maskBlur.Pool = e.pool

	return e
}

// Close stops the worker pool. Close is safe to call multiple times.
// An Effects must not be used after Close.
func (e *Effects) Close() {
	e.pool.Close()
}

// BlurBackground composites frame over a blurred copy of itself, keeping
// pixels where mask is set sharp. The result is an RGBA image with the
// dimensions of frame; its fourth byte is the frame's alpha (255 for RGB
// input).
func (e *Effects) BlurBackground(img Image, mask Mask) (*Image, error) {
	if err := e.validate(img, mask); err != nil {
		return nil, err
	}
	dw, dh := convert.DownsampledSize(img.Width, img.Height, e.opts.downsample)
	if err := e.blur.Validate(dw, dh, frame.RGBAChannels); err != nil {
		return nil, e.reject(fmt.Errorf("%w: frame %dx%d downsampled by %d to %dx%d: %w",
			ErrInvalidFormat, img.Width, img.Height, e.opts.downsample, dw, dh, err))
	}

	fg, err := toFrame(img)
	if err != nil {
		return nil, err
	}

	small, err := convert.Expand16(fg, e.opts.downsample)
	if err != nil {
		return nil, fmt.Errorf("matte: downsample: %w", err)
	}
	if err := e.blur.Apply(small); err != nil {
		return nil, fmt.Errorf("matte: blur background: %w", err)
	}
	bg := convert.Narrow8(small)

	Logger().Debug("matte: blurred background",
		"frame", fmt.Sprintf("%dx%d", img.Width, img.Height),
		"background", fmt.Sprintf("%dx%d", bg.Width, bg.Height),
		"kernel", e.blur.Kernel.Width,
		"iterations", e.blur.Iterations)

	return e.composite(fg, mask, bg)
}

// ReplaceBackground composites frame over background, keeping pixels where
// mask is set. The background may have any resolution; it is stretched
// over the frame with nearest-neighbor sampling. The result is an RGBA
// image with the dimensions of frame.
func (e *Effects) ReplaceBackground(img Image, mask Mask, background Image) (*Image, error) {
	if err := e.validate(img, mask); err != nil {
		return nil, err
	}
	if err := background.Validate(); err != nil {
		return nil, e.reject(fmt.Errorf("background: %w", err))
	}

	fg, err := toFrame(img)
	if err != nil {
		return nil, err
	}
	bg, err := toFrame(background)
	if err != nil {
		return nil, err
	}
	return e.composite(fg, mask, bg)
}

// validate runs every check that does not depend on the operation, before
// any working buffer is allocated.
func (e *Effects) validate(img Image, mask Mask) error {
	if err := img.Validate(); err != nil {
		return e.reject(fmt.Errorf("frame: %w", err))
	}
	if err := mask.Validate(); err != nil {
		return e.reject(err)
	}
	if err := e.maskBlur.Validate(mask.Width, mask.Height, 1); err != nil {
		return e.reject(fmt.Errorf("%w: mask %dx%d: %w", ErrInvalidFormat, mask.Width, mask.Height, err))
	}
	return nil
}

func (e *Effects) reject(err error) error {
	Logger().Warn("matte: rejected input", "err", err)
	return err
}

// composite softens the mask and blends fg over bg through it.
func (e *Effects) composite(fg *frame.Frame[uint8], mask Mask, bg *frame.Frame[uint8]) (*Image, error) {
	bitmap, err := frame.NewBitmap(mask.Bits, mask.Width, mask.Height, mask.Stride)
	if err != nil {
		return nil, fmt.Errorf("%w: mask: %w", ErrInvalidFormat, err)
	}
	opacity := convert.BitmapToFloat(bitmap)
	if err := e.maskBlur.Apply(opacity); err != nil {
		return nil, fmt.Errorf("matte: blur mask: %w", err)
	}

	out, err := composite.Blend(fg, opacity, bg)
	if err != nil {
		return nil, fmt.Errorf("matte: composite: %w", err)
	}

	return &Image{
		Format: FormatRGBA,
		Width:  out.Width,
		Height: out.Height,
		Pix:    out.Pix,
	}, nil
}

// toFrame views a validated Image as a 4-channel frame. RGB input is
// expanded into a new buffer; RGBA input is wrapped without copying, as
// every stage only reads its source frames.
func toFrame(img Image) (*frame.Frame[uint8], error) {
	if img.Format == FormatRGB {
		return convert.RGBToRGBA(img.Pix, img.Width, img.Height), nil
	}
	f, err := frame.FromRaw(img.Pix, img.Width, img.Height, frame.RGBAChannels, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v image: %w", ErrInvalidFormat, img.Format, err)
	}
	return f, nil
}

// defaultEffects backs the package-level functions. It runs serially so
// that no goroutines are started on behalf of callers that never asked.
var defaultEffects = sync.OnceValue(func() *Effects {
	return New(WithWorkers(1))
})

// BlurBackground applies Effects.BlurBackground with default parameters.
func BlurBackground(img Image, mask Mask) (*Image, error) {
	return defaultEffects().BlurBackground(img, mask)
}

// ReplaceBackground applies Effects.ReplaceBackground with default
// parameters.
func ReplaceBackground(img Image, mask Mask, background Image) (*Image, error) {
	return defaultEffects().ReplaceBackground(img, mask, background)
}
