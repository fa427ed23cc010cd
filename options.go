package matte

// Default effect parameters, calibrated for 1080p frames with masks of a
// few hundred pixels on a side.
const (
	// DefaultDownsample is the factor the frame is shrunk by before the
	// background blur.
	DefaultDownsample = 3

	// DefaultBlurSize is the background blur window in full-resolution
	// pixels. The box kernel is DefaultBlurSize/DefaultDownsample wide.
	DefaultBlurSize = 41

	// DefaultBlurIterations is the number of box passes over the background.
	DefaultBlurIterations = 2

	// DefaultMaskRadiusX and DefaultMaskRadiusY are the mask blur radii in
	// mask pixels.
	DefaultMaskRadiusX = 4
	DefaultMaskRadiusY = 7

	// DefaultMaskIterations is the number of box passes over the mask.
	DefaultMaskIterations = 1
)

// Option configures an Effects during creation.
//
// Example:
//
//	fx := matte.New(
//	    matte.WithBlurSize(61),
//	    matte.WithMaskRadius(2, 4),
//	)
type Option func(*options)

// options holds the effect parameters.
type options struct {
	downsample     int
	blurSize       int
	blurIterations int
	maskRadiusX    int
	maskRadiusY    int
	maskIterations int
	workers        int
}

// defaultOptions returns the default effect parameters.
func defaultOptions() options {
	return options{
		downsample:     DefaultDownsample,
		blurSize:       DefaultBlurSize,
		blurIterations: DefaultBlurIterations,
		maskRadiusX:    DefaultMaskRadiusX,
		maskRadiusY:    DefaultMaskRadiusY,
		maskIterations: DefaultMaskIterations,
		workers:        0, // GOMAXPROCS
	}
}

// WithDownsample sets the factor the frame is shrunk by before blurring.
// Values below 1 are treated as 1 (no downsampling).
func WithDownsample(factor int) Option {
	return func(o *options) {
		if factor < 1 {
			factor = 1
		}
		o.downsample = factor
	}
}

// WithBlurSize sets the background blur window in full-resolution pixels.
func WithBlurSize(px int) Option {
	return func(o *options) {
		if px < 1 {
			px = 1
		}
		o.blurSize = px
	}
}

// WithBlurIterations sets the number of box passes over the background.
// More passes approach a true Gaussian at proportionally higher cost.
func WithBlurIterations(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.blurIterations = n
	}
}

// WithMaskRadius sets the horizontal and vertical mask blur radii in mask
// pixels. A radius of 0 disables blurring along that axis.
func WithMaskRadius(rx, ry int) Option {
	return func(o *options) {
		o.maskRadiusX = max(rx, 0)
		o.maskRadiusY = max(ry, 0)
	}
}

// WithMaskIterations sets the number of box passes over the mask.
func WithMaskIterations(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maskIterations = n
	}
}

// WithWorkers sets how many goroutines share each blur pass.
// 0 uses GOMAXPROCS; 1 runs every pass on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.workers = n
	}
}
