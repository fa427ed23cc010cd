package filter

// Kernel describes an odd-width box window centered on the current sample.
type Kernel struct {
	// Width is the number of samples in the window (2*Half + 1).
	Width int

	// Half is the number of samples on each side of the center.
	Half int

	// Factor is the weight of each sample, 1/Width.
	Factor float64
}

// BoxKernel returns the box kernel spanning radius samples on each side.
// For radius <= 0 it returns the single-sample identity kernel.
func BoxKernel(radius int) Kernel {
	if radius < 0 {
		radius = 0
	}
	width := radius*2 + 1
	return Kernel{
		Width:  width,
		Half:   radius,
		Factor: 1 / float64(width),
	}
}

// KernelForSize returns the box kernel for a blur of size pixels measured
// on the full-resolution image, applied to an image downsampled by the
// given factor. Even widths are widened by one to keep the window centered.
func KernelForSize(size, downsample int) Kernel {
	if downsample < 1 {
		downsample = 1
	}
	width := size / downsample
	if width < 1 {
		width = 1
	}
	return BoxKernel(width / 2)
}

// IsIdentity reports whether the kernel leaves samples unchanged.
func (k Kernel) IsIdentity() bool {
	return k.Width <= 1
}

// Fits reports whether the kernel window fits within a line of n samples.
func (k Kernel) Fits(n int) bool {
	return k.Width <= n
}

// modulo is the positive remainder of a divided by m.
func modulo(a, m int) int {
	return ((a % m) + m) % m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
