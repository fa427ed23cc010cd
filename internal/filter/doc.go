// Package filter provides the sliding-window box blurs used by the matte
// pipeline.
//
// This package contains two engines:
//   - BoxBlur: multi-channel 16-bit blur with wraparound edges on both axes
//   - MaskBlur: single-channel float blur with independent X/Y radii and a
//     mirrored top edge on the vertical pass
//
// Both engines run N iterations of a separable (horizontal then vertical)
// box filter. Each line computes its first output from the full kernel and
// every later output from the previous one plus the samples entering and
// leaving the window, so the cost per pixel is O(1) regardless of radius.
// Lines within a pass are independent and are spread across a worker pool;
// a single line is always processed start to end by one goroutine.
package filter
