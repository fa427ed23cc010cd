// Package matte provides background effects for segmented video frames.
//
// # Overview
//
// Given a sharp color frame and a binary segmentation mask (1 bit per pixel,
// set where the subject is), matte produces a composited frame in which the
// background is either blurred or replaced by another image. The mask edges
// are softened before compositing so the subject blends smoothly into the
// new background.
//
// # Quick Start
//
//	import "github.com/gogpu/matte"
//
//	fx := matte.New()
//	defer fx.Close()
//
//	frame := matte.Image{Format: matte.FormatRGB, Width: 1920, Height: 1080, Pix: rgb}
//	mask := matte.Mask{Width: 256, Height: 144, Stride: 32, Bits: bits}
//
//	out, err := fx.BlurBackground(frame, mask)
//	if err != nil {
//	    return err
//	}
//
// # Pipeline
//
// BlurBackground runs these stages:
//  1. The mask bitmap is expanded to a float opacity map and box-blurred
//     with independent horizontal and vertical radii.
//  2. The frame is downsampled (nearest-neighbor), widened to 16 bits per
//     channel and blurred with an iterated wraparound box filter, then
//     narrowed back to 8 bits.
//  3. Every output pixel blends the sharp frame with the blurred background
//     using the opacity map: out = bg + (frame - bg) * mask.
//
// ReplaceBackground skips stage 2 and uses a caller-supplied background.
// Mask and background may have any resolution; they are stretched over the
// frame with nearest-neighbor sampling.
//
// # Concurrency
//
// An Effects value is safe for concurrent use. Rows and columns of each
// blur pass are spread across a worker pool; see WithWorkers.
//
// # Logging
//
// matte is silent by default. Call SetLogger to receive diagnostics.
package matte
