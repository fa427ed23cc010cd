package main

import (
	"github.com/gogpu/matte"
	"github.com/gogpu/matte/internal/config"
	"github.com/gogpu/matte/internal/imageio"
)

func processJob(fx *matte.Effects, job config.Job, threshold uint8) error {
	frame, err := imageio.LoadImage(job.Frame, job.Width, job.Height)
	if err != nil {
		return err
	}
	mw, mh := sizeOr(job.MaskWidth, job.MaskHeight, frame)
	mask, err := imageio.LoadMask(job.Mask, mw, mh, threshold)
	if err != nil {
		return err
	}

	var out *matte.Image
	if job.Background == "" {
		out, err = fx.BlurBackground(frame, mask)
	} else {
		bw, bh := sizeOr(job.BackgroundWidth, job.BackgroundHeight, frame)
		var bg matte.Image
		if bg, err = imageio.LoadImage(job.Background, bw, bh); err != nil {
			return err
		}
		out, err = fx.ReplaceBackground(frame, mask, bg)
	}
	if err != nil {
		return err
	}
	return imageio.SaveImage(job.Output, *out)
}

// sizeOr returns w x h, or the frame size when either is unset.
func sizeOr(w, h int, frame matte.Image) (int, int) {
	if w == 0 || h == 0 {
		return frame.Width, frame.Height
	}
	return w, h
}
