// Command matte blurs or replaces the background of video frames using a
// segmentation mask.
//
// Single frame:
//
//	matte -frame in.png -mask mask.png -out out.png
//	matte -frame cam.rgb.zst -width 1920 -height 1080 -mask cam.mask -mask-width 256 -mask-height 144 -background beach.jpg -out cam.png
//
// Batch, from a YAML file:
//
//	matte -config jobs.yaml -jobs 4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/matte"
	"github.com/gogpu/matte/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "matte:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("matte", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "YAML configuration file")
		framePath  = fs.String("frame", "", "input frame (image, or raw .rgb/.rgba dump)")
		maskPath   = fs.String("mask", "", "segmentation mask (image, or raw .mask dump)")
		bgPath     = fs.String("background", "", "replacement background; blur the frame's own when empty")
		outPath    = fs.String("out", "", "output file (.png, .jpg, .rgba or .rgba.zst)")
		width      = fs.Int("width", 0, "width of raw inputs")
		height     = fs.Int("height", 0, "height of raw inputs")
		maskWidth  = fs.Int("mask-width", 0, "width of a raw mask (default: frame width)")
		maskHeight = fs.Int("mask-height", 0, "height of a raw mask (default: frame height)")
		bgWidth    = fs.Int("background-width", 0, "width of a raw background (default: frame width)")
		bgHeight   = fs.Int("background-height", 0, "height of a raw background (default: frame height)")
		threshold  = fs.Int("mask-threshold", -1, "luminance cutoff for image masks (default from config)")
		jobs       = fs.Int("jobs", -1, "jobs run in parallel, 0 = one per CPU (default from config)")
		verbose    = fs.Bool("v", false, "verbose logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	matte.SetLogger(logger)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *framePath != "" || *maskPath != "" || *outPath != "" {
		cfg.Jobs = append(cfg.Jobs, config.Job{
			Frame:      *framePath,
			Mask:       *maskPath,
			Background: *bgPath,
			Output:     *outPath,
			Width:      *width,
			Height:     *height,
			MaskWidth:  *maskWidth,
			MaskHeight: *maskHeight,

			BackgroundWidth:  *bgWidth,
			BackgroundHeight: *bgHeight,
		})
	}
	if *threshold >= 0 {
		cfg.Effects.MaskThreshold = *threshold
	}
	if *jobs >= 0 {
		cfg.Concurrency = *jobs
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Jobs) == 0 {
		fs.Usage()
		return errors.New("nothing to do: give -frame, -mask and -out, or -config")
	}

	return runJobs(ctx, cfg, logger)
}

// runJobs processes every job with at most cfg.Concurrency in flight and
// returns the first failure.
func runJobs(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fx := matte.New(cfg.Effects.Options()...)
	defer fx.Close()

	limit := cfg.Concurrency
	if limit == 0 {
		limit = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, job := range cfg.Jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := processJob(fx, job, uint8(cfg.Effects.MaskThreshold)); err != nil { //nolint:gosec // validated to [0, 255]
				return fmt.Errorf("%s: %w", job.Frame, err)
			}
			logger.Info("wrote", "output", job.Output)
			return nil
		})
	}
	return g.Wait()
}
