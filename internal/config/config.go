// Package config loads the YAML configuration of the matte command.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/matte"
)

// DefaultMaskThreshold is the luminance at or above which a pixel of an
// image mask counts as foreground.
const DefaultMaskThreshold = 128

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete command configuration.
type Config struct {
	Effects EffectsConfig `yaml:"effects"`
	Jobs    []Job         `yaml:"jobs"`
	// Parallel jobs (default: 1). Zero means one per CPU.
	Concurrency int `yaml:"concurrency"`
}

// EffectsConfig mirrors the matte options.
type EffectsConfig struct {
	Downsample     int `yaml:"downsample"`      // pixel sampling stride (default: 3)
	BlurSize       int `yaml:"blur_size"`       // box size in full-resolution pixels (default: 41)
	BlurIterations int `yaml:"blur_iterations"` // box passes (default: 2)
	MaskRadiusX    int `yaml:"mask_radius_x"`   // default: 4
	MaskRadiusY    int `yaml:"mask_radius_y"`   // default: 7
	MaskIterations int `yaml:"mask_iterations"` // default: 1
	Workers        int `yaml:"workers"`         // blur goroutines per job, 0 = GOMAXPROCS
	MaskThreshold  int `yaml:"mask_threshold"`  // luminance cutoff for image masks (default: 128)
}

// Job is one frame to process. Without a background the frame's own
// background is blurred; with one it is replaced.
type Job struct {
	Frame      string `yaml:"frame"`
	Mask       string `yaml:"mask"`
	Background string `yaml:"background,omitempty"`
	Output     string `yaml:"output"`
	Width      int    `yaml:"width,omitempty"`  // raw frames
	Height     int    `yaml:"height,omitempty"` // raw frames

	MaskWidth  int `yaml:"mask_width,omitempty"`  // raw masks, default: frame size
	MaskHeight int `yaml:"mask_height,omitempty"` // raw masks, default: frame size

	BackgroundWidth  int `yaml:"background_width,omitempty"`  // raw backgrounds, default: frame size
	BackgroundHeight int `yaml:"background_height,omitempty"` // raw backgrounds, default: frame size
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Effects: EffectsConfig{
			Downsample:     matte.DefaultDownsample,
			BlurSize:       matte.DefaultBlurSize,
			BlurIterations: matte.DefaultBlurIterations,
			MaskRadiusX:    matte.DefaultMaskRadiusX,
			MaskRadiusY:    matte.DefaultMaskRadiusY,
			MaskIterations: matte.DefaultMaskIterations,
			MaskThreshold:  DefaultMaskThreshold,
		},
		Concurrency: 1,
	}
}

// Load reads and parses a YAML configuration file. Fields missing from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and that every job names its files.
func (c *Config) Validate() error {
	e := c.Effects
	if e.Downsample < 1 {
		return fmt.Errorf("%w: downsample must be >= 1, got %d", ErrInvalid, e.Downsample)
	}
	if e.BlurSize < 1 {
		return fmt.Errorf("%w: blur_size must be >= 1, got %d", ErrInvalid, e.BlurSize)
	}
	if e.BlurIterations < 0 || e.MaskIterations < 0 {
		return fmt.Errorf("%w: iterations must be >= 0", ErrInvalid)
	}
	if e.MaskRadiusX < 0 || e.MaskRadiusY < 0 {
		return fmt.Errorf("%w: mask radii must be >= 0", ErrInvalid)
	}
	if e.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalid, e.Workers)
	}
	if e.MaskThreshold < 0 || e.MaskThreshold > 255 {
		return fmt.Errorf("%w: mask_threshold must be in [0, 255], got %d", ErrInvalid, e.MaskThreshold)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be >= 0, got %d", ErrInvalid, c.Concurrency)
	}

	for i, j := range c.Jobs {
		if j.Frame == "" || j.Mask == "" || j.Output == "" {
			return fmt.Errorf("%w: job %d: frame, mask and output are required", ErrInvalid, i)
		}
		if min(j.Width, j.Height, j.MaskWidth, j.MaskHeight, j.BackgroundWidth, j.BackgroundHeight) < 0 {
			return fmt.Errorf("%w: job %d: negative size", ErrInvalid, i)
		}
	}
	return nil
}

// Options converts the effect settings to matte options.
func (e EffectsConfig) Options() []matte.Option {
	return []matte.Option{
		matte.WithDownsample(e.Downsample),
		matte.WithBlurSize(e.BlurSize),
		matte.WithBlurIterations(e.BlurIterations),
		matte.WithMaskRadius(e.MaskRadiusX, e.MaskRadiusY),
		matte.WithMaskIterations(e.MaskIterations),
		matte.WithWorkers(e.Workers),
	}
}
