// Package config holds the viewer settings.
//
// The command line only carries the device path and the driver format;
// everything else is fixed to the values a plain USB webcam accepts.
package config

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	DefaultDevice    = "/dev/video0"
	DefaultDriver    = "video4linux2"
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultFrameRate = 30
	DefaultCodec     = "mjpeg"
	DefaultTitle     = "v4l2view"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage")

// Config is the full runtime configuration.
type Config struct {
	Device string // device path, e.g. /dev/video0
	Driver string // capture backend or libav input format name

	Width     int
	Height    int
	FrameRate int
	Codec     string // requested input codec

	Title    string
	LogLevel slog.Level
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device:    DefaultDevice,
		Driver:    DefaultDriver,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		FrameRate: DefaultFrameRate,
		Codec:     DefaultCodec,
		Title:     DefaultTitle,
		LogLevel:  slog.LevelInfo,
	}
}

// FromArgs builds a config from the positional arguments (program name excluded):
// [device_path] [driver_format].
func FromArgs(args []string) (*Config, error) {
	cfg := Default()

	if len(args) > 2 {
		return nil, fmt.Errorf("%w: too many arguments (%d)", ErrUsage, len(args))
	}
	if len(args) > 0 {
		if args[0] == "" {
			return nil, fmt.Errorf("%w: empty device path", ErrUsage)
		}
		cfg.Device = args[0]
	}
	if len(args) > 1 {
		if args[1] == "" {
			return nil, fmt.Errorf("%w: empty driver format", ErrUsage)
		}
		cfg.Driver = args[1]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the capture and display layers cannot use.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("%w: device path is empty", ErrUsage)
	}
	if c.Driver == "" {
		return fmt.Errorf("%w: driver format is empty", ErrUsage)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: invalid frame size %dx%d", ErrUsage, c.Width, c.Height)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: invalid framerate %d", ErrUsage, c.FrameRate)
	}
	return nil
}

// VideoSize renders the frame size the way libav options expect it.
func (c *Config) VideoSize() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// Usage returns the one-line usage text for prog.
func Usage(prog string) string {
	return fmt.Sprintf("usage: %s [device_path (default %s)] [driver_format (default %s)]", prog, DefaultDevice, DefaultDriver)
}

