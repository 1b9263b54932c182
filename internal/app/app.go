// Package app wires configuration, capture, display and the viewer loop
// into one run of the program and maps its outcome to an exit code.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"v4l2view/internal/capture"
	"v4l2view/internal/config"
	"v4l2view/internal/display"
	"v4l2view/internal/display/highgui"
	"v4l2view/internal/viewer"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 2
	ExitInit    = 3
	ExitOpen    = 4
	ExitStream  = 5
	ExitDisplay = 6
)

// App holds the collaborators of one run. The zero value is not usable; start
// from New and override fields in tests.
type App struct {
	Open        func(ctx context.Context, req capture.Request) (capture.Source, error)
	OpenSurface func(title string, width, height int) (display.Surface, error)
	Init        func(format string) error
	Shutdown    func()
	Logger      *slog.Logger

	// Level, if set, receives the configured log level.
	Level *slog.LevelVar

	// Stats of the last completed viewer loop.
	Stats viewer.Stats
}

// New returns an App backed by the registered capture drivers and a HighGUI window.
func New(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Open: capture.Open,
		OpenSurface: func(title string, width, height int) (display.Surface, error) {
			return highgui.Open(title, width, height)
		},
		Init:     capture.Init,
		Shutdown: capture.Shutdown,
		Logger:   logger,
	}
}

// Run executes the viewer for the positional arguments args and returns the
// process exit code.
func (a *App) Run(ctx context.Context, prog string, args []string) int {
	log := a.Logger.With("session", uuid.NewString())

	cfg, err := config.FromArgs(args)
	if err != nil {
		log.Error("invalid arguments", "err", err)
		log.Info(config.Usage(prog))
		return ExitUsage
	}
	if a.Level != nil {
		a.Level.Set(cfg.LogLevel)
	}
	log = log.With("device", cfg.Device, "driver", cfg.Driver)

	if err := a.Init(cfg.Driver); err != nil {
		log.Error("capture library init failed", "err", err)
		if errors.Is(err, capture.ErrFormatNotFound) {
			return ExitOpen
		}
		return ExitInit
	}
	defer a.Shutdown()

	src, err := a.Open(ctx, capture.Request{
		Device:    cfg.Device,
		Format:    cfg.Driver,
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FrameRate,
		Codec:     cfg.Codec,
	})
	if err != nil {
		log.Error("could not open capture device", "err", err)
		return ExitOpen
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("close capture source", "err", err)
		}
	}()

	streams := src.Streams()
	stream, err := capture.SelectVideoStream(streams)
	if err != nil {
		log.Error("no usable video stream", "streams", len(streams), "err", err)
		return ExitStream
	}
	selected, _ := capture.StreamByIndex(streams, stream)
	log.Info("video stream selected", "stream", stream, "codec", selected.Codec)

	surface, err := a.OpenSurface(cfg.Title, cfg.Width, cfg.Height)
	if err != nil {
		log.Error("could not create window", "err", err)
		return ExitDisplay
	}
	defer func() {
		if err := surface.Close(); err != nil {
			log.Warn("close window", "err", err)
		}
	}()

	v := viewer.New(src, stream, surface, cfg.Width, cfg.Height, viewer.WithLogger(log))
	stats, err := v.Run(ctx)
	a.Stats = stats
	switch {
	case errors.Is(err, viewer.ErrRead):
		log.Warn("capture stopped on read error", "err", err)
	case err != nil:
		log.Error("capture loop failed", "err", err)
	}

	log.Info("viewer stopped",
		"reason", stats.Reason.String(),
		"packets", stats.PacketsRead,
		"frames", stats.FramesPresented,
		"skipped", stats.PacketsSkipped,
		"decode_errors", stats.DecodeErrors,
	)
	return ExitOK
}
