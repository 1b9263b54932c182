// Program v4l2view shows a V4L2 webcam's MJPEG stream, mirrored, in a window.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"v4l2view/internal/app"

	_ "v4l2view/internal/capture/go4vl"
	_ "v4l2view/internal/capture/gstreamer"
	_ "v4l2view/internal/capture/libav"
	_ "v4l2view/internal/capture/webcam"
)

func init() {
	// HighGUI must stay on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var level slog.LevelVar
	a := app.New(NewLogger(os.Stderr, &level))
	a.Level = &level
	code := a.Run(ctx, filepath.Base(os.Args[0]), os.Args[1:])

	stop()
	os.Exit(code)
}
