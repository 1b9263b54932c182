// Package viewer runs the capture → decode → present → poll loop.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"v4l2view/internal/capture"
	"v4l2view/internal/display"
	"v4l2view/internal/frame"
)

// ErrRead wraps the read error that ended the loop.
var ErrRead = errors.New("read packet")

// State of the loop. STOPPED is terminal.
type State int

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// StopReason tells why the loop stopped.
type StopReason int

const (
	StopNone StopReason = iota
	StopEndOfStream
	StopReadError
	StopQuit
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfStream:
		return "end of stream"
	case StopReadError:
		return "read error"
	case StopQuit:
		return "quit"
	case StopCancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Stats counts what the loop did.
type Stats struct {
	PacketsRead     int
	PacketsSkipped  int
	FramesPresented int
	DecodeErrors    int
	PresentErrors   int
	Reason          StopReason
}

// DecodeFunc turns one compressed packet into a bitmap.
type DecodeFunc func(data []byte) (image.Image, error)

// Viewer owns one capture source and one surface for the duration of Run.
type Viewer struct {
	src     capture.Source
	stream  int
	surface display.Surface
	decode  DecodeFunc
	canvas  *image.RGBA
	logger  *slog.Logger

	state State
	stats Stats
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithDecoder replaces the MJPEG decoder.
func WithDecoder(fn DecodeFunc) Option {
	return func(v *Viewer) { v.decode = fn }
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// New builds a viewer presenting packets of stream from src on surface,
// mirrored onto a width×height canvas.
func New(src capture.Source, stream int, surface display.Surface, width, height int, opts ...Option) *Viewer {
	v := &Viewer{
		src:     src,
		stream:  stream,
		surface: surface,
		decode:  frame.Decode,
		canvas:  frame.NewCanvas(width, height),
		logger:  slog.Default(),
		state:   Running,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "viewer")
	return v
}

// State returns the current loop state.
func (v *Viewer) State() State { return v.state }

// Stats returns the counters collected so far.
func (v *Viewer) Stats() Stats { return v.stats }

// Run loops until the stream ends, a read fails, the user quits or ctx is
// cancelled. Only a read failure other than end of stream is returned, wrapped
// in ErrRead. Run does nothing once the viewer has stopped.
func (v *Viewer) Run(ctx context.Context) (Stats, error) {
	for v.state == Running {
		if err := ctx.Err(); err != nil {
			v.stop(StopCancelled)
			break
		}

		pkt, err := v.src.ReadPacket(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				v.stop(StopEndOfStream)
			case ctx.Err() != nil:
				v.stop(StopCancelled)
			default:
				v.stop(StopReadError)
				return v.stats, fmt.Errorf("%w: %w", ErrRead, err)
			}
			break
		}
		v.stats.PacketsRead++

		if pkt.StreamIndex != v.stream {
			v.stats.PacketsSkipped++
			v.logger.Warn("packet is not for the video stream", "stream", pkt.StreamIndex, "video_stream", v.stream)
			pkt.Release()
			continue
		}

		v.show(pkt)
		pkt.Release()

		if display.AnyQuit(v.surface.Poll()) {
			v.stop(StopQuit)
		}
	}
	return v.stats, nil
}

// show decodes pkt and presents it. Failures are logged and counted, never fatal.
func (v *Viewer) show(pkt *capture.Packet) {
	img, err := v.decode(pkt.Data)
	if err != nil {
		v.stats.DecodeErrors++
		v.logger.Warn("failed to decode frame", "bytes", len(pkt.Data), "err", err)
		return
	}

	frame.Mirror(v.canvas, img)
	if err := v.surface.Present(v.canvas); err != nil {
		v.stats.PresentErrors++
		v.logger.Warn("failed to present frame", "err", err)
		return
	}
	v.stats.FramesPresented++
}

func (v *Viewer) stop(reason StopReason) {
	v.state = Stopped
	v.stats.Reason = reason
	v.logger.Debug("capture loop stopped", "reason", reason.String(), "frames", v.stats.FramesPresented)
}
