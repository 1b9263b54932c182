// Package go4vl captures MJPEG from V4L2 devices with github.com/vladimirvivien/go4vl.
package go4vl

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"

	"v4l2view/internal/capture"
)

const DriverName = "go4vl"

func init() {
	capture.Register(&Driver{})
}

type Driver struct{}

func (d *Driver) Name() string { return DriverName }

// Open starts streaming MJPEG from req.Device. The device runs its own
// dequeue loop; frames are handed over on its output channel.
func (d *Driver) Open(ctx context.Context, req capture.Request) (capture.Source, error) {
	opts := []device.Option{
		device.WithBufferSize(2),
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtMJPEG,
			Width:       uint32(req.Width),
			Height:      uint32(req.Height),
			Field:       v4l2.FieldNone,
		}),
	}
	if req.FrameRate > 0 {
		opts = append(opts, device.WithFPS(uint32(req.FrameRate)))
	}

	dev, err := device.Open(req.Device, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, req.Device, err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	if err := dev.Start(streamCtx); err != nil {
		cancel()
		dev.Close()
		return nil, fmt.Errorf("%w: %s: start: %v", capture.ErrOpenDevice, req.Device, err)
	}

	return newSource(dev.GetOutput(), cancel, dev.Close), nil
}

// source adapts a frame channel to capture.Source.
type source struct {
	frames    <-chan []byte
	cancel    func()
	closeDev  func() error
	closed    bool
	discarded int
}

// newSource reads from frames. cancel stops the producer, which then closes
// frames; closeDev runs once frames is closed.
func newSource(frames <-chan []byte, cancel func(), closeDev func() error) *source {
	return &source{frames: frames, cancel: cancel, closeDev: closeDev}
}

func (s *source) Streams() []capture.Stream {
	return []capture.Stream{{Index: 0, Type: capture.MediaVideo, Codec: "mjpeg"}}
}

// ReadPacket returns the next non-empty frame. go4vl sends empty frames for
// buffers the driver flagged as bad; those are skipped.
func (s *source) ReadPacket(ctx context.Context) (*capture.Packet, error) {
	if s.closed {
		return nil, capture.ErrClosed
	}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case frame, ok := <-s.frames:
			if !ok {
				return nil, io.EOF
			}
			if len(frame) == 0 {
				s.discarded++
				slog.Debug("go4vl: empty frame skipped", "discarded", s.discarded)
				continue
			}
			return capture.NewPacket(0, frame, nil), nil
		}
	}
}

// Close stops the stream loop and drains its output until the loop has exited,
// so it is never left blocked on a send, then closes the device.
func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	for range s.frames {
	}
	return s.closeDev()
}
