// Package webcam talks to V4L2 devices directly through github.com/blackjack/webcam.
// It registers the "webcam" driver.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blackjack/webcam"
	"golang.org/x/sys/unix"

	"v4l2view/internal/capture"
)

const (
	// DriverName selects this backend on the command line.
	DriverName = "webcam"

	// seconds to wait for a frame before polling again
	waitTimeout = 5

	bufferCount = 4
)

func init() {
	capture.Register(&Driver{})
}

// Driver opens V4L2 devices through blackjack/webcam.
type Driver struct{}

func (d *Driver) Name() string { return DriverName }

// Open configures the device for Motion-JPEG at the frame size closest to the
// request and starts streaming.
func (d *Driver) Open(_ context.Context, req capture.Request) (capture.Source, error) {
	if err := checkCharDevice(req.Device); err != nil {
		return nil, err
	}

	cam, err := webcam.Open(req.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, req.Device, err)
	}

	s, err := configure(cam, req)
	if err != nil {
		cam.Close()
		return nil, err
	}
	return s, nil
}

func configure(cam *webcam.Webcam, req capture.Request) (*source, error) {
	formats := cam.GetSupportedFormats()
	format, ok := findMotionJPEG(formats)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no Motion-JPEG format", capture.ErrUnsupportedDevice, req.Device)
	}

	sizes := FrameSizes(cam.GetSupportedFrameSizes(format))
	width, height, ok := sizes.Closest(uint32(req.Width), uint32(req.Height))
	if !ok {
		return nil, fmt.Errorf("%w: %s reports no frame sizes for %s", capture.ErrUnsupportedDevice, req.Device, formats[format])
	}

	f, w, h, err := cam.SetImageFormat(format, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: set image format: %v", capture.ErrOpenDevice, req.Device, err)
	}
	slog.Debug("webcam: image format set", "device", req.Device, "format", formats[f], "width", w, "height", h)

	if req.FrameRate > 0 {
		// Not every driver implements VIDIOC_S_PARM; the device default is acceptable.
		if err := cam.SetFramerate(float32(req.FrameRate)); err != nil {
			slog.Warn("webcam: framerate not applied", "device", req.Device, "fps", req.FrameRate, "err", err)
		}
	}

	if err := cam.SetBufferCount(bufferCount); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, req.Device, err)
	}
	if err := cam.StartStreaming(); err != nil {
		return nil, fmt.Errorf("%w: %s: start streaming: %v", capture.ErrOpenDevice, req.Device, err)
	}

	return &source{
		cam:    cam,
		device: req.Device,
		streams: []capture.Stream{
			{Index: 0, Type: capture.MediaVideo, Codec: "mjpeg"},
		},
	}, nil
}

func findMotionJPEG(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	for f, desc := range formats {
		if strings.HasPrefix(desc, "Motion-JPEG") {
			return f, true
		}
	}
	return 0, false
}

func checkCharDevice(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, path, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return fmt.Errorf("%w: %s is not a character device", capture.ErrUnsupportedDevice, path)
	}
	return nil
}

type source struct {
	cam     *webcam.Webcam
	device  string
	streams []capture.Stream
	closed  bool
}

func (s *source) Streams() []capture.Stream { return s.streams }

// ReadPacket dequeues the next filled buffer. The packet aliases the mmap'ed
// buffer, which is queued back to the driver on Release.
func (s *source) ReadPacket(ctx context.Context) (*capture.Packet, error) {
	if s.closed {
		return nil, capture.ErrClosed
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := s.cam.WaitForFrame(waitTimeout)
		var timeout *webcam.Timeout
		switch {
		case err == nil:
		case errors.As(err, &timeout):
			slog.Debug("webcam: no frame yet", "device", s.device, "timeout_s", waitTimeout)
			continue
		default:
			return nil, fmt.Errorf("wait for frame: %w", err)
		}

		frame, index, err := s.cam.GetFrame()
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				continue
			}
			return nil, fmt.Errorf("get frame: %w", err)
		}
		if len(frame) == 0 {
			s.cam.ReleaseFrame(index)
			continue
		}

		return capture.NewPacket(0, frame, func() {
			if err := s.cam.ReleaseFrame(index); err != nil {
				slog.Warn("webcam: release frame failed", "device", s.device, "index", index, "err", err)
			}
		}), nil
	}
}

func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.cam.Close()
}
