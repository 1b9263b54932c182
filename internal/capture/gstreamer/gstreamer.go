// Package gstreamer captures MJPEG through a v4l2src → appsink GStreamer pipeline.
package gstreamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"v4l2view/internal/capture"
)

const (
	DriverName = "gstreamer"
	sinkName   = "sink"
)

var (
	errPullSample = errors.New("gstreamer: pull sample failed")
	errNoBuffer   = errors.New("gstreamer: sample without buffer")
)

func init() {
	capture.Register(&Driver{})
}

type Driver struct{}

func (d *Driver) Name() string { return DriverName }

// Init initializes GStreamer (safe to call multiple times).
func (d *Driver) Init() error {
	gst.Init(nil)
	return nil
}

func (d *Driver) Shutdown() {
	gst.Deinit()
}

// Launch renders the pipeline description for req.
func Launch(req capture.Request) string {
	caps := "image/jpeg"
	if req.Width > 0 && req.Height > 0 {
		caps += fmt.Sprintf(",width=%d,height=%d", req.Width, req.Height)
	}
	if req.FrameRate > 0 {
		caps += fmt.Sprintf(",framerate=%d/1", req.FrameRate)
	}
	return fmt.Sprintf("v4l2src device=%s ! %s ! appsink name=%s max-buffers=2 drop=false sync=false",
		req.Device, caps, sinkName)
}

func (d *Driver) Open(_ context.Context, req capture.Request) (capture.Source, error) {
	launch := Launch(req)
	slog.Debug("gstreamer: creating pipeline", "launch", launch)

	pipeline, err := gst.NewPipelineFromString(launch)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, req.Device, err)
	}

	elem, err := pipeline.GetElementByName(sinkName)
	if err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("%w: %s: appsink: %v", capture.ErrOpenDevice, req.Device, err)
	}
	sink := app.SinkFromElement(elem)

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		pipeline.SetState(gst.StateNull)
		return nil, fmt.Errorf("%w: %s: set playing: %v", capture.ErrOpenDevice, req.Device, err)
	}

	return &source{pipeline: pipeline, sink: sink}, nil
}

type source struct {
	pipeline *gst.Pipeline
	sink     *app.Sink
	closed   bool
}

func (s *source) Streams() []capture.Stream {
	return []capture.Stream{{Index: 0, Type: capture.MediaVideo, Codec: "mjpeg"}}
}

// ReadPacket pulls the next sample from the appsink. The buffer is copied out
// because GStreamer reuses it once unmapped.
func (s *source) ReadPacket(ctx context.Context) (*capture.Packet, error) {
	if s.closed {
		return nil, capture.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sample := s.sink.PullSample()
	if sample == nil {
		if s.sink.IsEOS() {
			return nil, io.EOF
		}
		return nil, errPullSample
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		return nil, errNoBuffer
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	frame := make([]byte, len(data))
	copy(frame, data)
	buffer.Unmap()

	return capture.NewPacket(0, frame, nil), nil
}

func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.pipeline.SetState(gst.StateNull)
}
