// Package libav captures through libavformat/libavdevice. It serves every
// input format name libav knows, video4linux2 included.
package libav

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"unsafe"

	"github.com/giorgisio/goav/avcodec"
	"github.com/giorgisio/goav/avdevice"
	"github.com/giorgisio/goav/avformat"
	"github.com/giorgisio/goav/avutil"

	"v4l2view/internal/capture"
)

func init() {
	capture.RegisterFallback(&Driver{})
}

// Driver opens libav input formats.
type Driver struct{}

func (d *Driver) Name() string { return "libav" }

// Init registers the muxers, demuxers and input devices and sets up the network layer.
func (d *Driver) Init() error {
	avformat.AvRegisterAll()
	avdevice.AvdeviceRegisterAll()
	if ret := avformat.AvformatNetworkInit(); ret < 0 {
		return fmt.Errorf("avformat_network_init: %v", avutil.ErrorFromCode(ret))
	}
	return nil
}

func (d *Driver) Shutdown() {
	avformat.AvformatNetworkDeinit()
}

// Open resolves req.Format as a libav input format, applies the capture hints
// and opens req.Device.
func (d *Driver) Open(_ context.Context, req capture.Request) (capture.Source, error) {
	inputFormat := avformat.AvFindInputFormat(req.Format)
	if inputFormat == nil {
		return nil, fmt.Errorf("%w: %s", capture.ErrFormatNotFound, req.Format)
	}

	options, err := newOptions(req.Options())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, req.Device, err)
	}
	defer freeOptions(&options)

	formatCtx := avformat.AvformatAllocContext()
	if formatCtx == nil {
		return nil, capture.ErrAllocContext
	}

	// avformat_open_input frees the context itself when it fails.
	if ret := avformat.AvformatOpenInput(&formatCtx, req.Device, inputFormat, &options); ret != 0 {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrOpenDevice, req.Device, avutil.ErrorFromCode(ret))
	}
	if unused := unusedOptions(options); len(unused) > 0 {
		slog.Warn("libav: options not applied", "device", req.Device, "format", req.Format, "options", unused)
	}
	if ret := formatCtx.AvformatFindStreamInfo(nil); ret < 0 {
		formatCtx.AvformatCloseInput()
		return nil, fmt.Errorf("%w: %s: no stream info: %v", capture.ErrOpenDevice, req.Device, avutil.ErrorFromCode(ret))
	}

	s := &source{
		formatCtx: formatCtx,
		pkt:       avcodec.AvPacketAlloc(),
		streams:   streamsOf(formatCtx),
	}
	slog.Debug("libav: input opened", "device", req.Device, "format", req.Format, "streams", len(s.streams))
	return s, nil
}

func streamsOf(formatCtx *avformat.Context) []capture.Stream {
	var streams []capture.Stream
	for i, st := range formatCtx.Streams() {
		par := st.CodecParameters()

		kind := capture.MediaUnknown
		switch par.AvCodecGetType() {
		case avformat.AVMEDIA_TYPE_VIDEO:
			kind = capture.MediaVideo
		case avformat.AVMEDIA_TYPE_AUDIO:
			kind = capture.MediaAudio
		}

		streams = append(streams, capture.Stream{
			Index: i,
			Type:  kind,
			Codec: codecName(int(par.AvCodecGetId())),
		})
	}
	return streams
}

func codecName(id int) string {
	if id == avcodec.AV_CODEC_ID_MJPEG {
		return "mjpeg"
	}
	return "codec-" + strconv.Itoa(id)
}

// source wraps an opened AVFormatContext. A single AVPacket is reused: the
// packet handed out aliases its buffer until Release unrefs it.
type source struct {
	formatCtx *avformat.Context
	pkt       *avcodec.Packet
	streams   []capture.Stream
	closed    bool
}

func (s *source) Streams() []capture.Stream { return s.streams }

func (s *source) ReadPacket(ctx context.Context) (*capture.Packet, error) {
	if s.closed {
		return nil, capture.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ret := s.formatCtx.AvReadFrame(s.pkt)
	if ret == avutil.AvErrorEOF {
		return nil, io.EOF
	}
	if ret < 0 {
		return nil, fmt.Errorf("av_read_frame: %v", avutil.ErrorFromCode(ret))
	}

	var data []byte
	if size := s.pkt.Size(); size > 0 {
		data = unsafe.Slice((*byte)(unsafe.Pointer(s.pkt.Data())), size)
	}
	return capture.NewPacket(s.pkt.StreamIndex(), data, s.pkt.AvPacketUnref), nil
}

func (s *source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pkt.AvPacketUnref()
	s.formatCtx.AvformatCloseInput()
	return nil
}
