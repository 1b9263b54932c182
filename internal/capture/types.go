package capture

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrFormatNotFound    = errors.New("input format not found")
	ErrAllocContext      = errors.New("failed to allocate input format context")
	ErrOpenDevice        = errors.New("failed to open input device")
	ErrUnsupportedDevice = errors.New("device does not provide a usable MJPEG stream")
	ErrClosed            = errors.New("capture source closed")
)

// MediaType classifies a stream the same way the demuxer does.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaVideo
	MediaAudio
	MediaData
	MediaSubtitle
	MediaAttachment
)

func (m MediaType) String() string {
	switch m {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	case MediaData:
		return "data"
	case MediaSubtitle:
		return "subtitle"
	case MediaAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// Stream describes one elementary stream of an opened source.
type Stream struct {
	Index int
	Type  MediaType
	Codec string
}

// Packet is one compressed chunk read from a source.
//
// Data may point into driver or library owned memory and is only valid
// until Release is called.
type Packet struct {
	StreamIndex int
	Data        []byte

	release func()
}

// NewPacket wraps data read from a backend; release, if non-nil, gives the
// backing buffer back and runs at most once.
func NewPacket(stream int, data []byte, release func()) *Packet {
	return &Packet{StreamIndex: stream, Data: data, release: release}
}

// Release returns the packet's backing buffer. Safe to call more than once.
func (p *Packet) Release() {
	if p == nil {
		return
	}
	if p.release != nil {
		p.release()
		p.release = nil
	}
	p.Data = nil
}

// Request carries the device path and the capture hints given to a backend.
type Request struct {
	Device    string
	Format    string // driver / input format name
	Width     int
	Height    int
	FrameRate int
	Codec     string
}

// Option is one key/value capture hint.
type Option struct {
	Key   string
	Value string
}

// Options renders the request as demuxer options, in the order they are applied.
// Zero values are left to the device defaults.
func (r Request) Options() []Option {
	var opts []Option
	if r.Codec != "" {
		opts = append(opts, Option{Key: "input_format", Value: r.Codec})
	}
	if r.Width > 0 && r.Height > 0 {
		opts = append(opts, Option{Key: "video_size", Value: fmt.Sprintf("%dx%d", r.Width, r.Height)})
	}
	if r.FrameRate > 0 {
		opts = append(opts, Option{Key: "framerate", Value: strconv.Itoa(r.FrameRate)})
	}
	return opts
}

// Source is an opened capture context.
type Source interface {
	// Streams lists the streams declared by the opened device.
	Streams() []Stream

	// ReadPacket blocks until the next packet is available. It returns
	// io.EOF once the stream has ended.
	ReadPacket(ctx context.Context) (*Packet, error)

	// Close releases the device.
	Close() error
}
