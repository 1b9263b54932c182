package capture

import (
	"context"
	"io"
	"sync"
)

// FakeSource is an in-memory Source fed with canned packets.
// It is used by tests that run the capture loop without a device.
type FakeSource struct {
	mu       sync.Mutex
	streams  []Stream
	packets  []*Packet
	readErr  error
	reads    int
	released int
	closed   bool
}

// NewFakeSource returns a source declaring streams and yielding packets in order,
// then io.EOF.
func NewFakeSource(streams []Stream, packets ...Packet) *FakeSource {
	f := &FakeSource{streams: streams}
	for i := range packets {
		f.Queue(packets[i].StreamIndex, packets[i].Data)
	}
	return f
}

// StreamsOf builds a stream list from media types, indexed in order.
func StreamsOf(types ...MediaType) []Stream {
	streams := make([]Stream, len(types))
	for i, t := range types {
		streams[i] = Stream{Index: i, Type: t}
	}
	return streams
}

// Queue appends a packet for stream.
func (f *FakeSource) Queue(stream int, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.packets = append(f.packets, NewPacket(stream, data, func() {
		f.mu.Lock()
		f.released++
		f.mu.Unlock()
	}))
}

// FailWith makes ReadPacket return err once the queue is drained, instead of io.EOF.
func (f *FakeSource) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

func (f *FakeSource) Streams() []Stream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams
}

func (f *FakeSource) ReadPacket(ctx context.Context) (*Packet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++
	if f.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.packets) == 0 {
		if f.readErr != nil {
			return nil, f.readErr
		}
		return nil, io.EOF
	}
	p := f.packets[0]
	f.packets = f.packets[1:]
	return p, nil
}

func (f *FakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Reads reports how many times ReadPacket was called.
func (f *FakeSource) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Released reports how many packets were released.
func (f *FakeSource) Released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// Pending reports how many queued packets were never read.
func (f *FakeSource) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.packets)
}

// Closed reports whether Close was called.
func (f *FakeSource) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var _ Source = (*FakeSource)(nil)
