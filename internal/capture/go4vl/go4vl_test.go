package go4vl

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"v4l2view/internal/capture"
)

func nop() {}

func TestSourceDrainsChannel(t *testing.T) {
	frames := make(chan []byte, 2)
	frames <- []byte{0xff, 0xd8}
	frames <- []byte{0xff, 0xd9}
	close(frames)

	stopped := 0
	src := newSource(frames, nop, func() error { stopped++; return nil })

	if idx, err := capture.SelectVideoStream(src.Streams()); err != nil || idx != 0 {
		t.Fatalf("SelectVideoStream = %d, %v", idx, err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		p, err := src.ReadPacket(ctx)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if p.StreamIndex != 0 || len(p.Data) != 2 {
			t.Errorf("read %d: unexpected packet %+v", i, p)
		}
		p.Release()
	}
	if _, err := src.ReadPacket(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("closed channel should be io.EOF, got %v", err)
	}

	src.Close()
	src.Close()
	if stopped != 1 {
		t.Errorf("device closed %d times, want 1", stopped)
	}
	if _, err := src.ReadPacket(ctx); !errors.Is(err, capture.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestSourceSkipsEmptyFrames(t *testing.T) {
	frames := make(chan []byte, 4)
	frames <- []byte{}
	frames <- []byte{0xff, 0xd8, 0xff, 0xd9}
	frames <- nil
	close(frames)

	src := newSource(frames, nop, func() error { return nil })
	ctx := context.Background()

	p, err := src.ReadPacket(ctx)
	if err != nil {
		t.Fatalf("ReadPacket failed: %v", err)
	}
	if len(p.Data) != 4 {
		t.Errorf("got %d bytes, want the 4-byte frame", len(p.Data))
	}
	if _, err := src.ReadPacket(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("trailing empty frame should be skipped to io.EOF, got %v", err)
	}
	if src.discarded != 2 {
		t.Errorf("discarded = %d, want 2", src.discarded)
	}
}

// TestCloseUnblocksProducer mimics go4vl's stream loop: an unbuffered send
// that only checks ctx between frames.
func TestCloseUnblocksProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := make(chan []byte)
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		defer close(frames)
		for {
			frames <- []byte{0xff, 0xd8}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()

	deviceClosed := false
	src := newSource(frames, cancel, func() error {
		select {
		case <-exited:
		default:
			t.Error("device closed while the stream loop was still running")
		}
		deviceClosed = true
		return nil
	})

	if _, err := src.ReadPacket(context.Background()); err != nil {
		t.Fatalf("ReadPacket failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- src.Close() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return; producer stuck on send")
	}
	if !deviceClosed {
		t.Error("device was not closed")
	}
}

func TestSourceHonorsContext(t *testing.T) {
	src := newSource(make(chan []byte), nop, func() error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.ReadPacket(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
