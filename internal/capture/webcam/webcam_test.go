package webcam

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackjack/webcam"

	"v4l2view/internal/capture"
)

func discrete(w, h uint32) webcam.FrameSize {
	return webcam.FrameSize{MinWidth: w, MaxWidth: w, MinHeight: h, MaxHeight: h}
}

func TestFrameSizesClosest(t *testing.T) {
	tests := []struct {
		name          string
		sizes         FrameSizes
		width, height uint32
		wantW, wantH  uint32
		wantOK        bool
	}{
		{name: "empty", sizes: nil, width: 640, height: 480},
		{name: "exact discrete", sizes: FrameSizes{discrete(1280, 720), discrete(640, 480), discrete(320, 240)}, width: 640, height: 480, wantW: 640, wantH: 480, wantOK: true},
		{name: "smallest covering", sizes: FrameSizes{discrete(1920, 1080), discrete(800, 600), discrete(320, 240)}, width: 640, height: 480, wantW: 800, wantH: 600, wantOK: true},
		{name: "largest when nothing covers", sizes: FrameSizes{discrete(160, 120), discrete(320, 240)}, width: 640, height: 480, wantW: 320, wantH: 240, wantOK: true},
		{
			name: "stepwise",
			sizes: FrameSizes{{
				MinWidth: 160, MaxWidth: 1920, StepWidth: 16,
				MinHeight: 120, MaxHeight: 1080, StepHeight: 8,
			}},
			width:  640,
			height: 480,
			wantW:  640,
			wantH:  480,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, ok := tt.sizes.Closest(tt.width, tt.height)
			if ok != tt.wantOK || w != tt.wantW || h != tt.wantH {
				t.Errorf("Closest = %dx%d %v, want %dx%d %v", w, h, ok, tt.wantW, tt.wantH, tt.wantOK)
			}
		})
	}
}

func TestFindMotionJPEG(t *testing.T) {
	formats := map[webcam.PixelFormat]string{
		0x56595559: "YUYV 4:2:2",
		0x47504a4d: "Motion-JPEG",
	}
	f, ok := findMotionJPEG(formats)
	if !ok || f != 0x47504a4d {
		t.Errorf("findMotionJPEG = %#x %v", f, ok)
	}

	if _, ok := findMotionJPEG(map[webcam.PixelFormat]string{0x56595559: "YUYV 4:2:2"}); ok {
		t.Error("raw-only device should not report Motion-JPEG")
	}
}

func TestOpenRejectsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video0")
	if err := os.WriteFile(path, []byte("not a device"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := (&Driver{}).Open(context.Background(), capture.Request{Device: path, Format: DriverName})
	if !errors.Is(err, capture.ErrUnsupportedDevice) {
		t.Errorf("expected ErrUnsupportedDevice, got %v", err)
	}

	_, err = (&Driver{}).Open(context.Background(), capture.Request{Device: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, capture.ErrOpenDevice) {
		t.Errorf("expected ErrOpenDevice for a missing path, got %v", err)
	}
}
