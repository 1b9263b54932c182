package config

import (
	"errors"
	"strings"
	"testing"
)

func TestFromArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantDevice string
		wantDriver string
		wantErr    bool
	}{
		{name: "defaults", args: nil, wantDevice: "/dev/video0", wantDriver: "video4linux2"},
		{name: "device only", args: []string{"/dev/video2"}, wantDevice: "/dev/video2", wantDriver: "video4linux2"},
		{name: "device and driver", args: []string{"/dev/video1", "webcam"}, wantDevice: "/dev/video1", wantDriver: "webcam"},
		{name: "too many", args: []string{"a", "b", "c"}, wantErr: true},
		{name: "empty device", args: []string{""}, wantErr: true},
		{name: "empty driver", args: []string{"/dev/video0", ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromArgs(tt.args)
			if tt.wantErr {
				if !errors.Is(err, ErrUsage) {
					t.Fatalf("expected ErrUsage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromArgs failed: %v", err)
			}
			if cfg.Device != tt.wantDevice {
				t.Errorf("Device = %q, want %q", cfg.Device, tt.wantDevice)
			}
			if cfg.Driver != tt.wantDriver {
				t.Errorf("Driver = %q, want %q", cfg.Driver, tt.wantDriver)
			}
		})
	}
}

func TestDefaultCaptureHints(t *testing.T) {
	cfg := Default()

	if got := cfg.VideoSize(); got != "640x480" {
		t.Errorf("VideoSize = %q, want 640x480", got)
	}
	if cfg.FrameRate != 30 {
		t.Errorf("FrameRate = %d, want 30", cfg.FrameRate)
	}
	if cfg.Codec != "mjpeg" {
		t.Errorf("Codec = %q, want mjpeg", cfg.Codec)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}

	cfg.Width = 0
	if err := cfg.Validate(); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage for zero width, got %v", err)
	}

	cfg = Default()
	cfg.FrameRate = -1
	if err := cfg.Validate(); !errors.Is(err, ErrUsage) {
		t.Errorf("expected ErrUsage for negative framerate, got %v", err)
	}
}

func TestUsage(t *testing.T) {
	u := Usage("v4l2view")
	if !strings.Contains(u, "/dev/video0") || !strings.Contains(u, "video4linux2") {
		t.Errorf("usage should mention the defaults: %q", u)
	}
}

