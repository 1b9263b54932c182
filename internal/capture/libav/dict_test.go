package libav

import (
	"reflect"
	"testing"

	"v4l2view/internal/capture"
)

func TestOptions(t *testing.T) {
	req := capture.Request{Device: "/dev/video0", Format: "video4linux2", Width: 640, Height: 480, FrameRate: 30, Codec: "mjpeg"}

	d, err := newOptions(req.Options())
	if err != nil {
		t.Fatalf("newOptions failed: %v", err)
	}
	if d == nil {
		t.Fatal("newOptions returned an empty dictionary")
	}

	// nothing consumed them yet, so every key is still present, in insertion order
	want := []string{"input_format", "video_size", "framerate"}
	if got := unusedOptions(d); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}

	freeOptions(&d)
	if d != nil {
		t.Error("freeOptions should reset the dictionary to nil")
	}
	if got := unusedOptions(d); len(got) != 0 {
		t.Errorf("freed dictionary still lists %v", got)
	}
}

func TestOptionsEmpty(t *testing.T) {
	d, err := newOptions(nil)
	if err != nil {
		t.Fatalf("newOptions failed: %v", err)
	}
	if d != nil {
		t.Error("no options should leave the dictionary nil")
	}
	freeOptions(&d)
}
