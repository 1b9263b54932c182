// Package capture opens webcam devices and reads their compressed packet stream.
//
// Backends live in sub-packages and register a Driver from init:
//
//	libav      any libav input format (video4linux2, v4l2, mjpeg, ...); the fallback
//	webcam     direct V4L2 access through github.com/blackjack/webcam
//	go4vl      direct V4L2 access through github.com/vladimirvivien/go4vl
//	gstreamer  v4l2src ! image/jpeg ! appsink through go-gst
//
// A Source exposes the device's stream list and hands out one Packet at a
// time. Every packet must be released before the next read.
package capture
