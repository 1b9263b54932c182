// Package highgui shows frames in an OpenCV HighGUI window through gocv.
package highgui

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"v4l2view/internal/display"
)

// Window is a fixed-size HighGUI window.
type Window struct {
	win    *gocv.Window
	closed bool
}

// Open creates a window of width×height titled title.
func Open(title string, width, height int) (*Window, error) {
	win := gocv.NewWindow(title)
	if win == nil {
		return nil, fmt.Errorf("create window %q", title)
	}
	win.ResizeWindow(width, height)
	return &Window{win: win}, nil
}

// Present uploads img and shows it.
func (w *Window) Present(img image.Image) error {
	if w.closed {
		return display.ErrClosed
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer mat.Close()

	w.win.IMShow(mat)
	return nil
}

// Poll pumps the window's event loop and returns the keys pressed since the
// last call, plus a close event once the user has closed the window.
func (w *Window) Poll() []display.Event {
	if w.closed {
		return []display.Event{{Kind: display.EventClose}}
	}

	events := drainKeys(func() int { return w.win.WaitKey(1) })
	if w.win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		events = append(events, display.Event{Kind: display.EventClose})
	}
	return events
}

// drainKeys calls waitKey until it reports no key (-1) and returns one key
// event per pressed key, modifier bits masked off.
func drainKeys(waitKey func() int) []display.Event {
	var events []display.Event
	for key := waitKey(); key >= 0; key = waitKey() {
		events = append(events, display.Event{Kind: display.EventKey, Key: key & 0xff})
	}
	return events
}

// Close destroys the window.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.win.Close()
}

var _ display.Surface = (*Window)(nil)
