// Package display defines the window the viewer draws into and the input it reports.
package display

import (
	"errors"
	"image"
)

// ErrClosed is returned when presenting to a surface that was closed.
var ErrClosed = errors.New("display closed")

// Key codes reported with EventKey.
const (
	KeyEscape = 27
	KeyQ      = 'q'
)

// EventKind tells what happened in the window.
type EventKind int

const (
	EventClose EventKind = iota + 1 // the window was closed by the user
	EventKey                        // a key was pressed
)

func (k EventKind) String() string {
	switch k {
	case EventClose:
		return "close"
	case EventKey:
		return "key"
	default:
		return "unknown"
	}
}

// Event is one input event drained from the window.
type Event struct {
	Kind EventKind
	Key  int
}

// IsQuit reports whether ev asks the viewer to stop: a window close, Escape or
// the q key (with or without shift).
func IsQuit(ev Event) bool {
	switch ev.Kind {
	case EventClose:
		return true
	case EventKey:
		return ev.Key == KeyEscape || ev.Key == KeyQ || ev.Key == 'Q'
	}
	return false
}

// AnyQuit reports whether any of events is a quit event.
func AnyQuit(events []Event) bool {
	for _, ev := range events {
		if IsQuit(ev) {
			return true
		}
	}
	return false
}

// Surface is a window frames are presented on.
type Surface interface {
	// Present shows img, replacing the previous frame.
	Present(img image.Image) error

	// Poll drains every pending input event without blocking.
	Poll() []Event

	// Close destroys the window.
	Close() error
}
