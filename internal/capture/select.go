package capture

import (
	"errors"
	"fmt"
)

// NoStream is returned by SelectVideoStream when no single video stream exists.
const NoStream = -1

var (
	ErrNoVideoStream        = errors.New("no video stream")
	ErrAmbiguousVideoStream = errors.New("more than one video stream")
)

// SelectVideoStream returns the index of the only video stream in streams.
// Zero or several video streams yield NoStream; ambiguity is not resolved
// by picking one.
func SelectVideoStream(streams []Stream) (int, error) {
	video := make(map[int]struct{})
	for _, s := range streams {
		if s.Type == MediaVideo {
			video[s.Index] = struct{}{}
		}
	}

	switch len(video) {
	case 0:
		return NoStream, fmt.Errorf("%w among %d streams", ErrNoVideoStream, len(streams))
	case 1:
		for idx := range video {
			return idx, nil
		}
	}
	return NoStream, fmt.Errorf("%w: found %d", ErrAmbiguousVideoStream, len(video))
}

// StreamByIndex finds the stream whose Index is index. Indices need not match
// slice positions.
func StreamByIndex(streams []Stream, index int) (Stream, bool) {
	for _, s := range streams {
		if s.Index == index {
			return s, true
		}
	}
	return Stream{}, false
}
