package webcam

import (
	"sort"

	"github.com/blackjack/webcam"
)

// FrameSizes is the list a device reports for one pixel format.
type FrameSizes []webcam.FrameSize

func (slice FrameSizes) Len() int {
	return len(slice)
}

//For sorting purposes
func (slice FrameSizes) Less(i, j int) bool {
	ls := slice[i].MaxWidth * slice[i].MaxHeight
	rs := slice[j].MaxWidth * slice[j].MaxHeight
	return ls < rs
}

//For sorting purposes
func (slice FrameSizes) Swap(i, j int) {
	slice[i], slice[j] = slice[j], slice[i]
}

// Closest picks the frame size to request for width×height: the exact size if
// any entry (discrete or stepwise) allows it, otherwise the smallest size that
// covers the request, otherwise the largest size available.
func (slice FrameSizes) Closest(width, height uint32) (uint32, uint32, bool) {
	if len(slice) == 0 {
		return 0, 0, false
	}

	sizes := make(FrameSizes, len(slice))
	copy(sizes, slice)
	sort.Sort(sizes)

	for _, s := range sizes {
		if fits(width, s.MinWidth, s.MaxWidth, s.StepWidth) && fits(height, s.MinHeight, s.MaxHeight, s.StepHeight) {
			return width, height, true
		}
	}
	for _, s := range sizes {
		if s.MaxWidth >= width && s.MaxHeight >= height {
			return s.MaxWidth, s.MaxHeight, true
		}
	}
	last := sizes[len(sizes)-1]
	return last.MaxWidth, last.MaxHeight, true
}

func fits(v, min, max, step uint32) bool {
	if v < min || v > max {
		return false
	}
	if step == 0 {
		return v == min || v == max
	}
	return (v-min)%step == 0
}
