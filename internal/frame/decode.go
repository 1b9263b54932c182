// Package frame turns MJPEG packets into bitmaps and draws them onto the window canvas.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

var (
	ErrNotJPEG   = errors.New("not a JPEG image")
	ErrTruncated = errors.New("truncated JPEG header")
)

// JPEG markers
const (
	markerSOI = 0xd8
	markerEOI = 0xd9
	markerSOS = 0xda
	markerDHT = 0xc4
	markerTEM = 0x01
	markerRST = 0xd0 // through 0xd7
)

// Decode decodes one MJPEG packet. Webcams commonly drop the Huffman tables
// from every frame; those are restored from the standard tables first.
func Decode(data []byte) (image.Image, error) {
	fixed, err := WithHuffmanTables(data)
	if err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(bytes.NewReader(fixed))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	return img, nil
}

// WithHuffmanTables returns data unchanged if it defines a DHT segment before
// its scan, otherwise a copy with the standard tables inserted before SOS.
func WithHuffmanTables(data []byte) ([]byte, error) {
	sos, hasDHT, err := scanHeader(data)
	if err != nil {
		return nil, err
	}
	if hasDHT {
		return data, nil
	}

	out := make([]byte, 0, len(data)+len(standardDHT))
	out = append(out, data[:sos]...)
	out = append(out, standardDHT...)
	out = append(out, data[sos:]...)
	return out, nil
}

// scanHeader walks the marker segments up to the first SOS and returns its offset.
func scanHeader(data []byte) (sos int, hasDHT bool, err error) {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return 0, false, ErrNotJPEG
	}

	i := 2
	for {
		if i >= len(data) {
			return 0, false, ErrTruncated
		}
		if data[i] != 0xff {
			return 0, false, fmt.Errorf("%w: expected marker at offset %d", ErrNotJPEG, i)
		}
		// fill bytes
		for i < len(data) && data[i] == 0xff {
			i++
		}
		if i >= len(data) {
			return 0, false, ErrTruncated
		}
		marker := data[i]
		start := i - 1
		i++

		switch {
		case marker == markerSOS:
			return start, hasDHT, nil
		case marker == markerEOI:
			return 0, false, fmt.Errorf("%w: no scan before end of image", ErrNotJPEG)
		case marker == markerTEM || (marker >= markerRST && marker <= markerRST+7):
			continue
		case marker == markerDHT:
			hasDHT = true
		}

		if i+2 > len(data) {
			return 0, false, ErrTruncated
		}
		length := int(data[i])<<8 | int(data[i+1])
		if length < 2 {
			return 0, false, fmt.Errorf("%w: bad segment length %d", ErrNotJPEG, length)
		}
		i += length
	}
}
