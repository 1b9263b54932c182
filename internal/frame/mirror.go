package frame

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Scaler is the interpolator used by Mirror.
var Scaler draw.Transformer = draw.ApproxBiLinear

// NewCanvas allocates the window-sized target frames are drawn onto.
func NewCanvas(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Mirror stretches src over the whole of dst, flipped horizontally, the way a
// selfie preview shows the camera.
func Mirror(dst draw.Image, src image.Image) {
	db := dst.Bounds()
	sb := src.Bounds()
	if db.Empty() || sb.Empty() {
		return
	}

	sx := float64(db.Dx()) / float64(sb.Dx())
	sy := float64(db.Dy()) / float64(sb.Dy())

	m := f64.Aff3{
		-sx, 0, float64(db.Max.X) + sx*float64(sb.Min.X),
		0, sy, float64(db.Min.Y) - sy*float64(sb.Min.Y),
	}
	Scaler.Transform(dst, m, src, sb, draw.Src, nil)
}
