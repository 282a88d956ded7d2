package compose

import "math"

// Fit places a source image over a square canvas.
type Fit struct {
	Scale            float64
	Width, Height    float64
	OffsetX, OffsetY float64
}

// CoverFit scales a srcW x srcH image uniformly until it covers a
// size x size canvas, centring it so overflow is cropped evenly.
func CoverFit(srcW, srcH int, size float64) Fit {
	scale := math.Max(size/float64(srcW), size/float64(srcH))
	w := float64(srcW) * scale
	h := float64(srcH) * scale
	return Fit{
		Scale:   scale,
		Width:   w,
		Height:  h,
		OffsetX: (size - w) / 2,
		OffsetY: (size - h) / 2,
	}
}
