package compose

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
)

// CardStyle describes the frame Card draws around an image.
type CardStyle struct {
	Padding float64 // white space between the image and the rim
	Rim     float64 // width of the gradient rim
	Radius  float64 // outer corner radius
}

// DefaultCardStyle frames share codes.
var DefaultCardStyle = CardStyle{Padding: 24, Rim: 10, Radius: 36}

// Card mounts src on a rounded white card whose rim is filled with g.
// Corners outside the card stay transparent.
func Card(src image.Image, g palette.Gradient, st CardStyle) *image.RGBA {
	img := toRGBA(src)
	b := img.Bounds()
	inner := b.Dx()
	if b.Dy() > inner {
		inner = b.Dy()
	}
	side := inner + int(2*(st.Padding+st.Rim))
	fs := float64(side)
	dc := gg.NewContext(side, side)

	RoundedRect{W: fs, H: fs, R: st.Radius}.trace(dc)
	setGradient(dc, g, fs, fs)
	dc.Fill()

	RoundedRect{X: st.Rim, Y: st.Rim, W: fs - 2*st.Rim, H: fs - 2*st.Rim, R: st.Radius - st.Rim}.trace(dc)
	dc.SetRGB(1, 1, 1)
	dc.Fill()

	off := st.Rim + st.Padding
	dc.DrawImage(img, int(off)+(inner-b.Dx())/2, int(off)+(inner-b.Dy())/2)

	return dc.Image().(*image.RGBA)
}
