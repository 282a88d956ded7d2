package compose

import (
	"image"
	"strings"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// busIcon is the double-decker badge mark in BEST red.
const busIcon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64" width="64" height="64">
  <rect x="6" y="6" width="52" height="46" rx="8" ry="8" fill="#e2231a"/>
  <rect x="12" y="12" width="40" height="10" rx="2" ry="2" fill="#ffffff"/>
  <rect x="12" y="27" width="18" height="10" rx="2" ry="2" fill="#ffffff"/>
  <rect x="34" y="27" width="18" height="10" rx="2" ry="2" fill="#ffffff"/>
  <rect x="6" y="41" width="52" height="4" fill="#ffd600"/>
  <circle cx="18" cy="54" r="6" fill="#1c1c1c"/>
  <circle cx="46" cy="54" r="6" fill="#1c1c1c"/>
</svg>`

// rasterizeIcon renders an SVG document into a size x size RGBA image.
func rasterizeIcon(svg string, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg))
	if err != nil {
		return nil, errors.Wrap(err, "parse badge icon")
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)
	return img, nil
}
