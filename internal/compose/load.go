package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
)

// Load decodes image bytes. Decoding happens off the caller's goroutine so
// a cancelled ctx releases the caller; failures are ImageLoadErrors.
//
// The header is read first: an image whose width*height exceeds maxPixels
// is rejected as PayloadTooLarge without decoding its pixels. A
// non-positive maxPixels disables the check.
func Load(ctx context.Context, data []byte, maxPixels int) (image.Image, error) {
	if len(data) == 0 {
		return nil, apperr.New(apperr.ImageLoad, "image is empty")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.ImageLoad, errors.Wrap(err, "decode image header"), "Failed to load image")
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, apperr.New(apperr.PayloadTooLarge,
			fmt.Sprintf("Image is %dx%d; the limit is %d pixels", cfg.Width, cfg.Height, maxPixels))
	}

	type loaded struct {
		img image.Image
		err error
	}
	done := make(chan loaded, 1)
	go func() {
		img, _, err := image.Decode(bytes.NewReader(data))
		done <- loaded{img, err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.ImageLoad, ctx.Err(), "image load cancelled")
	case res := <-done:
		if res.err != nil {
			return nil, apperr.Wrap(apperr.ImageLoad, errors.Wrap(res.err, "decode image"), "Failed to load image")
		}
		return res.img, nil
	}
}

// toRGBA copies img into an RGBA buffer whose bounds start at the origin.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
