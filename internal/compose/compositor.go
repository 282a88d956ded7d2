// Package compose renders the final shareable avatar: a brand gradient
// backdrop, the cover-fitted portrait clipped to a rounded square, a
// caption badge and a decorative border, exported as PNG.
package compose

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/config"
	"github.com/cristianadrielbraun/avatarstudio/internal/imagedata"
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
)

// Layout constants, in canvas units.
const (
	CanvasSize = config.DefaultCanvasSize

	ClipRadius = 40

	BadgeX       = 28
	BadgeBottom  = 88 // badge top sits this far above the bottom edge
	BadgeWidth   = 240
	BadgeHeight  = 54
	BadgeRadius  = 16
	BadgeOpacity = 0.75

	BorderInset     = 12
	BorderRadius    = 32
	BorderLineWidth = 8
	BorderOpacity   = 0.6

	iconSize    = 30
	iconPadding = 14
	captionGap  = 10
	captionSize = 20
)

// Caption is the badge text.
const Caption = config.DefaultCaption

// DefaultMaxPixels is the largest source image New accepts.
const DefaultMaxPixels = config.DefaultMaxImagePixels

// Filename is the name offered for the downloaded PNG.
const Filename = "ethmumbai-avatar.png"

// Compositor renders avatars. It is safe for concurrent use once built.
type Compositor struct {
	size      int
	caption   string
	maxPixels int
	font      *truetype.Font
	icon      *image.RGBA
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithSize overrides the canvas side length.
func WithSize(size int) Option {
	return func(c *Compositor) { c.size = size }
}

// WithCaption overrides the badge text.
func WithCaption(caption string) Option {
	return func(c *Compositor) { c.caption = caption }
}

// WithMaxPixels caps width*height of source images; a non-positive value
// removes the cap.
func WithMaxPixels(n int) Option {
	return func(c *Compositor) { c.maxPixels = n }
}

// FromConfig builds a Compositor from the service settings. Zero fields
// keep the built-in defaults.
func FromConfig(cfg config.ComposeConfig) (*Compositor, error) {
	var opts []Option
	if cfg.CanvasSize != 0 {
		opts = append(opts, WithSize(cfg.CanvasSize))
	}
	if cfg.Caption != "" {
		opts = append(opts, WithCaption(cfg.Caption))
	}
	if cfg.MaxImagePixels != 0 {
		opts = append(opts, WithMaxPixels(cfg.MaxImagePixels))
	}
	return New(opts...)
}

// New builds a Compositor with the embedded Go Bold face and badge icon.
func New(opts ...Option) (*Compositor, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parse caption font")
	}
	icon, err := rasterizeIcon(busIcon, iconSize)
	if err != nil {
		return nil, err
	}

	c := &Compositor{size: CanvasSize, caption: Caption, maxPixels: DefaultMaxPixels, font: f, icon: icon}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Size returns the canvas side length.
func (c *Compositor) Size() int { return c.size }

// Caption returns the badge text.
func (c *Compositor) Caption() string { return c.caption }

// Output is an encoded avatar ready for download.
type Output struct {
	PNG      []byte
	Filename string
}

// DataURL returns the PNG as a data URL.
func (o Output) DataURL() string {
	return imagedata.DataURL("image/png", o.PNG)
}

// Compose decodes data, renders it over g and encodes the result.
func (c *Compositor) Compose(ctx context.Context, data []byte, g palette.Gradient) (*Output, error) {
	src, err := Load(ctx, data, c.maxPixels)
	if err != nil {
		return nil, err
	}
	img, err := c.Render(src, g)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperr.Wrap(apperr.Internal, errors.Wrap(err, "encode png"), "")
	}
	return &Output{PNG: buf.Bytes(), Filename: Filename}, nil
}

// Render draws src over the gradient g and returns the canvas.
func (c *Compositor) Render(src image.Image, g palette.Gradient) (*image.RGBA, error) {
	if c.size <= 0 {
		return nil, apperr.New(apperr.CanvasUnsupported, "Canvas is not supported")
	}
	if src == nil || src.Bounds().Empty() {
		return nil, apperr.New(apperr.ImageLoad, "image has no pixels")
	}
	if len(g) == 0 {
		return nil, apperr.New(apperr.InvalidRequest, "gradient needs at least one stop")
	}

	size := float64(c.size)
	dc := gg.NewContext(c.size, c.size)

	c.fillBackground(dc, g)
	c.drawPortrait(dc, src)
	c.drawBadge(dc)

	border := RoundedRect{
		X: BorderInset, Y: BorderInset,
		W: size - 2*BorderInset, H: size - 2*BorderInset,
		R: BorderRadius,
	}
	border.trace(dc)
	dc.SetRGBA(1, 1, 1, BorderOpacity)
	dc.SetLineWidth(BorderLineWidth)
	dc.Stroke()

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, apperr.New(apperr.CanvasUnsupported, "Canvas is not supported")
	}
	return rgba, nil
}

func (c *Compositor) fillBackground(dc *gg.Context, g palette.Gradient) {
	size := float64(c.size)
	setGradient(dc, g, size, size)
	dc.DrawRectangle(0, 0, size, size)
	dc.Fill()
}

// setGradient selects g as the fill, running diagonally from the origin to
// (w, h). A single stop is a solid fill.
func setGradient(dc *gg.Context, g palette.Gradient, w, h float64) {
	if len(g) == 1 {
		dc.SetColor(g[0])
		return
	}
	grad := gg.NewLinearGradient(0, 0, w, h)
	for i, off := range palette.Offsets(len(g)) {
		grad.AddColorStop(off, g[i])
	}
	dc.SetFillStyle(grad)
}

func (c *Compositor) drawPortrait(dc *gg.Context, src image.Image) {
	size := float64(c.size)
	img := toRGBA(src)
	fit := CoverFit(img.Bounds().Dx(), img.Bounds().Dy(), size)

	RoundedRect{W: size, H: size, R: ClipRadius}.trace(dc)
	dc.Clip()

	dc.Push()
	dc.Translate(fit.OffsetX, fit.OffsetY)
	dc.Scale(fit.Scale, fit.Scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()

	dc.ResetClip()
}

func (c *Compositor) drawBadge(dc *gg.Context) {
	badge := RoundedRect{
		X: BadgeX, Y: float64(c.size) - BadgeBottom,
		W: BadgeWidth, H: BadgeHeight,
		R: BadgeRadius,
	}
	badge.trace(dc)
	dc.SetRGBA(0, 0, 0, BadgeOpacity)
	dc.Fill()

	midY := badge.Y + badge.H/2
	iconX := badge.X + iconPadding
	dc.DrawImage(c.icon, int(iconX), int(midY-iconSize/2))

	dc.SetFontFace(c.face())
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(c.caption, iconX+iconSize+captionGap, midY, 0, 0.5)
}

// face returns a fresh font face; truetype faces cache glyphs and are not
// safe to share between goroutines.
func (c *Compositor) face() font.Face {
	return truetype.NewFace(c.font, &truetype.Options{Size: captionSize})
}
