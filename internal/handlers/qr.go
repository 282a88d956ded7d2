package handlers

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"github.com/yeqown/go-qrcode/writer/standard/shapes"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/compose"
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
)

const (
	maxURLLength = 4096
	qrAngle      = 45
)

// normalizeHTTPURL validates and normalizes a URL string for QR generation.
// It ensures an http/https scheme and a non-empty host.
func normalizeHTTPURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", errors.New("URL parameter is required")
	}
	if len(v) > maxURLLength {
		return "", errors.New("URL is too long")
	}
	// If missing scheme, default to https
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", errors.Wrap(err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", errors.New("URL must include a valid host")
	}
	return u.String(), nil
}

// parseColorParam parses a hex colour query value, falling back to def.
func parseColorParam(param string, def color.RGBA) color.RGBA {
	if param == "" {
		return def
	}
	c, err := palette.ParseHex(param)
	if err != nil {
		return def
	}
	return c
}

// moduleWidth is the pixel size of one QR module for each size preset.
func moduleWidth(size string) uint8 {
	if size == "download" {
		return 24
	}
	return 8
}

// customShape adapts a shapes draw function to the writer's shape interface.
type customShape struct {
	drawFunc func(ctx *standard.DrawContext)
}

func (cs *customShape) Draw(ctx *standard.DrawContext)       { cs.drawFunc(ctx) }
func (cs *customShape) DrawFinder(ctx *standard.DrawContext) { cs.drawFunc(ctx) }

func shapeOption(name string) (standard.ImageOption, bool) {
	switch name {
	case "circle":
		return standard.WithCircleShape(), true
	case "liquid":
		return standard.WithCustomShape(&customShape{drawFunc: shapes.LiquidBlock()}), true
	default:
		return nil, false
	}
}

type bufferCloser struct{ *bytes.Buffer }

func (bufferCloser) Close() error { return nil }

// QRCodeHandler renders a share code for the studio: the modules use the
// selected background's gradient and the code sits on a rounded card
// framed in the same gradient. Without ?url= the code points at the
// studio itself.
func (h *Handler) QRCodeHandler(c *gin.Context) {
	target := c.Query("url")
	if strings.TrimSpace(target) == "" {
		target = origin(c) + "/"
	}
	normalizedURL, err := normalizeHTTPURL(target)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.InvalidRequest, err, ""))
		return
	}

	bg := palette.Default()
	if id := c.Query("background"); id != "" {
		var ok bool
		if bg, ok = palette.Lookup(id); !ok {
			h.fail(c, apperr.New(apperr.InvalidRequest, "unknown background "+id))
			return
		}
	}
	g, err := bg.Gradient()
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.Internal, err, ""))
		return
	}

	qrc, err := qrcode.NewWith(normalizedURL, qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart))
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.Internal, err, "Failed to create QR code"))
		return
	}

	stops := make([]standard.ColorStop, len(g))
	for i, off := range palette.Offsets(len(g)) {
		stops[i] = standard.ColorStop{T: off, Color: g[i]}
	}
	if len(stops) == 1 {
		stops = append(stops, standard.ColorStop{T: 1, Color: g[0]})
	}

	opts := []standard.ImageOption{
		standard.WithQRWidth(moduleWidth(c.DefaultQuery("size", "preview"))),
		standard.WithBorderWidth(0),
		standard.WithBgColor(parseColorParam(c.Query("bg"), color.RGBA{255, 255, 255, 255})),
		standard.WithFgGradient(standard.NewGradient(qrAngle, stops...)),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
	if opt, ok := shapeOption(c.Query("shape")); ok {
		opts = append(opts, opt)
	}

	var raw bytes.Buffer
	if err := qrc.Save(standard.NewWithWriter(bufferCloser{&raw}, opts...)); err != nil {
		h.fail(c, apperr.Wrap(apperr.Internal, err, "Failed to generate QR code image"))
		return
	}

	code, err := png.Decode(&raw)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.Internal, err, "Failed to generate QR code image"))
		return
	}
	var out bytes.Buffer
	if err := png.Encode(&out, compose.Card(code, g, compose.DefaultCardStyle)); err != nil {
		h.fail(c, apperr.Wrap(apperr.Internal, err, "Failed to encode QR code image"))
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", out.Bytes())
}
