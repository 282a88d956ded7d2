package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/imagedata"
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
)

// ComposeRequest is the body of POST /api/compose.
type ComposeRequest struct {
	ImageBase64 string   `json:"imageBase64"`
	MimeType    string   `json:"mimeType,omitempty"`
	Background  string   `json:"background,omitempty"`
	Stops       []string `json:"stops,omitempty"`
}

// gradient resolves the backdrop: explicit stops win, then a background ID,
// then the default background.
func (r ComposeRequest) gradient() (palette.Gradient, error) {
	if len(r.Stops) > 0 {
		g, err := palette.ParseGradient(r.Stops...)
		if err != nil {
			return nil, apperr.Wrap(apperr.InvalidRequest, err, "")
		}
		return g, nil
	}
	bg := palette.Default()
	if r.Background != "" {
		var ok bool
		if bg, ok = palette.Lookup(r.Background); !ok {
			return nil, apperr.New(apperr.InvalidRequest, "unknown background "+r.Background)
		}
	}
	g, err := bg.Gradient()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "")
	}
	return g, nil
}

// Compose renders the downloadable avatar. The PNG is sent as an attachment,
// or as {dataUrl, filename} with ?as=dataurl.
func (h *Handler) Compose(c *gin.Context) {
	var req ComposeRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.ImageBase64 == "" {
		h.fail(c, apperr.New(apperr.InvalidRequest, "imageBase64 is required"))
		return
	}
	data, err := imagedata.Decode(req.ImageBase64)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.InvalidRequest, err, "imageBase64 is not valid base64"))
		return
	}
	if req.MimeType != "" && !imagedata.IsImageMIME(req.MimeType) {
		h.fail(c, apperr.New(apperr.InvalidRequest, "mimeType must be an image type"))
		return
	}
	g, err := req.gradient()
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := h.compositor.Compose(c.Request.Context(), data, g)
	if err != nil {
		h.fail(c, err)
		return
	}

	if c.Query("as") == "dataurl" {
		c.JSON(http.StatusOK, gin.H{"dataUrl": out.DataURL(), "filename": out.Filename})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, "image/png", out.PNG)
}
