package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/gemini"
)

const (
	msgMissingBody = "Missing request body"
	msgTooLarge    = "Request body too large"
)

// readBody reads the whole request body, mapping an overrun of the body
// limit to PayloadTooLarge.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Wrap(apperr.PayloadTooLarge, err, msgTooLarge)
		}
		return nil, apperr.Wrap(apperr.Internal, err, "")
	}
	return body, nil
}

// decodeJSON reads a JSON body into v. An empty body is InvalidRequest; a
// body that does not parse is an internal error carrying the parser message.
func decodeJSON(c *gin.Context, v any) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperr.New(apperr.InvalidRequest, msgMissingBody)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Wrap(apperr.Internal, err, "")
	}
	return nil
}

// Generate proxies a restyle request to Gemini.
//
// The credential is checked before the body is read, so an unconfigured
// deployment answers 500 without touching the network.
func (h *Handler) Generate(c *gin.Context) {
	if err := h.gen.CheckConfigured(); err != nil {
		h.fail(c, err)
		return
	}

	var req gemini.GenerateRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.gen.Restyle(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger(c).InfoContext(c.Request.Context(), "avatar generated", "mime_type", res.MimeType, "bytes", len(res.ImageBase64))
	c.JSON(http.StatusOK, res)
}
