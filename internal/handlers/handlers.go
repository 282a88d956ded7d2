package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/compose"
	"github.com/cristianadrielbraun/avatarstudio/internal/gemini"
)

// Generator is the upstream image API as seen by the handlers.
type Generator interface {
	CheckConfigured() error
	Restyle(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResult, error)
	ListModels(ctx context.Context) (*gemini.ModelList, error)
}

// Handler holds the dependencies shared by the HTTP handlers.
type Handler struct {
	gen        Generator
	compositor *compose.Compositor
	log        *slog.Logger
	maxBody    int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// WithMaxBody caps request bodies at n bytes.
func WithMaxBody(n int64) Option {
	return func(h *Handler) { h.maxBody = n }
}

// New returns a Handler.
func New(gen Generator, comp *compose.Compositor, opts ...Option) *Handler {
	h := &Handler{gen: gen, compositor: comp, log: slog.Default(), maxBody: 20 << 20}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// fail renders err as {"error": message} with the status of its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	log := h.logger(c)
	attrs := []any{"kind", apperr.KindOf(err).String(), "status", status, "error", err}
	if status >= http.StatusInternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed", attrs...)
	} else {
		log.WarnContext(c.Request.Context(), "request rejected", attrs...)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
}

// origin is the scheme and host the client used to reach us.
func origin(c *gin.Context) string {
	scheme := "https"
	host := c.Request.Host
	if xf := c.Request.Header.Get("X-Forwarded-Proto"); xf != "" {
		scheme = xf
	} else if c.Request.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + host
}

// SitemapXML serves a sitemap listing the studio page.
func (h *Handler) SitemapXML(c *gin.Context) {
	c.Header("Content-Type", "application/xml; charset=utf-8")
	xml := "" +
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<urlset xmlns=\"http://www.sitemaps.org/schemas/sitemap/0.9\">\n" +
		"  <url>\n" +
		"    <loc>" + origin(c) + "/" + "</loc>\n" +
		"    <changefreq>monthly</changefreq>\n" +
		"    <priority>1.0</priority>\n" +
		"  </url>\n" +
		"</urlset>\n"
	c.String(http.StatusOK, xml)
}
