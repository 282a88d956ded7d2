package handlers

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Home)
	r.GET("/sitemap.xml", h.SitemapXML)

	limited := r.Group("/", BodyLimit(h.maxBody))
	{
		limited.POST("/generate", h.Generate)
		limited.GET("/models", h.Models)
	}

	api := r.Group("/api", BodyLimit(h.maxBody))
	{
		api.GET("/backgrounds", h.Backgrounds)
		api.POST("/compose", h.Compose)
		api.GET("/qr", h.QRCodeHandler)
	}
}
