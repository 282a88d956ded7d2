package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/avatarstudio/internal/compose"
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
	"github.com/cristianadrielbraun/avatarstudio/web/components"
	"github.com/cristianadrielbraun/avatarstudio/web/pages"
)

// RepoURL is linked from the page header.
const RepoURL = "https://github.com/vaduvanathan/ethmumbai-avatar"

// Home renders the studio page.
func (h *Handler) Home(c *gin.Context) {
	def := palette.Default().ID
	props := pages.HomeProps{
		Title:    "ETHMumbai Avatar Studio",
		Caption:  h.compositor.Caption(),
		RepoURL:  RepoURL,
		Filename: compose.Filename,
		Default:  def,
		Swatches: components.Swatches(palette.All(), def),
		Pills:    components.BrandPills(),
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := pages.HomePage(props).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger(c).ErrorContext(c.Request.Context(), "render home page", "error", err)
	}
}
