package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
)

type backgroundView struct {
	palette.Background
	CSS string `json:"css"`
}

// Backgrounds lists the selectable backdrops with their CSS gradients.
func (h *Handler) Backgrounds(c *gin.Context) {
	all := palette.All()
	out := make([]backgroundView, len(all))
	for i, bg := range all {
		out[i] = backgroundView{Background: bg, CSS: bg.CSS()}
	}
	c.JSON(http.StatusOK, gin.H{"default": palette.Default().ID, "backgrounds": out})
}
