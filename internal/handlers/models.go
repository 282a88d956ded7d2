package handlers

import (
	"github.com/gin-gonic/gin"
)

// Models passes the upstream model listing through unchanged. It exists for
// checking which model identifiers the configured key can reach.
func (h *Handler) Models(c *gin.Context) {
	list, err := h.gen.ListModels(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(list.Status, "application/json; charset=utf-8", list.Body)
}
