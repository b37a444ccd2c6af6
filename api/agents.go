package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListAgents returns the debate roster in dispatch order.
// GET /api/agents
func (h *Handler) ListAgents(c echo.Context) error {
	registry := h.manager.Registry()
	return c.JSON(http.StatusOK, map[string]any{
		"agents":      registry.Agents(),
		"synthesizer": registry.Synthesizer(),
	})
}
