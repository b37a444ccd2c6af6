// Package api provides HTTP handlers for the debate orchestrator.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aidebate/arena/config"
	"github.com/aidebate/arena/debate"
	"github.com/aidebate/arena/policy"
	"github.com/aidebate/arena/store"
)

// healthChecker is the slice of the gateway the handler needs for /health.
type healthChecker interface {
	Healthy(ctx context.Context) bool
}

// Handler handles HTTP requests.
type Handler struct {
	manager *debate.Manager
	store   store.Store
	policy  *policy.Engine
	backend healthChecker
	config  *config.Config
}

// NewHandler creates a new handler. backend may be nil when no health probe
// is available.
func NewHandler(manager *debate.Manager, st store.Store, policyEngine *policy.Engine, backend healthChecker, cfg *config.Config) *Handler {
	return &Handler{
		manager: manager,
		store:   st,
		policy:  policyEngine,
		backend: backend,
		config:  cfg,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/debates", h.CreateDebate)
	e.POST("/api/debates/:debate_id/stream", h.StreamDebate)
	e.POST("/api/debates/:debate_id/stop", h.StopDebate)
	e.GET("/api/debates/:debate_id", h.GetDebate)
	e.GET("/api/debates/:debate_id/events", h.GetDebateEvents)

	e.GET("/api/agents", h.ListAgents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	backend := "unknown"
	if h.backend != nil {
		if h.backend.Healthy(c.Request().Context()) {
			backend = "online"
		} else {
			backend = "offline"
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"backend": backend,
		"model":   h.config.LLMModel,
	})
}
