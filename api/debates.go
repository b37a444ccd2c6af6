package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/aidebate/arena/debate"
	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/internal/log"
)

// CreateDebate validates and registers a debate without starting it. The
// debate runs when a client claims it via the stream endpoint.
// POST /api/debates
func (h *Handler) CreateDebate(c echo.Context) error {
	sess, errResp := h.admitDebate(c)
	if errResp != nil {
		return errResp
	}

	return c.JSON(http.StatusCreated, domain.CreateDebateResponse{
		DebateID: sess.ID,
		Topic:    sess.Topic,
		Rounds:   sess.MaxRounds,
		Status:   domain.DebateStatusCreated,
	})
}

// admitDebate binds, validates and policy-checks a create request, persists
// the debate row and registers the session. It writes the error response
// itself and returns it when admission fails.
func (h *Handler) admitDebate(c echo.Context) (*debate.Session, error) {
	var req domain.CreateDebateRequest
	if err := c.Bind(&req); err != nil {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Rounds == 0 {
		req.Rounds = h.config.DefaultRounds
	}
	if req.Dispatch == "" {
		req.Dispatch = h.config.DispatchPolicy
	}

	ctx := c.Request().Context()

	decision, reason, err := h.policy.Evaluate(ctx, policyInput(req))
	if err != nil {
		log.Error("policy evaluation failed", zap.Error(err))
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "policy evaluation failed"})
	}
	if decision != "allow" {
		msg := "debate not admitted by policy"
		if reason != "" {
			msg = fmt.Sprintf("%s: %s", msg, reason)
		}
		return nil, c.JSON(http.StatusForbidden, map[string]string{"error": msg})
	}

	sess, err := h.manager.Create(req.Topic, req.Rounds, req.Dispatch)
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if err := h.store.CreateDebate(ctx, &domain.Debate{
		DebateID:  sess.ID,
		Topic:     sess.Topic,
		MaxRounds: sess.MaxRounds,
		Dispatch:  sess.Dispatch,
		Status:    domain.DebateStatusCreated,
		CreatedAt: sess.CreatedAt,
	}); err != nil {
		log.Error("failed to persist debate", zap.String("debate_id", sess.ID), zap.Error(err))
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to persist debate"})
	}

	return sess, nil
}

// StreamDebate starts a created debate and streams its events as SSE.
// POST /api/debates/:debate_id/stream
func (h *Handler) StreamDebate(c echo.Context) error {
	sess, ok := h.manager.Get(c.Param("debate_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "debate not found"})
	}

	return h.streamSession(c, sess)
}

// StopDebate requests cooperative cancellation.
// POST /api/debates/:debate_id/stop
func (h *Handler) StopDebate(c echo.Context) error {
	sess, ok := h.manager.Get(c.Param("debate_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "debate not found"})
	}

	sess.Cancel()
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

// GetDebate returns the debate record, including the full transcript once
// the debate is terminal.
// GET /api/debates/:debate_id
func (h *Handler) GetDebate(c echo.Context) error {
	ctx := c.Request().Context()
	debateID := c.Param("debate_id")

	d, err := h.store.GetDebate(ctx, debateID)
	if err != nil {
		log.Error("failed to get debate", zap.String("debate_id", debateID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get debate"})
	}
	if d == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "debate not found"})
	}

	if d.Status == domain.DebateStatusRunning {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":  "debate still in progress",
			"status": d.Status,
		})
	}

	rounds, err := h.store.GetResponses(ctx, debateID)
	if err != nil {
		log.Error("failed to get responses", zap.String("debate_id", debateID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get responses"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"topic":     d.Topic,
		"status":    d.Status,
		"rounds":    rounds,
		"synthesis": d.Synthesis,
		"verdict":   d.Verdict,
	})
}

// GetDebateEvents replays recorded events.
// GET /api/debates/:debate_id/events?after_ts=&limit=
func (h *Handler) GetDebateEvents(c echo.Context) error {
	ctx := c.Request().Context()
	debateID := c.Param("debate_id")

	d, err := h.store.GetDebate(ctx, debateID)
	if err != nil {
		log.Error("failed to get debate", zap.String("debate_id", debateID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get debate"})
	}
	if d == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "debate not found"})
	}

	afterTs, _ := strconv.ParseInt(c.QueryParam("after_ts"), 10, 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 100
	}

	events, err := h.store.GetEvents(ctx, debateID, afterTs, limit+1)
	if err != nil {
		log.Error("failed to get events", zap.String("debate_id", debateID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get events"})
	}

	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}

	return c.JSON(http.StatusOK, map[string]any{
		"events":   events,
		"has_more": hasMore,
	})
}

// streamSession claims the session, streams events as SSE records and
// mirrors every event into the store. The stream keeps recording even if
// the client disconnects, so the transcript is always completed.
func (h *Handler) streamSession(c echo.Context, sess *debate.Session) error {
	// Background, not the request context: gateway calls outlive a client
	// that disconnects mid-stream.
	if !sess.Start(context.Background()) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "debate already started"})
	}

	if err := h.store.UpdateDebateStatus(context.Background(), sess.ID, domain.DebateStatusRunning); err != nil {
		log.Error("failed to update debate status", zap.String("debate_id", sess.ID), zap.Error(err))
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	flusher, _ := c.Response().Writer.(http.Flusher)
	clientGone := c.Request().Context().Done()
	writing := true

	for ev := range sess.Events() {
		h.recordEvent(ev)

		if writing {
			select {
			case <-clientGone:
				writing = false
			default:
				if err := writeSSE(c.Response().Writer, ev); err != nil {
					writing = false
					break
				}
				if flusher != nil {
					flusher.Flush()
				}
			}
		}
	}

	h.finalize(sess)
	return nil
}

func writeSSE(w http.ResponseWriter, ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
