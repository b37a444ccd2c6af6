package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aidebate/arena/debate"
	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/internal/log"
	"github.com/aidebate/arena/policy"
)

func policyInput(req domain.CreateDebateRequest) policy.Input {
	return policy.Input{
		Topic:    req.Topic,
		Rounds:   req.Rounds,
		Dispatch: string(req.Dispatch),
	}
}

// recordEvent mirrors one session event into the store. Recording is best
// effort: a store failure never interrupts the debate.
func (h *Handler) recordEvent(ev domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.CreateEvent(ctx, &ev); err != nil {
		log.Error("failed to record event",
			zap.String("debate_id", ev.DebateID),
			zap.String("event_id", ev.EventID),
			zap.Error(err))
	}
}

// finalize persists the finished session: per-round responses at their
// registry positions, then the terminal debate row. Called after the event
// channel closes, so the result is always available.
func (h *Handler) finalize(sess *debate.Session) {
	result, ok := sess.Result()
	if !ok {
		log.Error("session finished without a result", zap.String("debate_id", sess.ID))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	registry := h.manager.Registry()
	for _, round := range result.Rounds {
		for i, resp := range round.Responses {
			position := i
			if p, ok := registry.Index(resp.Agent); ok {
				position = p
			}
			if err := h.store.CreateResponse(ctx, sess.ID, position, &resp); err != nil {
				log.Error("failed to record response",
					zap.String("debate_id", sess.ID),
					zap.Int("round", resp.Round),
					zap.String("agent", resp.Agent),
					zap.Error(err))
			}
		}
	}

	status := domain.DebateStatusDone
	if result.Cancelled {
		status = domain.DebateStatusCancelled
	}
	if err := h.store.UpdateDebateCompleted(ctx, sess.ID, status, result.Synthesis, result.Verdict); err != nil {
		log.Error("failed to finalize debate", zap.String("debate_id", sess.ID), zap.Error(err))
	}
}
