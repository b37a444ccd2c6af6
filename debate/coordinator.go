package debate

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/internal/log"
)

// Phase is the coordinator's position in the debate lifecycle.
type Phase int

const (
	PhaseAwaitingRound Phase = iota
	PhaseRoundInProgress
	PhaseRoundComplete
	PhaseSynthesizing
	PhaseDone
	PhaseCancelled
)

// emitFunc receives lifecycle events as they occur. The payload types match
// the domain event payloads.
type emitFunc func(domain.EventType, any)

// Coordinator drives one debate from AwaitingRound(1) to a terminal phase.
// It is the sole owner and mutator of the debate state: runners return
// values that the coordinator folds in, so no locking is needed even under
// concurrent dispatch.
type Coordinator struct {
	registry *Registry
	runner   *Runner
	synth    *Synthesizer
	dispatch domain.DispatchPolicy

	state State
	phase Phase
}

// NewCoordinator creates a coordinator for a single debate. maxRounds must
// be validated by the caller.
func NewCoordinator(registry *Registry, runner *Runner, synth *Synthesizer, dispatch domain.DispatchPolicy, topic string, maxRounds int) *Coordinator {
	return &Coordinator{
		registry: registry,
		runner:   runner,
		synth:    synth,
		dispatch: dispatch,
		state: State{
			Topic:     topic,
			Round:     1,
			MaxRounds: maxRounds,
		},
		phase: PhaseAwaitingRound,
	}
}

// Phase returns the coordinator's current phase.
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// Run executes all rounds and the synthesis, emitting events as they occur,
// and returns the final result. ctx bounds outbound gateway calls (process
// lifetime, not cancellation). stop is the cooperative cancellation signal:
// it is observed before starting a round, before each sequential dispatch
// and after a round's barrier; in-flight gateway calls are never aborted,
// their results are simply discarded.
func (c *Coordinator) Run(ctx context.Context, stop <-chan struct{}, emit emitFunc) domain.Result {
	for round := 1; round <= c.state.MaxRounds; round++ {
		if stopped(stop) {
			return c.cancel(emit)
		}

		c.state.Round = round
		c.state.CurrentRound = nil
		c.phase = PhaseRoundInProgress
		emit(domain.EventTypeRoundStart, domain.RoundPayload{Round: round})

		var responses []domain.AgentResponse
		var interrupted bool
		if c.dispatch == domain.DispatchSequential {
			responses, interrupted = c.runSequential(ctx, stop, emit)
		} else {
			responses, interrupted = c.runConcurrent(ctx, stop, emit)
		}
		if interrupted {
			return c.cancel(emit)
		}

		// Close out the round. Responses are already in registry order.
		c.phase = PhaseRoundComplete
		c.state.CompletedRounds = append(c.state.CompletedRounds, domain.RoundRecord{
			Round:     round,
			Responses: responses,
		})
		c.state.CurrentRound = nil
		emit(domain.EventTypeRoundComplete, domain.RoundPayload{Round: round})
	}

	if stopped(stop) {
		return c.cancel(emit)
	}

	c.phase = PhaseSynthesizing
	emit(domain.EventTypeSynthesisStart, nil)

	synthesis, verdict := c.synth.Synthesize(ctx, c.state.Topic, c.state.CompletedRounds)
	emit(domain.EventTypeSynthesis, domain.SynthesisPayload{Synthesis: synthesis, Verdict: verdict})

	c.phase = PhaseDone
	emit(domain.EventTypeComplete, nil)

	return domain.Result{
		Topic:     c.state.Topic,
		Rounds:    c.state.CompletedRounds,
		Synthesis: synthesis,
		Verdict:   verdict,
	}
}

// runConcurrent fans out every agent at once and joins on a wait-all
// barrier. Each agent's prompt is built from the state snapshot taken at
// dispatch time, so siblings never see each other's responses. Results land
// in registry-order slots regardless of completion order.
func (c *Coordinator) runConcurrent(ctx context.Context, stop <-chan struct{}, emit emitFunc) ([]domain.AgentResponse, bool) {
	snapshot := c.state
	snapshot.CurrentRound = nil

	slots := make([]domain.AgentResponse, c.registry.Len())
	var g errgroup.Group
	for i, agent := range c.registry.Agents() {
		emit(domain.EventTypeAgentStart, domain.AgentStartPayload{Agent: agent.Name, Round: snapshot.Round})
		g.Go(func() error {
			slots[i] = c.runner.Run(ctx, agent, snapshot)
			return nil
		})
	}
	_ = g.Wait()

	// Cancellation observed at the barrier discards the whole round.
	if stopped(stop) {
		return nil, true
	}

	for _, resp := range slots {
		if !resp.Empty() {
			emit(domain.EventTypeAgentResponse, resp)
		}
	}
	return slots, false
}

// runSequential dispatches agents one at a time; each prompt reflects all
// prior responses from the same round. Cancellation is observed before each
// dispatch.
func (c *Coordinator) runSequential(ctx context.Context, stop <-chan struct{}, emit emitFunc) ([]domain.AgentResponse, bool) {
	slots := make([]domain.AgentResponse, 0, c.registry.Len())
	for _, agent := range c.registry.Agents() {
		if stopped(stop) {
			return nil, true
		}

		emit(domain.EventTypeAgentStart, domain.AgentStartPayload{Agent: agent.Name, Round: c.state.Round})

		snapshot := c.state
		snapshot.CurrentRound = slots
		resp := c.runner.Run(ctx, agent, snapshot)
		slots = append(slots, resp)
		c.state.CurrentRound = slots

		if !resp.Empty() {
			emit(domain.EventTypeAgentResponse, resp)
		}
	}
	return slots, false
}

func (c *Coordinator) cancel(emit emitFunc) domain.Result {
	c.phase = PhaseCancelled
	log.Info("debate cancelled", zap.String("topic", c.state.Topic), zap.Int("round", c.state.Round))
	emit(domain.EventTypeCancelled, nil)
	return domain.Result{
		Topic:     c.state.Topic,
		Rounds:    c.state.CompletedRounds,
		Verdict:   domain.VerdictUnderReview,
		Cancelled: true,
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
