package debate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/internal/log"
	"github.com/aidebate/arena/llm"
)

// stanceWindow bounds how much of a response the stance scan inspects.
const stanceWindow = 200

// Gateway is the text-generation capability the engine depends on. The
// concrete client lives in the llm package; tests substitute mocks.
type Gateway interface {
	Invoke(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

// Runner invokes the gateway for one agent and post-processes the result.
// A gateway failure never propagates: the agent simply contributes an empty
// slot for the round.
type Runner struct {
	gateway Gateway
	opts    llm.Options
}

// NewRunner creates a runner that applies opts to every invocation.
func NewRunner(gateway Gateway, opts llm.Options) *Runner {
	return &Runner{gateway: gateway, opts: opts}
}

// Run builds the agent's prompt from the state snapshot, invokes the gateway
// and classifies the stance. On failure it returns an empty response slot.
func (r *Runner) Run(ctx context.Context, agent domain.AgentDefinition, state State) domain.AgentResponse {
	prompt := BuildPrompt(agent, state)

	text, err := r.gateway.Invoke(ctx, prompt, r.opts)
	if err != nil {
		log.Warn("agent invocation failed",
			zap.String("agent", agent.Name),
			zap.Int("round", state.Round),
			zap.Error(err))
		return domain.AgentResponse{Agent: agent.Name, Round: state.Round, Stance: domain.StanceNeutral}
	}

	return domain.AgentResponse{
		Agent:    agent.Name,
		Round:    state.Round,
		Stance:   classifyStance(text, agent),
		Response: strings.TrimSpace(text),
	}
}

// classifyStance scans the start of the lower-cased response for the agent's
// stance keywords. Support keywords are checked first; no match means
// Neutral.
func classifyStance(text string, agent domain.AgentDefinition) domain.Stance {
	window := strings.ToLower(text)
	if len(window) > stanceWindow {
		window = window[:stanceWindow]
	}

	if containsAny(window, agent.SupportKeywords) {
		return domain.StanceSupport
	}
	if containsAny(window, agent.OpposeKeywords) {
		return domain.StanceOppose
	}
	return domain.StanceNeutral
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
