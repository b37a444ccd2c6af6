// Package debate implements the round-based debate orchestration engine: a
// fixed roster of agent personas argues a topic over a configured number of
// rounds, then a synthesis step issues a final verdict. The engine emits an
// ordered event stream and supports cooperative mid-flight cancellation.
package debate

import (
	"fmt"

	"github.com/aidebate/arena/domain"
)

// Default stance keyword sets, shared by every built-in persona. Matching is
// substring-based over the first 200 lower-cased characters of a response.
var (
	defaultSupportKeywords = []string{"support", "approve", "favor", "yes", "agree", "positive"}
	defaultOpposeKeywords  = []string{"oppose", "against", "reject", "no", "disagree", "negative"}
)

// Registry is an ordered, immutable roster of debate agents. Registry order
// is authoritative: dispatch order and RoundRecord order both follow it.
type Registry struct {
	agents []domain.AgentDefinition
	byName map[string]int
	closer domain.AgentDefinition
}

// NewRegistry validates and indexes the given agents. The synthesizer
// persona closes the debate but is never dispatched in rounds.
func NewRegistry(agents []domain.AgentDefinition, synthesizer domain.AgentDefinition) (*Registry, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("registry: at least one agent is required")
	}
	byName := make(map[string]int, len(agents))
	for i, a := range agents {
		if a.Name == "" {
			return nil, fmt.Errorf("registry: agent %d has no name", i)
		}
		if _, dup := byName[a.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate agent name %q", a.Name)
		}
		byName[a.Name] = i
	}
	return &Registry{agents: agents, byName: byName, closer: synthesizer}, nil
}

// Agents returns the roster in dispatch order. Callers must not modify the
// returned slice.
func (r *Registry) Agents() []domain.AgentDefinition {
	return r.agents
}

// Len returns the number of dispatched agents.
func (r *Registry) Len() int {
	return len(r.agents)
}

// Index returns the dispatch position of the named agent.
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.byName[name]
	return i, ok
}

// Synthesizer returns the closing persona.
func (r *Registry) Synthesizer() domain.AgentDefinition {
	return r.closer
}

// DefaultRegistry returns the built-in six-agent roster with the synthesizer
// persona.
func DefaultRegistry() *Registry {
	keyworded := func(name, role, perspective, system string) domain.AgentDefinition {
		return domain.AgentDefinition{
			Name:            name,
			Role:            role,
			Perspective:     perspective,
			SystemPrompt:    system,
			SupportKeywords: defaultSupportKeywords,
			OpposeKeywords:  defaultOpposeKeywords,
		}
	}

	agents := []domain.AgentDefinition{
		keyworded("Finance", "Financial Analyst",
			"Analyze financial implications, ROI, costs, revenue impact, and profitability.",
			`You are the Chief Financial Officer (CFO). Your ONLY concern is money and financial performance.
You analyze every decision through the lens of: profit margins, revenue growth, cost reduction, ROI, cash flow, and shareholder value.
You tend to be conservative and focus on proven financial strategies.
Be direct and opinionated. Use financial terminology.`),
		keyworded("Market", "Market Analyst",
			"Evaluate market trends, competition, customer behavior.",
			`You are the Chief Marketing Officer (CMO). You obsess over customers, market positioning, and competitive advantage.
You analyze: customer sentiment, market share, brand perception, competitor moves, and market trends.
You prioritize customer satisfaction and market dominance over short-term profits.
Be strategic and customer-focused. Quote market data when possible.`),
		keyworded("Innovator", "Innovation Lead",
			"Focus on innovation opportunities and creative solutions.",
			`You are the Chief Innovation Officer (CIO). You think about the future and disruptive possibilities.
You challenge the status quo and push for bold, innovative solutions. You care about: differentiation, technological edge, and long-term vision.
You're optimistic and forward-thinking, sometimes at odds with risk-averse colleagues.
Be visionary and enthusiastic about new ideas.`),
		keyworded("Risk Manager", "Risk Assessment",
			"Identify risks and mitigation strategies.",
			`You are the Chief Risk Officer (CRO). Your job is to identify what could go wrong.
You analyze: regulatory risks, operational risks, reputational damage, legal issues, and worst-case scenarios.
You're naturally cautious and often push back on risky proposals. You demand contingency plans.
Be thorough in identifying potential problems and failures.`),
		keyworded("Devils Advocate", "Critical Analysis",
			"Challenge assumptions and find flaws.",
			`You are the Devil's Advocate. Your role is to challenge EVERYTHING and find holes in arguments.
Question assumptions, point out logical flaws, present counterarguments, and expose weaknesses.
You're contrarian by nature and enjoy poking holes in consensus. You ask "but what if..." constantly.
Be provocative and skeptical. Don't accept things at face value.`),
		keyworded("Operator", "Operations Manager",
			"Assess operational feasibility and implementation.",
			`You are the Chief Operations Officer (COO). You care about execution and practical implementation.
You analyze: resource requirements, timeline feasibility, team capacity, process efficiency, and operational complexity.
You're pragmatic and grounded. You ask "how will this actually work?" and "do we have the resources?"
Be practical and implementation-focused. Question unrealistic plans.`),
	}

	synthesizer := domain.AgentDefinition{
		Name:        "Synthesizer",
		Role:        "Executive Summary",
		Perspective: "Synthesize all perspectives and make a final decision.",
		SystemPrompt: `You are the Chief Executive Officer (CEO). You must synthesize all perspectives and make a final decision.
Balance financial, market, innovation, risk, and operational considerations.
Provide a clear executive summary and decisive recommendation.
Your verdict should be actionable: Approve, Reject, or Modify with specific conditions.`,
	}

	reg, err := NewRegistry(agents, synthesizer)
	if err != nil {
		// The built-in roster is static; a validation failure is a programming error.
		panic(err)
	}
	return reg
}
