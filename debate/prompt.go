package debate

import (
	"fmt"
	"strings"

	"github.com/aidebate/arena/domain"
)

// State is a snapshot of the debate visible to prompt construction. The
// coordinator owns the authoritative copy; snapshots handed to BuildPrompt
// are never mutated.
type State struct {
	Topic           string
	Round           int
	MaxRounds       int
	CompletedRounds []domain.RoundRecord
	// CurrentRound holds responses already collected this round, in dispatch
	// order. Empty under concurrent dispatch, where prompts are built before
	// any sibling completes.
	CurrentRound []domain.AgentResponse
}

// BuildPrompt renders the full prompt for one agent. Pure function: identical
// state yields an identical prompt.
func BuildPrompt(agent domain.AgentDefinition, state State) string {
	var b strings.Builder

	b.WriteString(agent.SystemPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "DEBATE TOPIC: %s\n", state.Topic)
	fmt.Fprintf(&b, "CURRENT ROUND: %d of %d\n", state.Round, state.MaxRounds)

	if state.Round > 1 && len(state.CompletedRounds) > 0 {
		b.WriteString("\n=== PREVIOUS DISCUSSIONS ===\n")
		for _, record := range state.CompletedRounds {
			b.WriteString(fmt.Sprintf("\n--- Round %d ---\n", record.Round))
			for _, resp := range record.Responses {
				if resp.Empty() {
					continue
				}
				fmt.Fprintf(&b, "%s: %s\n\n", resp.Agent, resp.Response)
			}
		}
	}

	if len(state.CurrentRound) > 0 {
		b.WriteString("\n=== CURRENT ROUND (so far) ===\n")
		for _, resp := range state.CurrentRound {
			if resp.Empty() {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n\n", resp.Agent, resp.Response)
		}
	}

	b.WriteString(taskInstructions(state.Round, state.MaxRounds))
	return b.String()
}

// taskInstructions returns the round-position-specific task block: opening
// statement, rebuttal, or closing argument.
func taskInstructions(round, maxRounds int) string {
	switch {
	case round == 1:
		return `
=== YOUR TASK ===
This is Round 1. Give your initial analysis from YOUR unique perspective.
Start by clearly stating your stance: SUPPORT, OPPOSE, or NEUTRAL.
Then provide 2-3 specific points that support your position from your role's viewpoint.
Keep response to 3-4 sentences maximum.`
	case round < maxRounds:
		return `
=== YOUR TASK ===
You've heard from others. Now respond to their arguments.
- Address at least one other agent's point (agree, disagree, or qualify)
- Strengthen your position with new evidence or reasoning
- Stay true to your role's perspective
Keep response to 3-4 sentences maximum.`
	default:
		return `
=== YOUR TASK ===
This is the final round - FINAL STATEMENTS. Make your closing argument.
- Reinforce your strongest points
- Acknowledge valid concerns from others if relevant
- Give your final recommendation from your role's perspective
Keep response to 3-4 sentences maximum.`
	}
}
