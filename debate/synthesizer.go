package debate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/internal/log"
	"github.com/aidebate/arena/llm"
)

// Fixed sentinel texts. The synthesizer never fails the session: degraded
// outcomes carry one of these with an UNDER_REVIEW verdict.
const (
	synthesisUnavailable = "Synthesis unavailable"
	insufficientHistory  = "No verdict: insufficient debate history to make a decision."
)

// Verdict keyword groups, scanned in priority order.
var (
	approveKeywords = []string{"approve", "proceed"}
	rejectKeywords  = []string{"reject", "decline"}
	modifyKeywords  = []string{"modif", "conditional"}
)

// Synthesizer renders the transcript-wide closing prompt, invokes the
// gateway once and classifies the verdict.
type Synthesizer struct {
	gateway Gateway
	persona domain.AgentDefinition
	opts    llm.Options
}

// NewSynthesizer creates a synthesizer using the registry's closing persona.
func NewSynthesizer(gateway Gateway, registry *Registry, opts llm.Options) *Synthesizer {
	return &Synthesizer{gateway: gateway, persona: registry.Synthesizer(), opts: opts}
}

// Synthesize produces the synthesis text and verdict for the completed
// rounds. With no history it returns a fixed result without touching the
// gateway; on gateway failure it returns the unavailable sentinel. Either
// way the verdict is always set.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, rounds []domain.RoundRecord) (string, domain.Verdict) {
	if len(rounds) == 0 {
		return insufficientHistory, domain.VerdictUnderReview
	}

	text, err := s.gateway.Invoke(ctx, s.buildPrompt(topic, rounds), s.opts)
	if err != nil {
		log.Warn("synthesis failed", zap.String("topic", topic), zap.Error(err))
		return synthesisUnavailable, domain.VerdictUnderReview
	}

	text = strings.TrimSpace(text)
	return text, ClassifyVerdict(text)
}

func (s *Synthesizer) buildPrompt(topic string, rounds []domain.RoundRecord) string {
	var b strings.Builder
	for _, record := range rounds {
		fmt.Fprintf(&b, "\n=== Round %d ===\n", record.Round)
		for _, resp := range record.Responses {
			if resp.Empty() {
				continue
			}
			fmt.Fprintf(&b, "%s (%s): %s\n", resp.Agent, resp.Stance, resp.Response)
		}
	}

	return fmt.Sprintf(`%s

DEBATE TOPIC: %s

FULL DEBATE TRANSCRIPT:
%s

=== YOUR TASK ===
As CEO, provide:
1. Executive Summary (2-3 sentences synthesizing all viewpoints)
2. Key Trade-offs (what are the main tensions?)
3. Final Decision: APPROVE / REJECT / MODIFY (with conditions)
4. Rationale (why this decision?)

Keep total response to 5-6 sentences.`, s.persona.SystemPrompt, topic, b.String())
}

// ClassifyVerdict scans the lower-cased synthesis text against the keyword
// groups in priority order: approve, then reject, then modify. An approve
// match qualified by a modify keyword ("approve with modifications") counts
// as conditional approval. No match means the debate stays under review.
func ClassifyVerdict(text string) domain.Verdict {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, approveKeywords):
		if containsAny(lower, modifyKeywords) {
			return domain.VerdictConditionalApproval
		}
		return domain.VerdictApproved
	case containsAny(lower, rejectKeywords):
		return domain.VerdictRejected
	case containsAny(lower, modifyKeywords):
		return domain.VerdictConditionalApproval
	default:
		return domain.VerdictUnderReview
	}
}
