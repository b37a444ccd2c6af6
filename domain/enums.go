// Package domain defines the core domain models for the debate orchestrator.
package domain

// Stance is the coarse position classified from an agent's response text.
type Stance string

const (
	StanceSupport Stance = "Support"
	StanceOppose  Stance = "Oppose"
	StanceNeutral Stance = "Neutral"
)

// Verdict is the outcome classified from the synthesis text.
type Verdict string

const (
	VerdictApproved            Verdict = "APPROVED"
	VerdictRejected            Verdict = "REJECTED"
	VerdictConditionalApproval Verdict = "CONDITIONAL_APPROVAL"
	VerdictUnderReview         Verdict = "UNDER_REVIEW"
)

// DebateStatus represents the lifecycle state of a debate.
type DebateStatus string

const (
	DebateStatusCreated   DebateStatus = "CREATED"
	DebateStatusRunning   DebateStatus = "RUNNING"
	DebateStatusDone      DebateStatus = "DONE"
	DebateStatusCancelled DebateStatus = "CANCELLED"
)

// DispatchPolicy selects how agents are dispatched within a round.
type DispatchPolicy string

const (
	// DispatchConcurrent fans out all agent calls at once. Prompts are built
	// from state as of dispatch time, so agents do not see each other's
	// responses within the same round.
	DispatchConcurrent DispatchPolicy = "concurrent"
	// DispatchSequential runs agents one at a time. Later agents see earlier
	// agents' responses from the same round.
	DispatchSequential DispatchPolicy = "sequential"
)

// Valid reports whether p is a known dispatch policy.
func (p DispatchPolicy) Valid() bool {
	return p == DispatchConcurrent || p == DispatchSequential
}

// EventType represents the type of a debate event.
type EventType string

const (
	EventTypeStart          EventType = "start"
	EventTypeRoundStart     EventType = "round_start"
	EventTypeAgentStart     EventType = "agent_start"
	EventTypeAgentResponse  EventType = "agent_response"
	EventTypeRoundComplete  EventType = "round_complete"
	EventTypeSynthesisStart EventType = "synthesis_start"
	EventTypeSynthesis      EventType = "synthesis"
	EventTypeComplete       EventType = "complete"
	EventTypeCancelled      EventType = "cancelled"
)

// Terminal reports whether the event type ends the event sequence.
func (t EventType) Terminal() bool {
	return t == EventTypeComplete || t == EventTypeCancelled
}
