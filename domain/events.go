package domain

import "encoding/json"

// Event is a single record in a debate's event sequence. Payload shapes are
// discriminated by Type; consumers must ignore unknown types.
type Event struct {
	EventID  string          `json:"event_id"`
	DebateID string          `json:"debate_id"`
	Ts       int64           `json:"ts"`
	Type     EventType       `json:"type"`
	Payload  json.RawMessage `json:"data,omitempty"`
}

// StartPayload accompanies EventTypeStart.
type StartPayload struct {
	Topic  string `json:"topic"`
	Rounds int    `json:"rounds"`
}

// RoundPayload accompanies EventTypeRoundStart and EventTypeRoundComplete.
type RoundPayload struct {
	Round int `json:"round"`
}

// AgentStartPayload accompanies EventTypeAgentStart.
type AgentStartPayload struct {
	Agent string `json:"agent"`
	Round int    `json:"round"`
}

// SynthesisPayload accompanies EventTypeSynthesis.
type SynthesisPayload struct {
	Synthesis string  `json:"synthesis"`
	Verdict   Verdict `json:"verdict"`
}
