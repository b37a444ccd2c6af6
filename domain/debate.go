package domain

import "time"

// Debate is the stored record of one debate session.
type Debate struct {
	DebateID  string         `json:"debate_id"`
	Topic     string         `json:"topic"`
	MaxRounds int            `json:"max_rounds"`
	Dispatch  DispatchPolicy `json:"dispatch"`
	Status    DebateStatus   `json:"status"`
	Synthesis string         `json:"synthesis,omitempty"`
	Verdict   Verdict        `json:"verdict,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
}

// Result is the complete outcome of a finished debate.
type Result struct {
	Topic     string        `json:"topic"`
	Rounds    []RoundRecord `json:"rounds"`
	Synthesis string        `json:"synthesis"`
	Verdict   Verdict       `json:"verdict"`
	Cancelled bool          `json:"cancelled"`
}

// CreateDebateRequest is the body of POST /api/debates.
type CreateDebateRequest struct {
	Topic    string         `json:"topic"`
	Rounds   int            `json:"rounds,omitempty"`
	Dispatch DispatchPolicy `json:"dispatch,omitempty"`
}

// CreateDebateResponse is the reply to POST /api/debates.
type CreateDebateResponse struct {
	DebateID string       `json:"debate_id"`
	Topic    string       `json:"topic"`
	Rounds   int          `json:"rounds"`
	Status   DebateStatus `json:"status"`
}
