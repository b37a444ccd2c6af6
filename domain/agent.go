package domain

// AgentDefinition is a static registry entry describing one debate persona.
// Definitions are created once at startup and shared read-only by all
// debates.
type AgentDefinition struct {
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Perspective     string   `json:"perspective"`
	SystemPrompt    string   `json:"-"`
	SupportKeywords []string `json:"-"`
	OpposeKeywords  []string `json:"-"`
}

// AgentResponse is one agent's contribution in one round. Immutable once
// created. An empty Response marks an agent whose gateway call failed: the
// slot keeps its registry position but contributes nothing to context.
type AgentResponse struct {
	Agent    string `json:"agent"`
	Round    int    `json:"round"`
	Stance   Stance `json:"stance"`
	Response string `json:"response"`
}

// Empty reports whether this slot holds no contribution.
func (r AgentResponse) Empty() bool {
	return r.Response == ""
}

// RoundRecord is the completed record of one round, one entry per registered
// agent in registry dispatch order regardless of completion order.
type RoundRecord struct {
	Round     int             `json:"round"`
	Responses []AgentResponse `json:"responses"`
}
