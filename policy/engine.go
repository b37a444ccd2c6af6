// Package policy evaluates debate admission policies with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.debate_policy.decision"),
		rego.Module("debate_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input is the admission request evaluated against the policy.
type Input struct {
	Topic    string `json:"topic"`
	Rounds   int    `json:"rounds"`
	Dispatch string `json:"dispatch"`
}

// Evaluate checks the debate admission policy.
// Returns: decision ("allow" or "block"), reason, error.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{
		"topic":    input.Topic,
		"rounds":   input.Rounds,
		"dispatch": input.Dispatch,
	}))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy is expected to define a default.
		return "allow", "default", nil
	}

	val := results[0].Expressions[0].Value
	switch v := val.(type) {
	case string:
		return v, "", nil
	case map[string]interface{}:
		decision, _ := v["decision"].(string)
		reason, _ := v["reason"].(string)
		if decision == "" {
			decision = "allow"
		}
		return decision, reason, nil
	}

	return "allow", "unexpected return type", nil
}

// DefaultPolicy is the default admission policy: every topic is debatable,
// but round counts above the hard cap are blocked.
const DefaultPolicy = `
package debate_policy

default decision = "allow"

# Block runaway debates
decision = "block" {
	input.rounds > 10
}

# Example: keep certain topics out of the arena
decision = "block" {
	contains(lower(input.topic), "insider trading")
}
`
