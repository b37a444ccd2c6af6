package debate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/llm"
)

// mockGateway is the test double for the LLM gateway.
type mockGateway struct {
	invoke func(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

func (m *mockGateway) Invoke(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return m.invoke(ctx, prompt, opts)
}

func canned(text string) *mockGateway {
	return &mockGateway{invoke: func(context.Context, string, llm.Options) (string, error) {
		return text, nil
	}}
}

func TestRunnerClassifiesStance(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.Stance
	}{
		{"support", "I support this proposal because margins improve.", domain.StanceSupport},
		{"oppose", "We must reject this on cost grounds.", domain.StanceOppose},
		{"neutral", "The data is mixed and inconclusive.", domain.StanceNeutral},
		{"support wins over oppose", "I agree, even though some reject it.", domain.StanceSupport},
		{"keyword outside window ignored", strings.Repeat("x", stanceWindow) + " support", domain.StanceNeutral},
	}

	agent := testAgent("CFO")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRunner(canned(tc.text), llm.Options{})
			resp := r.Run(context.Background(), agent, State{Topic: "t", Round: 1, MaxRounds: 1})
			if resp.Stance != tc.want {
				t.Errorf("stance = %q, want %q", resp.Stance, tc.want)
			}
			if resp.Agent != "CFO" || resp.Round != 1 {
				t.Errorf("unexpected attribution: %+v", resp)
			}
		})
	}
}

func TestRunnerTrimsResponse(t *testing.T) {
	r := NewRunner(canned("  I support it.\n"), llm.Options{})
	resp := r.Run(context.Background(), testAgent("CFO"), State{Topic: "t", Round: 1, MaxRounds: 1})
	if resp.Response != "I support it." {
		t.Errorf("response = %q, want trimmed text", resp.Response)
	}
}

func TestRunnerGatewayFailureYieldsEmptySlot(t *testing.T) {
	gw := &mockGateway{invoke: func(context.Context, string, llm.Options) (string, error) {
		return "", errors.New("backend down")
	}}
	r := NewRunner(gw, llm.Options{})

	resp := r.Run(context.Background(), testAgent("CFO"), State{Topic: "t", Round: 2, MaxRounds: 3})

	if !resp.Empty() {
		t.Fatalf("expected empty slot, got %+v", resp)
	}
	if resp.Agent != "CFO" || resp.Round != 2 {
		t.Errorf("empty slot must keep attribution: %+v", resp)
	}
	if resp.Stance != domain.StanceNeutral {
		t.Errorf("empty slot stance = %q, want neutral", resp.Stance)
	}
}
