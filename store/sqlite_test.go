package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aidebate/arena/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedDebate(t *testing.T, s *SQLiteStore, id string) {
	t.Helper()
	err := s.CreateDebate(context.Background(), &domain.Debate{
		DebateID:  id,
		Topic:     "Expand to Europe?",
		MaxRounds: 3,
		Dispatch:  domain.DispatchConcurrent,
		Status:    domain.DebateStatusCreated,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateDebate failed: %v", err)
	}
}

func TestDebateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDebate(t, s, "dbt_test1")

	d, err := s.GetDebate(ctx, "dbt_test1")
	if err != nil {
		t.Fatalf("GetDebate failed: %v", err)
	}
	if d == nil {
		t.Fatal("debate not found")
	}
	if d.Topic != "Expand to Europe?" || d.MaxRounds != 3 || d.Status != domain.DebateStatusCreated {
		t.Errorf("unexpected debate: %+v", d)
	}
	if d.Synthesis != "" || d.Verdict != "" || d.EndedAt != nil {
		t.Errorf("fresh debate must have no outcome: %+v", d)
	}

	if err := s.UpdateDebateStatus(ctx, "dbt_test1", domain.DebateStatusRunning); err != nil {
		t.Fatalf("UpdateDebateStatus failed: %v", err)
	}
	d, _ = s.GetDebate(ctx, "dbt_test1")
	if d.Status != domain.DebateStatusRunning {
		t.Errorf("status = %q, want running", d.Status)
	}

	if err := s.UpdateDebateCompleted(ctx, "dbt_test1", domain.DebateStatusDone, "APPROVE.", domain.VerdictApproved); err != nil {
		t.Fatalf("UpdateDebateCompleted failed: %v", err)
	}
	d, _ = s.GetDebate(ctx, "dbt_test1")
	if d.Status != domain.DebateStatusDone || d.Synthesis != "APPROVE." || d.Verdict != domain.VerdictApproved {
		t.Errorf("unexpected completed debate: %+v", d)
	}
	if d.EndedAt == nil {
		t.Error("ended_at must be set on completion")
	}
}

func TestGetDebateNotFound(t *testing.T) {
	s := newTestStore(t)

	d, err := s.GetDebate(context.Background(), "dbt_missing")
	if err != nil {
		t.Fatalf("GetDebate failed: %v", err)
	}
	if d != nil {
		t.Errorf("expected nil, got %+v", d)
	}
}

func TestResponsesGroupedByRoundAndPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDebate(t, s, "dbt_test1")

	// Insert out of position order; reads must come back position-sorted.
	inserts := []struct {
		round, position int
		agent           string
	}{
		{1, 1, "CMO"}, {1, 0, "CFO"}, {2, 0, "CFO"}, {2, 1, "CMO"},
	}
	for _, in := range inserts {
		err := s.CreateResponse(ctx, "dbt_test1", in.position, &domain.AgentResponse{
			Agent:    in.agent,
			Round:    in.round,
			Stance:   domain.StanceSupport,
			Response: fmt.Sprintf("%s round %d", in.agent, in.round),
		})
		if err != nil {
			t.Fatalf("CreateResponse failed: %v", err)
		}
	}

	records, err := s.GetResponses(ctx, "dbt_test1")
	if err != nil {
		t.Fatalf("GetResponses failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rounds = %d, want 2", len(records))
	}
	for i, record := range records {
		if record.Round != i+1 {
			t.Errorf("record %d round = %d", i, record.Round)
		}
		if len(record.Responses) != 2 {
			t.Fatalf("round %d responses = %d, want 2", record.Round, len(record.Responses))
		}
		if record.Responses[0].Agent != "CFO" || record.Responses[1].Agent != "CMO" {
			t.Errorf("round %d order = %q, %q", record.Round, record.Responses[0].Agent, record.Responses[1].Agent)
		}
	}
}

func TestEventsOrderedByInsertion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedDebate(t, s, "dbt_test1")

	// Identical timestamps: insertion order must still hold.
	ts := time.Now().UnixMilli()
	types := []domain.EventType{domain.EventTypeStart, domain.EventTypeRoundStart, domain.EventTypeAgentStart, domain.EventTypeComplete}
	for i, typ := range types {
		err := s.CreateEvent(ctx, &domain.Event{
			EventID:  fmt.Sprintf("evt_%d", i),
			DebateID: "dbt_test1",
			Ts:       ts,
			Type:     typ,
			Payload:  []byte(`{"n":1}`),
		})
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	events, err := s.GetEvents(ctx, "dbt_test1", 0, 10)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != len(types) {
		t.Fatalf("events = %d, want %d", len(events), len(types))
	}
	for i, ev := range events {
		if ev.Type != types[i] {
			t.Errorf("event %d type = %q, want %q", i, ev.Type, types[i])
		}
	}
	if string(events[0].Payload) != `{"n":1}` {
		t.Errorf("payload = %s", events[0].Payload)
	}

	// afterTs excludes everything at or before the cutoff.
	events, err = s.GetEvents(ctx, "dbt_test1", ts, 10)
	if err != nil {
		t.Fatalf("GetEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events after ts = %d, want 0", len(events))
	}

	// limit truncates.
	events, _ = s.GetEvents(ctx, "dbt_test1", 0, 2)
	if len(events) != 2 {
		t.Errorf("limited events = %d, want 2", len(events))
	}
}
