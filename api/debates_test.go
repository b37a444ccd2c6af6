package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/aidebate/arena/config"
	"github.com/aidebate/arena/debate"
	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/llm"
	"github.com/aidebate/arena/policy"
	"github.com/aidebate/arena/tests/helpers"
)

type stubGateway struct {
	text string
}

func (s *stubGateway) Invoke(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	return s.text, nil
}

func testRoster(t *testing.T) *debate.Registry {
	t.Helper()
	agent := func(name string) domain.AgentDefinition {
		return domain.AgentDefinition{
			Name:            name,
			Role:            "Analyst",
			SystemPrompt:    "You are " + name + ".",
			SupportKeywords: []string{"support"},
			OpposeKeywords:  []string{"oppose"},
		}
	}
	r, err := debate.NewRegistry(
		[]domain.AgentDefinition{agent("CFO"), agent("CMO"), agent("CRO")},
		agent("CEO"),
	)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return r
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := &config.Config{
		DefaultRounds:  2,
		DispatchPolicy: domain.DispatchConcurrent,
		LLMModel:       "test-model",
	}
	st := helpers.NewTestSQLiteStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	manager := debate.NewManager(testRoster(t), &stubGateway{text: "I support this. APPROVE."}, llm.Options{})
	return NewHandler(manager, st, policyEngine, nil, cfg)
}

func doJSON(t *testing.T, h func(echo.Context) error, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestCreateDebate(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.CreateDebate, http.MethodPost, "/api/debates", `{"topic":"Expand to Europe?"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.CreateDebateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.DebateID, "dbt_"))
	assert.Equal(t, "Expand to Europe?", resp.Topic)
	assert.Equal(t, 2, resp.Rounds, "default rounds must apply")
	assert.Equal(t, domain.DebateStatusCreated, resp.Status)

	d, err := h.store.GetDebate(context.Background(), resp.DebateID)
	assert.NoError(t, err)
	if assert.NotNil(t, d) {
		assert.Equal(t, domain.DebateStatusCreated, d.Status)
	}
}

func TestCreateDebateValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.CreateDebate, http.MethodPost, "/api/debates", `{"rounds":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing topic")

	rec = doJSON(t, h.CreateDebate, http.MethodPost, "/api/debates", `{"topic":"t","dispatch":"broadcast"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown dispatch")
}

func TestCreateDebatePolicyBlock(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.CreateDebate, http.MethodPost, "/api/debates", `{"topic":"t","rounds":11}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStopDebateNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.StopDebate, http.MethodPost, "/api/debates/dbt_missing/stop", "", "debate_id", "dbt_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDebateNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.GetDebate, http.MethodGet, "/api/debates/dbt_missing", "", "debate_id", "dbt_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamDebateEndToEnd(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.CreateDebate, http.MethodPost, "/api/debates", `{"topic":"Adopt a 4-day work week?"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created domain.CreateDebateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Stream runs the whole debate; the recorder collects the SSE body.
	stream := doJSON(t, h.StreamDebate, http.MethodPost, "/api/debates/"+created.DebateID+"/stream", "", "debate_id", created.DebateID)
	assert.Equal(t, http.StatusOK, stream.Code)
	assert.Equal(t, "text/event-stream", stream.Header().Get("Content-Type"))

	body := stream.Body.String()
	for _, typ := range []string{"start", "round_start", "agent_start", "agent_response", "round_complete", "synthesis_start", "synthesis", "complete"} {
		assert.Contains(t, body, `"type":"`+typ+`"`)
	}
	assert.NotContains(t, body, `"type":"cancelled"`)

	// The debate is terminal and persisted once the stream returns.
	d, err := h.store.GetDebate(context.Background(), created.DebateID)
	assert.NoError(t, err)
	if assert.NotNil(t, d) {
		assert.Equal(t, domain.DebateStatusDone, d.Status)
		assert.Equal(t, domain.VerdictApproved, d.Verdict)
		assert.NotEmpty(t, d.Synthesis)
	}

	rounds, err := h.store.GetResponses(context.Background(), created.DebateID)
	assert.NoError(t, err)
	assert.Len(t, rounds, 2)
	for _, round := range rounds {
		assert.Len(t, round.Responses, 3)
		assert.Equal(t, "CFO", round.Responses[0].Agent)
		assert.Equal(t, "CMO", round.Responses[1].Agent)
		assert.Equal(t, "CRO", round.Responses[2].Agent)
	}

	// A second stream cannot reclaim the debate.
	again := doJSON(t, h.StreamDebate, http.MethodPost, "/api/debates/"+created.DebateID+"/stream", "", "debate_id", created.DebateID)
	assert.Equal(t, http.StatusConflict, again.Code)

	// The finished debate is readable.
	get := doJSON(t, h.GetDebate, http.MethodGet, "/api/debates/"+created.DebateID, "", "debate_id", created.DebateID)
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Contains(t, get.Body.String(), `"verdict":"APPROVED"`)
}

func TestGetDebateEventsReplay(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.CreateDebate, http.MethodPost, "/api/debates", `{"topic":"t","rounds":1}`)
	var created domain.CreateDebateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	doJSON(t, h.StreamDebate, http.MethodPost, "/api/debates/"+created.DebateID+"/stream", "", "debate_id", created.DebateID)

	replay := doJSON(t, h.GetDebateEvents, http.MethodGet, "/api/debates/"+created.DebateID+"/events", "", "debate_id", created.DebateID)
	assert.Equal(t, http.StatusOK, replay.Code)

	var page struct {
		Events  []domain.Event `json:"events"`
		HasMore bool           `json:"has_more"`
	}
	assert.NoError(t, json.Unmarshal(replay.Body.Bytes(), &page))
	assert.False(t, page.HasMore)
	assert.NotEmpty(t, page.Events)
	assert.Equal(t, domain.EventTypeStart, page.Events[0].Type)
	assert.Equal(t, domain.EventTypeComplete, page.Events[len(page.Events)-1].Type)
}

func TestGetDebateEventsNotFound(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.GetDebateEvents, http.MethodGet, "/api/debates/dbt_missing/events", "", "debate_id", "dbt_missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
