package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aidebate/arena/domain"
	"github.com/aidebate/arena/llm"
)

// Session is the public handle for one debate. It exposes the debate only as
// an ordered, finite, non-restartable event sequence plus a read-only result;
// callers never receive a mutable handle to the coordinator's state.
type Session struct {
	ID        string
	Topic     string
	MaxRounds int
	Dispatch  domain.DispatchPolicy
	CreatedAt time.Time

	coordinator *Coordinator

	events chan domain.Event
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	mu     sync.Mutex
	status domain.DebateStatus
	result domain.Result
}

// Events returns the session's event sequence. The channel is closed after
// the terminal event (complete or cancelled). A session produces its
// sequence exactly once; to re-run a debate, create a new session.
func (s *Session) Events() <-chan domain.Event {
	return s.events
}

// Start launches the debate and reports whether this call claimed it. Only
// the claiming caller may consume Events; later calls are no-ops returning
// false. ctx bounds outbound gateway calls; cancelling it does not replace
// Cancel.
func (s *Session) Start(ctx context.Context) bool {
	claimed := false
	s.startOnce.Do(func() {
		claimed = true
		s.setStatus(domain.DebateStatusRunning)
		go s.run(ctx)
	})
	return claimed
}

// Cancel requests cooperative cancellation. No new round or agent dispatch
// begins afterwards; gateway calls already in flight are allowed to drain
// and their results are discarded. Safe to call from any goroutine, any
// number of times.
func (s *Session) Cancel() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Result returns the final result once the event sequence has reached its
// terminal event.
func (s *Session) Result() (domain.Result, bool) {
	select {
	case <-s.done:
	default:
		return domain.Result{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, true
}

// Status returns the session's lifecycle status.
func (s *Session) Status() domain.DebateStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(status domain.DebateStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func (s *Session) run(ctx context.Context) {
	defer close(s.events)
	defer close(s.done)

	s.emit(domain.EventTypeStart, domain.StartPayload{Topic: s.Topic, Rounds: s.MaxRounds})

	result := s.coordinator.Run(ctx, s.stop, s.emit)

	s.mu.Lock()
	s.result = result
	if result.Cancelled {
		s.status = domain.DebateStatusCancelled
	} else {
		s.status = domain.DebateStatusDone
	}
	s.mu.Unlock()
}

func (s *Session) emit(eventType domain.EventType, payload any) {
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	s.events <- domain.Event{
		EventID:  "evt_" + uuid.New().String()[:8],
		DebateID: s.ID,
		Ts:       time.Now().UnixMilli(),
		Type:     eventType,
		Payload:  raw,
	}
}

// Manager creates and tracks sessions. One manager serves the whole process;
// each session owns its own coordinator, so concurrent debates never share
// mutable state.
type Manager struct {
	registry *Registry
	gateway  Gateway
	opts     llm.Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager over the given registry and gateway.
func NewManager(registry *Registry, gateway Gateway, opts llm.Options) *Manager {
	return &Manager{
		registry: registry,
		gateway:  gateway,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create validates the parameters and registers a new, not-yet-started
// session.
func (m *Manager) Create(topic string, maxRounds int, dispatch domain.DispatchPolicy) (*Session, error) {
	if topic == "" {
		return nil, fmt.Errorf("debate: topic is required")
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("debate: rounds must be >= 1, got %d", maxRounds)
	}
	if !dispatch.Valid() {
		return nil, fmt.Errorf("debate: unknown dispatch policy %q", dispatch)
	}

	runner := NewRunner(m.gateway, m.opts)
	synth := NewSynthesizer(m.gateway, m.registry, m.opts)

	s := &Session{
		ID:          "dbt_" + uuid.New().String()[:8],
		Topic:       topic,
		MaxRounds:   maxRounds,
		Dispatch:    dispatch,
		CreatedAt:   time.Now(),
		coordinator: NewCoordinator(m.registry, runner, synth, dispatch, topic, maxRounds),
		events:      make(chan domain.Event, 16),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		status:      domain.DebateStatusCreated,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Registry returns the agent registry the manager dispatches from.
func (m *Manager) Registry() *Registry {
	return m.registry
}
