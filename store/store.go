// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/aidebate/arena/domain"
)

// Store defines the interface for debate persistence. The debate engine
// itself is in-memory; the store is a durable replay log maintained by the
// transport layer.
type Store interface {
	// Debate operations
	CreateDebate(ctx context.Context, debate *domain.Debate) error
	GetDebate(ctx context.Context, debateID string) (*domain.Debate, error)
	UpdateDebateCompleted(ctx context.Context, debateID string, status domain.DebateStatus, synthesis string, verdict domain.Verdict) error
	UpdateDebateStatus(ctx context.Context, debateID string, status domain.DebateStatus) error

	// Response operations
	CreateResponse(ctx context.Context, debateID string, position int, resp *domain.AgentResponse) error
	GetResponses(ctx context.Context, debateID string) ([]domain.RoundRecord, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, debateID string, afterTs int64, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}
