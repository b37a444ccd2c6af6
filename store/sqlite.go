package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aidebate/arena/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS debates (
			debate_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			max_rounds INTEGER NOT NULL,
			dispatch TEXT NOT NULL,
			status TEXT NOT NULL,
			synthesis TEXT,
			verdict TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS responses (
			debate_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			position INTEGER NOT NULL,
			agent TEXT NOT NULL,
			stance TEXT NOT NULL,
			response TEXT NOT NULL,
			PRIMARY KEY (debate_id, round, position),
			FOREIGN KEY (debate_id) REFERENCES debates(debate_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_debate ON responses(debate_id, round, position)`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL UNIQUE,
			debate_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (debate_id) REFERENCES debates(debate_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_debate ON events(debate_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateDebate inserts a new debate record.
func (s *SQLiteStore) CreateDebate(ctx context.Context, debate *domain.Debate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debates (debate_id, topic, max_rounds, dispatch, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		debate.DebateID, debate.Topic, debate.MaxRounds, string(debate.Dispatch), string(debate.Status), debate.CreatedAt)
	return err
}

// GetDebate retrieves a debate by ID. Returns nil when not found.
func (s *SQLiteStore) GetDebate(ctx context.Context, debateID string) (*domain.Debate, error) {
	var d domain.Debate
	var synthesis, verdict sql.NullString
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT debate_id, topic, max_rounds, dispatch, status, synthesis, verdict, created_at, ended_at
		 FROM debates WHERE debate_id = ?`,
		debateID).Scan(&d.DebateID, &d.Topic, &d.MaxRounds, &d.Dispatch, &d.Status, &synthesis, &verdict, &d.CreatedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if synthesis.Valid {
		d.Synthesis = synthesis.String
	}
	if verdict.Valid {
		d.Verdict = domain.Verdict(verdict.String)
	}
	if endedAt.Valid {
		d.EndedAt = &endedAt.Time
	}
	return &d, nil
}

// UpdateDebateStatus updates a debate's status.
func (s *SQLiteStore) UpdateDebateStatus(ctx context.Context, debateID string, status domain.DebateStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE debates SET status = ? WHERE debate_id = ?`,
		string(status), debateID)
	return err
}

// UpdateDebateCompleted marks a debate terminal with its synthesis and
// verdict.
func (s *SQLiteStore) UpdateDebateCompleted(ctx context.Context, debateID string, status domain.DebateStatus, synthesis string, verdict domain.Verdict) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE debates SET status = ?, synthesis = ?, verdict = ?, ended_at = CURRENT_TIMESTAMP WHERE debate_id = ?`,
		string(status), synthesis, string(verdict), debateID)
	return err
}

// CreateResponse inserts one agent response at its registry position.
func (s *SQLiteStore) CreateResponse(ctx context.Context, debateID string, position int, resp *domain.AgentResponse) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (debate_id, round, position, agent, stance, response) VALUES (?, ?, ?, ?, ?, ?)`,
		debateID, resp.Round, position, resp.Agent, string(resp.Stance), resp.Response)
	return err
}

// GetResponses returns a debate's transcript grouped into round records,
// ordered by round then registry position.
func (s *SQLiteStore) GetResponses(ctx context.Context, debateID string) ([]domain.RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT round, agent, stance, response FROM responses WHERE debate_id = ? ORDER BY round, position`,
		debateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RoundRecord
	for rows.Next() {
		var resp domain.AgentResponse
		if err := rows.Scan(&resp.Round, &resp.Agent, &resp.Stance, &resp.Response); err != nil {
			return nil, err
		}
		if len(records) == 0 || records[len(records)-1].Round != resp.Round {
			records = append(records, domain.RoundRecord{Round: resp.Round})
		}
		last := &records[len(records)-1]
		last.Responses = append(last.Responses, resp)
	}
	return records, rows.Err()
}

// CreateEvent inserts an event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	var payload any
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, debate_id, ts, type, payload) VALUES (?, ?, ?, ?, ?)`,
		event.EventID, event.DebateID, event.Ts, string(event.Type), payload)
	return err
}

// GetEvents retrieves events for a debate after the given timestamp.
func (s *SQLiteStore) GetEvents(ctx context.Context, debateID string, afterTs int64, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, debate_id, ts, type, payload FROM events
		 WHERE debate_id = ? AND ts > ? ORDER BY seq LIMIT ?`,
		debateID, afterTs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var payload sql.NullString
		if err := rows.Scan(&e.EventID, &e.DebateID, &e.Ts, &e.Type, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
