package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"veridex/internal/pipeline"
)

// PostgresStore persists runs in PostgreSQL. Run payloads (record snapshot,
// evidence, decision) are stored as JSONB so the audit trail survives schema
// drift in the domain types.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EnsureSchema creates the runs table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reconciliation_runs (
			run_id     UUID PRIMARY KEY,
			record_id  UUID NOT NULL,
			state      JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS reconciliation_runs_record_idx
			ON reconciliation_runs (record_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("ensure runs schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, state pipeline.RunState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal run state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reconciliation_runs (run_id, record_id, state, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO NOTHING
	`, state.RunID, state.Record.ID, payload, s.clock())
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindRun(ctx context.Context, runID uuid.UUID) (*pipeline.RunState, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM reconciliation_runs WHERE run_id = $1
	`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	var state pipeline.RunState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal run state: %w", err)
	}
	return &state, nil
}

func (s *PostgresStore) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]pipeline.RunState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state FROM reconciliation_runs
		WHERE record_id = $1
		ORDER BY created_at
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []pipeline.RunState
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var state pipeline.RunState
		if err := json.Unmarshal(payload, &state); err != nil {
			return nil, fmt.Errorf("unmarshal run state: %w", err)
		}
		out = append(out, state)
	}
	return out, rows.Err()
}
