package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"veridex/internal/pipeline"
)

// MemoryStore keeps runs in process memory. It favors clarity over
// performance and backs tests and single-node deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]pipeline.RunState
	// byRecord preserves append order per record.
	byRecord map[uuid.UUID][]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:     make(map[uuid.UUID]pipeline.RunState),
		byRecord: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *MemoryStore) SaveRun(_ context.Context, state pipeline.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[state.RunID]; !exists {
		s.byRecord[state.Record.ID] = append(s.byRecord[state.Record.ID], state.RunID)
	}
	s.runs[state.RunID] = state
	return nil
}

func (s *MemoryStore) FindRun(_ context.Context, runID uuid.UUID) (*pipeline.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.runs[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return &state, nil
}

func (s *MemoryStore) ListByRecord(_ context.Context, recordID uuid.UUID) ([]pipeline.RunState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byRecord[recordID]
	out := make([]pipeline.RunState, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.runs[id])
	}
	return out, nil
}
