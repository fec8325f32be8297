// Package storage persists completed reconciliation runs as an append-only
// audit trail. The pipeline itself stays storage-free; persistence is wired
// in as a post-run hook.
package storage

import (
	"context"

	"github.com/google/uuid"

	dErrors "veridex/pkg/domain-errors"

	"veridex/internal/pipeline"
)

// ErrNotFound keeps storage-specific 404s consistent across in-memory and
// PostgreSQL implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "run not found")

// Store is the run audit trail. Append-only: runs are never updated or
// deleted.
type Store interface {
	SaveRun(ctx context.Context, state pipeline.RunState) error
	FindRun(ctx context.Context, runID uuid.UUID) (*pipeline.RunState, error)
	ListByRecord(ctx context.Context, recordID uuid.UUID) ([]pipeline.RunState, error)
}
