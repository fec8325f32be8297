package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"veridex/internal/listing"
)

// DefaultBatchLimit bounds batch fan-out when the caller does not size the
// pool; it is conservative to respect external-API rate limits.
const DefaultBatchLimit = 4

// Batch reconciles many records with bounded concurrency. Records are
// independent; each gets its own run and results come back in input order.
// A record that fails validation leaves a nil slot and the first such error
// is returned after the whole batch settles.
func (s *Service) Batch(ctx context.Context, recs []listing.Record, limit int) ([]*RunState, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	results := make([]*RunState, len(recs))
	g := new(errgroup.Group)
	g.SetLimit(limit)

	var firstErr error
	errOnce := make(chan error, 1)
	for i, rec := range recs {
		g.Go(func() error {
			state, err := s.Run(ctx, rec)
			if err != nil {
				select {
				case errOnce <- err:
				default:
				}
				return nil
			}
			results[i] = state
			return nil
		})
	}
	_ = g.Wait()

	select {
	case firstErr = <-errOnce:
	default:
	}
	return results, firstErr
}
