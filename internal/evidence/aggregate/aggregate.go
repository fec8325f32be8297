// Package aggregate fans a record out to the stage's adapter groups
// concurrently and collects every outcome before proceeding.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"veridex/internal/evidence"
	"veridex/internal/evidence/adapters"
	"veridex/internal/listing"
)

// DefaultTimeout bounds a single adapter call when the group does not set
// its own.
const DefaultTimeout = 5 * time.Second

// Gather invokes all groups concurrently and waits for every one to settle.
// One adapter's timeout or failure never cancels or blocks its siblings:
// group goroutines always return nil and report failures as ERROR entries.
//
// Within a group the primary runs first; fallbacks run in order only while
// the preceding adapter returned NOT_FOUND and the group's
// ContinueIfNotFound policy is set. Every entry produced along the way is
// preserved, including the primary's NOT_FOUND.
//
// The returned list is ordered by group, then by position within the group,
// so repeated runs over deterministic adapters yield identical evidence
// lists.
func Gather(ctx context.Context, rec listing.Record, groups []adapters.Group) []evidence.Entry {
	perGroup := make([][]evidence.Entry, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		g.Go(func() error {
			perGroup[i] = runGroup(gctx, rec, group)
			return nil
		})
	}
	// Goroutines never return errors; Wait is a settle-all barrier.
	_ = g.Wait()

	var entries []evidence.Entry
	for _, chunk := range perGroup {
		entries = append(entries, chunk...)
	}
	return entries
}

func runGroup(ctx context.Context, rec listing.Record, group adapters.Group) []evidence.Entry {
	chain := make([]adapters.Adapter, 0, 1+len(group.Fallbacks))
	if group.Primary != nil {
		chain = append(chain, group.Primary)
	}
	chain = append(chain, group.Fallbacks...)

	var entries []evidence.Entry
	for i, adapter := range chain {
		entry := query(ctx, rec, adapter, group.Timeout)
		entries = append(entries, entry)

		// A fallback only fires on NOT_FOUND; FOUND and ERROR both end the
		// chain (an errored primary may still have the record, so a broader
		// source would add conflicting signal rather than evidence).
		if entry.Outcome != evidence.OutcomeNotFound {
			break
		}
		if !group.ContinueIfNotFound || i == len(chain)-1 {
			break
		}
	}
	return entries
}

func query(ctx context.Context, rec listing.Record, adapter adapters.Adapter, timeout time.Duration) (entry evidence.Entry) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// An adapter must not panic, but a defect in one source must not take
	// down the run either.
	defer func() {
		if r := recover(); r != nil {
			entry = evidence.Errored(adapter.Name(), adapter.Weight(), adapter.Authoritative(),
				fmt.Errorf("adapter panic: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return evidence.Errored(adapter.Name(), adapter.Weight(), adapter.Authoritative(), err)
	}
	return adapter.Query(ctx, rec)
}
