package pipeline

import (
	"context"
	"time"

	"veridex/internal/evidence"
	"veridex/internal/evidence/adapters"
	"veridex/internal/listing"
)

// instrumented wraps each adapter in a stage with latency observation so
// per-source gather durations land in the metrics without the aggregator
// knowing about Prometheus.
func (s *Service) instrumented(groups []adapters.Group) []adapters.Group {
	if s.metrics == nil {
		return groups
	}
	out := make([]adapters.Group, len(groups))
	for i, group := range groups {
		out[i] = group
		if group.Primary != nil {
			out[i].Primary = &timedAdapter{inner: group.Primary, service: s}
		}
		if len(group.Fallbacks) > 0 {
			fallbacks := make([]adapters.Adapter, len(group.Fallbacks))
			for j, fb := range group.Fallbacks {
				fallbacks[j] = &timedAdapter{inner: fb, service: s}
			}
			out[i].Fallbacks = fallbacks
		}
	}
	return out
}

type timedAdapter struct {
	inner   adapters.Adapter
	service *Service
}

func (t *timedAdapter) Name() string        { return t.inner.Name() }
func (t *timedAdapter) Weight() float64     { return t.inner.Weight() }
func (t *timedAdapter) Authoritative() bool { return t.inner.Authoritative() }

func (t *timedAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	start := time.Now()
	entry := t.inner.Query(ctx, rec)
	t.service.metrics.ObserveEvidenceLatency(t.inner.Name(), time.Since(start))
	return entry
}
