// Package audit emits one event per routed decision so downstream consumers
// (review queues, compliance trails) can follow the pipeline without
// coupling to it.
package audit

import (
	"context"
	"sync"
	"time"
)

// Event captures the outcome of one reconciliation run. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	RecordID   string    `json:"record_id"`
	Action     string    `json:"action"`
	Confidence int       `json:"confidence"`
	Priority   int       `json:"priority"`
	Severity   string    `json:"severity"`
	Anomalies  []string  `json:"anomalies,omitempty"`
}

// Publisher delivers audit events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close()
}

// MemoryPublisher collects events in memory; the test and single-node sink.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() {}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Event(nil), p.events...)
}
