// Package pipeline sequences a reconciliation run through its four ordered
// stages: STARTED -> EVIDENCE_GATHERED -> SCORED -> ROUTED. The run state is
// owned by the orchestrator and only ever appended to; no stage mutates a
// prior stage's output. A run always terminates in a Decision - partial
// failure degrades confidence, it never drops the record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"veridex/internal/anomaly"
	"veridex/internal/confidence"
	"veridex/internal/decision"
	"veridex/internal/evidence"
	"veridex/internal/evidence/adapters"
	"veridex/internal/evidence/aggregate"
	"veridex/internal/listing"
	"veridex/internal/pipeline/metrics"
	"veridex/internal/similarity"
	dErrors "veridex/pkg/domain-errors"
)

// Stage names one pipeline state.
type Stage string

const (
	StageStarted          Stage = "STARTED"
	StageEvidenceGathered Stage = "EVIDENCE_GATHERED"
	StageScored           Stage = "SCORED"
	StageRouted           Stage = "ROUTED"
)

// StageEvent is emitted once per completed stage on streaming runs.
type StageEvent struct {
	RunID     uuid.UUID `json:"run_id"`
	Stage     Stage     `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	State     RunState  `json:"state"`
}

// RunState accumulates one run's inputs and outputs. Stages append; nothing
// is overwritten once set.
type RunState struct {
	RunID     uuid.UUID      `json:"run_id"`
	Record    listing.Record `json:"record"`
	StartedAt time.Time      `json:"started_at"`

	Evidence []evidence.Entry   `json:"evidence,omitempty"`
	Scores   *confidence.Result `json:"scores,omitempty"`
	Findings []anomaly.Finding  `json:"findings,omitempty"`
	Decision *decision.Decision `json:"decision,omitempty"`

	// Errors is the append-only log of recovered stage errors.
	Errors []string `json:"errors,omitempty"`
}

// snapshot copies the state so emitted events stay immutable while the run
// keeps appending.
func (s RunState) snapshot() RunState {
	out := s
	out.Evidence = append([]evidence.Entry(nil), s.Evidence...)
	out.Findings = append([]anomaly.Finding(nil), s.Findings...)
	out.Errors = append([]string(nil), s.Errors...)
	if s.Scores != nil {
		scores := *s.Scores
		out.Scores = &scores
	}
	if s.Decision != nil {
		d := *s.Decision
		out.Decision = &d
	}
	return out
}

// AuditPublisher receives one event per routed decision.
type AuditPublisher interface {
	EmitDecision(ctx context.Context, state RunState) error
}

// RunStore persists completed runs for the audit trail.
type RunStore interface {
	SaveRun(ctx context.Context, state RunState) error
}

// Service orchestrates reconciliation runs.
type Service struct {
	stageOne []adapters.Group // identity-critical sources
	stageTwo []adapters.Group // presence and location sources

	engine     *confidence.Engine
	scoring    similarity.Config
	thresholds decision.Thresholds

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	audit   AuditPublisher
	store   RunStore
	clock   func() time.Time
	newID   func() uuid.UUID
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithRunStore(store RunStore) Option {
	return func(s *Service) { s.store = store }
}

// WithClock injects a clock for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithRunIDGenerator injects the run ID source for deterministic tests.
func WithRunIDGenerator(gen func() uuid.UUID) Option {
	return func(s *Service) { s.newID = gen }
}

// New constructs the pipeline. Stage one carries the identity-critical
// sources (identifier registry, license board); stage two the presence and
// location sources (geocoding, listing search with web-search fallback).
func New(stageOne, stageTwo []adapters.Group, scoring similarity.Config, blend confidence.BlendWeights, thresholds decision.Thresholds, opts ...Option) *Service {
	s := &Service{
		stageOne:   stageOne,
		stageTwo:   stageTwo,
		engine:     confidence.NewEngine(scoring, blend),
		scoring:    scoring,
		thresholds: thresholds,
		tracer:     otel.Tracer("veridex/pipeline"),
		clock:      time.Now,
		newID:      uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reconciles one record synchronously and returns the terminal state.
func (s *Service) Run(ctx context.Context, rec listing.Record) (*RunState, error) {
	return s.run(ctx, rec, nil)
}

// RunStream reconciles one record, emitting a StageEvent after each
// completed stage. The events channel is closed when the run terminates.
func (s *Service) RunStream(ctx context.Context, rec listing.Record, events chan<- StageEvent) (*RunState, error) {
	defer close(events)
	return s.run(ctx, rec, events)
}

func (s *Service) run(ctx context.Context, rec listing.Record, events chan<- StageEvent) (*RunState, error) {
	if rec.Name == "" && rec.RegistryID == "" && rec.LicenseNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "record carries no reconcilable identity fields")
	}

	start := s.clock()
	state := &RunState{
		RunID:     s.newID(),
		Record:    rec,
		StartedAt: start,
	}

	ctx, span := s.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	s.emit(ctx, events, state, StageStarted)

	s.gatherStage(ctx, state, "gather.identity", s.stageOne)
	s.gatherStage(ctx, state, "gather.presence", s.stageTwo)
	s.emit(ctx, events, state, StageEvidenceGathered)

	s.scoreStage(ctx, state)
	s.emit(ctx, events, state, StageScored)

	// Branch point: a run whose scoring stage failed takes the fallback
	// arm; both arms funnel into routing.
	var d decision.Decision
	if state.Scores == nil {
		d = decision.Fallback(state.RunID, rec.ID, lastError(state), s.clock())
		s.metrics.IncrementFallback()
	} else {
		d = decision.Route(s.thresholds, state.RunID, rec.ID, s.scoring, *state.Scores, state.Findings, s.clock())
	}
	state.Decision = &d

	s.finish(ctx, state, start)
	s.emit(ctx, events, state, StageRouted)
	return state, nil
}

// gatherStage collects evidence from one stage's adapter groups. Adapter
// failures are already normalized into ERROR entries; a defect in the stage
// itself is recovered into the error log so the run can still route.
func (s *Service) gatherStage(ctx context.Context, state *RunState, name string, groups []adapters.Group) {
	if len(groups) == 0 {
		return
	}
	ctx, span := s.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("%s: %v", name, r))
		}
	}()

	entries := aggregate.Gather(ctx, state.Record, s.instrumented(groups))
	state.Evidence = append(state.Evidence, entries...)

	for _, entry := range entries {
		s.metrics.IncrementEvidenceOutcome(entry.Source, string(entry.Outcome))
		if entry.Outcome == evidence.OutcomeError {
			state.Errors = append(state.Errors, fmt.Sprintf("%s: %s", entry.Source, entry.Err))
		}
	}
}

func (s *Service) scoreStage(ctx context.Context, state *RunState) {
	_, span := s.tracer.Start(ctx, "pipeline.score")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("score: %v", r))
			state.Scores = nil
			state.Findings = nil
		}
	}()

	res := s.engine.Score(state.Record, state.Evidence)
	state.Scores = &res
	state.Findings = anomaly.Detect(state.Record, state.Evidence, res, s.clock())
}

func (s *Service) finish(ctx context.Context, state *RunState, start time.Time) {
	d := state.Decision
	s.metrics.IncrementDecision(string(d.Action), string(d.Severity))
	s.metrics.ObserveRunLatency(s.clock().Sub(start))

	if s.audit != nil {
		if err := s.audit.EmitDecision(ctx, state.snapshot()); err != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("audit: %v", err))
		}
	}
	if s.store != nil {
		if err := s.store.SaveRun(ctx, state.snapshot()); err != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("store: %v", err))
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "run routed",
			"run_id", state.RunID,
			"record_id", state.Record.ID,
			"action", d.Action,
			"confidence", d.Confidence,
			"priority", d.Priority,
			"discrepancies", len(d.Discrepancies),
			"anomalies", len(d.Anomalies),
			"recovered_errors", len(state.Errors),
		)
	}
}

func (s *Service) emit(ctx context.Context, events chan<- StageEvent, state *RunState, stage Stage) {
	if events == nil {
		return
	}
	event := StageEvent{
		RunID:     state.RunID,
		Stage:     stage,
		Timestamp: s.clock(),
		State:     state.snapshot(),
	}
	select {
	case events <- event:
	case <-ctx.Done():
	}
}

func lastError(state *RunState) string {
	if len(state.Errors) == 0 {
		return "scoring stage produced no result"
	}
	return state.Errors[len(state.Errors)-1]
}
