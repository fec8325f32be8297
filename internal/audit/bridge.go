package audit

import (
	"context"

	"veridex/internal/pipeline"
)

// DecisionEmitter adapts a Publisher to the pipeline's audit port, mapping
// a terminal run state onto the wire-level Event.
type DecisionEmitter struct {
	publisher Publisher
}

func NewDecisionEmitter(publisher Publisher) *DecisionEmitter {
	return &DecisionEmitter{publisher: publisher}
}

func (e *DecisionEmitter) EmitDecision(ctx context.Context, state pipeline.RunState) error {
	d := state.Decision
	if d == nil {
		return nil
	}
	event := Event{
		Timestamp:  d.EvaluatedAt,
		RunID:      state.RunID.String(),
		RecordID:   state.Record.ID.String(),
		Action:     string(d.Action),
		Confidence: d.Confidence,
		Priority:   d.Priority,
		Severity:   string(d.Severity),
	}
	for _, finding := range d.Anomalies {
		event.Anomalies = append(event.Anomalies, finding.Name)
	}
	return e.publisher.Emit(ctx, event)
}
