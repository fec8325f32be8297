package handler

import (
	"time"

	"veridex/internal/pipeline"
)

// ReconcileResponse is the HTTP response for POST /v1/reconcile.
type ReconcileResponse struct {
	RunID     string    `json:"run_id"`
	RecordID  string    `json:"record_id"`
	StartedAt time.Time `json:"started_at"`

	Action      string `json:"action"`
	Confidence  int    `json:"confidence"`
	NeedsReview bool   `json:"needs_review"`
	Severity    string `json:"severity"`
	Priority    int    `json:"priority"`

	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
	Anomalies     []AnomalyResponse     `json:"anomalies"`
	Evidence      []EvidenceResponse    `json:"evidence"`
	Errors        []string              `json:"errors,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// DiscrepancyResponse is one suggested field correction.
type DiscrepancyResponse struct {
	Field      string  `json:"field"`
	Current    string  `json:"current"`
	Suggested  string  `json:"suggested"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
}

// AnomalyResponse is one anomaly finding.
type AnomalyResponse struct {
	Name      string `json:"name"`
	Severity  string `json:"severity"`
	FraudRisk string `json:"fraud_risk"`
	Detail    string `json:"detail,omitempty"`
}

// EvidenceResponse summarizes one source's contribution.
type EvidenceResponse struct {
	Source        string    `json:"source"`
	Outcome       string    `json:"outcome"`
	Authoritative bool      `json:"authoritative"`
	Error         string    `json:"error,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
}

// FromRunState converts a terminal run state to an HTTP response.
func FromRunState(state *pipeline.RunState) *ReconcileResponse {
	resp := &ReconcileResponse{
		RunID:     state.RunID.String(),
		RecordID:  state.Record.ID.String(),
		StartedAt: state.StartedAt,
		Errors:    state.Errors,
	}
	if d := state.Decision; d != nil {
		resp.Action = string(d.Action)
		resp.Confidence = d.Confidence
		resp.NeedsReview = d.NeedsReview
		resp.Severity = string(d.Severity)
		resp.Priority = d.Priority
		resp.EvaluatedAt = d.EvaluatedAt

		resp.Discrepancies = make([]DiscrepancyResponse, 0, len(d.Discrepancies))
		for _, disc := range d.Discrepancies {
			resp.Discrepancies = append(resp.Discrepancies, DiscrepancyResponse{
				Field:      string(disc.Field),
				Current:    disc.Current,
				Suggested:  disc.Suggested,
				Source:     disc.Source,
				Confidence: disc.Confidence,
				Severity:   string(disc.Severity),
			})
		}
		resp.Anomalies = make([]AnomalyResponse, 0, len(d.Anomalies))
		for _, a := range d.Anomalies {
			resp.Anomalies = append(resp.Anomalies, AnomalyResponse{
				Name:      a.Name,
				Severity:  string(a.Severity),
				FraudRisk: string(a.FraudRisk),
				Detail:    a.Detail,
			})
		}
	}
	resp.Evidence = make([]EvidenceResponse, 0, len(state.Evidence))
	for _, e := range state.Evidence {
		resp.Evidence = append(resp.Evidence, EvidenceResponse{
			Source:        e.Source,
			Outcome:       string(e.Outcome),
			Authoritative: e.Authoritative,
			Error:         e.Err,
			CheckedAt:     e.CheckedAt,
		})
	}
	return resp
}
