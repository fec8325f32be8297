// Package decision holds the terminal publish/review verdict and the
// threshold rules that produce it.
package decision

import (
	"time"

	"github.com/google/uuid"

	"veridex/internal/anomaly"
	"veridex/internal/confidence"
	"veridex/internal/similarity"
)

// Action is the routing outcome for a record.
type Action string

const (
	ActionAutoPublish Action = "auto_publish"
	ActionNeedsReview Action = "needs_review"
)

// Thresholds are the decision-router confidence bounds. These operate on
// the overall field-blend confidence (0-1 scale) and are deliberately
// distinct from the 0.45 field-action threshold in the scoring library; the
// two signals classify different things and are never unified.
type Thresholds struct {
	// ReviewBelow routes any record under it straight to review.
	ReviewBelow float64 `toml:"review_below"`

	// AutoPublishAt is the floor for auto-publishing an anomaly-free record.
	AutoPublishAt float64 `toml:"auto_publish_at"`
}

// DefaultThresholds returns the shipped router bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReviewBelow:   0.70,
		AutoPublishAt: 0.85,
	}
}

// Decision is the terminal output of one reconciliation run. Created exactly
// once per run and immutable thereafter.
type Decision struct {
	RunID    uuid.UUID `json:"run_id"`
	RecordID uuid.UUID `json:"record_id"`

	// Confidence is the overall confidence as an integer percent (0-100).
	Confidence int `json:"confidence"`

	Action      Action              `json:"action"`
	NeedsReview bool                `json:"needs_review"`
	Severity    similarity.Severity `json:"severity"`

	// Priority ranks review urgency; matched routing rules accumulate into
	// it additively.
	Priority int `json:"priority"`

	Discrepancies []confidence.Discrepancy `json:"discrepancies,omitempty"`
	Anomalies     []anomaly.Finding        `json:"anomalies,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}
