package decision

import (
	"math"
	"time"

	"github.com/google/uuid"

	"veridex/internal/anomaly"
	"veridex/internal/confidence"
	"veridex/internal/similarity"
)

// Route applies the ordered routing rules to one run's scoring result.
// This is pure domain logic: no I/O, no side effects; identical inputs
// always yield an identical Decision.
//
// Rules are evaluated in order and accumulate priority additively:
//  1. overall confidence < ReviewBelow          -> review, +50
//  2. any anomaly finding                       -> review, +40 (+50 if HIGH fraud risk)
//  3. discrepancy count > 2                     -> review, +30
//  4. ReviewBelow <= confidence < AutoPublishAt -> review, +20
//  5. confidence >= AutoPublishAt, no anomalies -> auto-publish, priority 0
//
// The ordering and additive accumulation are load-bearing for review-queue
// reproducibility; do not reorder.
func Route(th Thresholds, runID, recordID uuid.UUID, cfg similarity.Config, res confidence.Result, findings []anomaly.Finding, evaluatedAt time.Time) Decision {
	overall := res.Overall
	needsReview := false
	priority := 0

	// Rule 1: low confidence is the strongest review signal.
	if overall < th.ReviewBelow {
		needsReview = true
		priority += 50
	}

	// Rule 2: anomalies always route to review; high fraud risk escalates.
	if len(findings) > 0 {
		needsReview = true
		priority += 40
		if anyHighFraudRisk(findings) {
			priority += 50
		}
	}

	// Rule 3: widespread field drift.
	if len(res.Discrepancies) > 2 {
		needsReview = true
		priority += 30
	}

	// Rule 4: the mid band is reviewable even without anomalies.
	if overall >= th.ReviewBelow && overall < th.AutoPublishAt {
		needsReview = true
		priority += 20
	}

	// Rule 5: clean and confident publishes automatically.
	action := ActionNeedsReview
	if !needsReview {
		action = ActionAutoPublish
		priority = 0
	}

	return Decision{
		RunID:         runID,
		RecordID:      recordID,
		Confidence:    toPercent(overall),
		Action:        action,
		NeedsReview:   needsReview,
		Severity:      decisionSeverity(cfg, overall, findings),
		Priority:      priority,
		Discrepancies: res.Discrepancies,
		Anomalies:     findings,
		EvaluatedAt:   evaluatedAt,
	}
}

// Fallback builds the best-effort review decision for a run whose scoring
// stage failed. The record is never silently dropped: it carries a synthetic
// pipeline-failure anomaly and zero confidence.
func Fallback(runID, recordID uuid.UUID, detail string, evaluatedAt time.Time) Decision {
	finding := anomaly.PipelineFailure(detail)
	return Decision{
		RunID:       runID,
		RecordID:    recordID,
		Confidence:  0,
		Action:      ActionNeedsReview,
		NeedsReview: true,
		Severity:    similarity.SeverityHigh,
		Priority:    90, // rules 1 and 2 both apply to a failed run
		Anomalies:   []anomaly.Finding{finding},
		EvaluatedAt: evaluatedAt,
	}
}

func anyHighFraudRisk(findings []anomaly.Finding) bool {
	for _, f := range findings {
		if f.FraudRisk == anomaly.FraudRiskHigh {
			return true
		}
	}
	return false
}

// decisionSeverity starts from the scoring-library grade of the overall
// confidence and escalates to the worst anomaly severity.
func decisionSeverity(cfg similarity.Config, overall float64, findings []anomaly.Finding) similarity.Severity {
	severity := cfg.SeverityFor(overall)
	for _, f := range findings {
		if worse(f.Severity, severity) {
			severity = f.Severity
		}
	}
	return severity
}

func worse(a, b similarity.Severity) bool {
	return rank(a) > rank(b)
}

func rank(s similarity.Severity) int {
	switch s {
	case similarity.SeverityHigh:
		return 2
	case similarity.SeverityMedium:
		return 1
	default:
		return 0
	}
}

func toPercent(confidence float64) int {
	return int(math.Round(confidence * 100))
}
