// Package anomaly runs the pattern detectors that flag data-quality and
// fraud-risk signals beyond plain field mismatch. Detectors are independent
// of scoring and each yields zero or one finding.
package anomaly

import (
	"fmt"
	"strings"
	"time"

	"veridex/internal/confidence"
	"veridex/internal/evidence"
	"veridex/internal/listing"
	"veridex/internal/similarity"
)

// FraudRisk grades how strongly a finding suggests intent rather than decay.
type FraudRisk string

const (
	FraudRiskLow    FraudRisk = "LOW"
	FraudRiskMedium FraudRisk = "MEDIUM"
	FraudRiskHigh   FraudRisk = "HIGH"
)

// Finding names a matched anomaly pattern.
type Finding struct {
	Name      string              `json:"name"`
	Severity  similarity.Severity `json:"severity"`
	FraudRisk FraudRisk           `json:"fraud_risk"`
	Detail    string              `json:"detail,omitempty"`
}

const (
	NameExpiredCredential     = "expired_credential"
	NameMissingCriticalFields = "missing_critical_fields"
	NameMultiDiscrepancy      = "multi_discrepancy"
	NameJurisdictionMismatch  = "jurisdiction_mismatch"
	NamePipelineFailure       = "pipeline_failure"
)

// criticalFields are the identity-critical fields counted by the
// missing-critical-fields detector.
var criticalFields = []listing.Field{
	listing.FieldRegistryID,
	listing.FieldLicenseNumber,
	listing.FieldPhone,
	listing.FieldAddress,
}

// verifiedScore is the field score at or above which a critical field counts
// as verified: a weighted majority of its sources agreed.
const verifiedScore = 0.5

// maxDiscrepancies is the count above which the multi-discrepancy pattern
// fires.
const maxDiscrepancies = 3

// minVerifiedCritical is the verified-field floor below which the
// missing-critical-fields pattern fires.
const minVerifiedCritical = 2

// Detect runs every detector over one run's inputs. Order is fixed so the
// findings list is reproducible.
func Detect(rec listing.Record, entries []evidence.Entry, res confidence.Result, now time.Time) []Finding {
	var findings []Finding
	if f, ok := detectExpiredCredential(rec, entries, now); ok {
		findings = append(findings, f)
	}
	if f, ok := detectMissingCritical(res); ok {
		findings = append(findings, f)
	}
	if f, ok := detectMultiDiscrepancy(res); ok {
		findings = append(findings, f)
	}
	if f, ok := detectJurisdictionMismatch(rec, entries); ok {
		findings = append(findings, f)
	}
	return findings
}

// PipelineFailure is the synthetic finding attached when a stage itself
// fails; it forces the record into review instead of dropping the run.
func PipelineFailure(detail string) Finding {
	return Finding{
		Name:      NamePipelineFailure,
		Severity:  similarity.SeverityHigh,
		FraudRisk: FraudRiskLow,
		Detail:    detail,
	}
}

func detectExpiredCredential(rec listing.Record, entries []evidence.Entry, now time.Time) (Finding, bool) {
	for _, cred := range rec.Credentials {
		if !cred.Expires.IsZero() && cred.Expires.Before(now) {
			return expiredFinding(fmt.Sprintf("credential %q expired %s",
				cred.Name, cred.Expires.Format(time.DateOnly))), true
		}
	}
	for _, entry := range entries {
		if entry.Outcome != evidence.OutcomeFound {
			continue
		}
		raw, ok := entry.Field(listing.FieldLicenseExpiry)
		if !ok {
			continue
		}
		expires, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			continue
		}
		if expires.Before(now) {
			return expiredFinding(fmt.Sprintf("license %s expired %s per %s",
				rec.LicenseNumber, raw, entry.Source)), true
		}
	}
	return Finding{}, false
}

func expiredFinding(detail string) Finding {
	return Finding{
		Name:      NameExpiredCredential,
		Severity:  similarity.SeverityHigh,
		FraudRisk: FraudRiskMedium,
		Detail:    detail,
	}
}

func detectMissingCritical(res confidence.Result) (Finding, bool) {
	verified := 0
	for _, field := range criticalFields {
		if score, ok := res.Fields[field]; ok && score.Score >= verifiedScore {
			verified++
		}
	}
	if verified >= minVerifiedCritical {
		return Finding{}, false
	}
	return Finding{
		Name:      NameMissingCriticalFields,
		Severity:  similarity.SeverityHigh,
		FraudRisk: FraudRiskHigh,
		Detail:    fmt.Sprintf("only %d of %d critical fields verified", verified, len(criticalFields)),
	}, true
}

func detectMultiDiscrepancy(res confidence.Result) (Finding, bool) {
	if len(res.Discrepancies) <= maxDiscrepancies {
		return Finding{}, false
	}
	return Finding{
		Name:      NameMultiDiscrepancy,
		Severity:  similarity.SeverityMedium,
		FraudRisk: FraudRiskMedium,
		Detail:    fmt.Sprintf("%d fields disagree with gathered evidence", len(res.Discrepancies)),
	}, true
}

func detectJurisdictionMismatch(rec listing.Record, entries []evidence.Entry) (Finding, bool) {
	declared := strings.ToUpper(strings.TrimSpace(rec.Jurisdiction))
	if declared == "" {
		return Finding{}, false
	}

	// The most reliable source reporting a jurisdiction wins; authoritative
	// entries outrank weight.
	var resolved, resolvedBy string
	var bestWeight float64
	var bestAuthoritative bool
	for _, entry := range entries {
		if entry.Outcome != evidence.OutcomeFound {
			continue
		}
		value, ok := entry.Field(listing.FieldJurisdiction)
		if !ok {
			continue
		}
		better := (entry.Authoritative && !bestAuthoritative) ||
			(entry.Authoritative == bestAuthoritative && entry.Weight > bestWeight)
		if resolved == "" || better {
			resolved = strings.ToUpper(strings.TrimSpace(value))
			resolvedBy = entry.Source
			bestWeight = entry.Weight
			bestAuthoritative = entry.Authoritative
		}
	}
	if resolved == "" || resolved == declared {
		return Finding{}, false
	}
	return Finding{
		Name:      NameJurisdictionMismatch,
		Severity:  similarity.SeverityHigh,
		FraudRisk: FraudRiskMedium,
		Detail:    fmt.Sprintf("declared %s but %s resolves %s", declared, resolvedBy, resolved),
	}, true
}
