package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridex/internal/confidence"
	"veridex/internal/evidence"
	"veridex/internal/listing"
	"veridex/internal/similarity"
)

var detectNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// verifiedResult builds a Result whose critical fields all count as verified,
// so only the detector under test fires.
func verifiedResult() confidence.Result {
	fields := make(map[listing.Field]confidence.FieldScore)
	for _, f := range []listing.Field{
		listing.FieldRegistryID,
		listing.FieldLicenseNumber,
		listing.FieldPhone,
		listing.FieldAddress,
	} {
		fields[f] = confidence.FieldScore{Field: f, Score: 1.0}
	}
	return confidence.Result{Fields: fields}
}

func findByName(findings []Finding, name string) (Finding, bool) {
	for _, f := range findings {
		if f.Name == name {
			return f, true
		}
	}
	return Finding{}, false
}

func TestDetect_CleanRecordHasNoFindings(t *testing.T) {
	rec := listing.Record{Name: "acme clinic", Jurisdiction: "IL"}
	findings := Detect(rec, nil, verifiedResult(), detectNow)
	assert.Empty(t, findings)
}

func TestDetect_ExpiredRecordCredential(t *testing.T) {
	rec := listing.Record{
		Name: "jane smith",
		Credentials: []listing.Credential{
			{Name: "Board Certification", Expires: detectNow.AddDate(-1, 0, 0)},
		},
	}

	findings := Detect(rec, nil, verifiedResult(), detectNow)

	f, ok := findByName(findings, NameExpiredCredential)
	require.True(t, ok)
	assert.Equal(t, similarity.SeverityHigh, f.Severity)
	assert.Equal(t, FraudRiskMedium, f.FraudRisk)
	assert.Contains(t, f.Detail, "Board Certification")
}

func TestDetect_ExpiredLicensePerEvidence(t *testing.T) {
	rec := listing.Record{Name: "jane smith", LicenseNumber: "LIC-99"}
	entries := []evidence.Entry{
		evidence.Found("license_registry", 0.9, false, map[listing.Field]string{
			listing.FieldLicenseExpiry: "2024-01-31",
		}),
	}

	findings := Detect(rec, entries, verifiedResult(), detectNow)

	f, ok := findByName(findings, NameExpiredCredential)
	require.True(t, ok)
	assert.Contains(t, f.Detail, "license_registry")
	assert.Contains(t, f.Detail, "2024-01-31")
}

func TestDetect_FutureExpiryIsClean(t *testing.T) {
	rec := listing.Record{
		Credentials: []listing.Credential{
			{Name: "Board Certification", Expires: detectNow.AddDate(1, 0, 0)},
		},
	}
	entries := []evidence.Entry{
		evidence.Found("license_registry", 0.9, false, map[listing.Field]string{
			listing.FieldLicenseExpiry: "2030-01-01",
		}),
	}

	findings := Detect(rec, entries, verifiedResult(), detectNow)
	_, ok := findByName(findings, NameExpiredCredential)
	assert.False(t, ok)
}

func TestDetect_UnparseableExpiryIgnored(t *testing.T) {
	entries := []evidence.Entry{
		evidence.Found("license_registry", 0.9, false, map[listing.Field]string{
			listing.FieldLicenseExpiry: "next spring",
		}),
	}

	findings := Detect(listing.Record{}, entries, verifiedResult(), detectNow)
	_, ok := findByName(findings, NameExpiredCredential)
	assert.False(t, ok)
}

func TestDetect_MissingCriticalFields(t *testing.T) {
	res := confidence.Result{Fields: map[listing.Field]confidence.FieldScore{
		listing.FieldRegistryID: {Field: listing.FieldRegistryID, Score: 0.9},
		listing.FieldPhone:      {Field: listing.FieldPhone, Score: 0.3}, // below the verified floor
	}}

	findings := Detect(listing.Record{}, nil, res, detectNow)

	f, ok := findByName(findings, NameMissingCriticalFields)
	require.True(t, ok)
	assert.Equal(t, similarity.SeverityHigh, f.Severity)
	assert.Equal(t, FraudRiskHigh, f.FraudRisk)
	assert.Contains(t, f.Detail, "only 1 of 4")
}

func TestDetect_TwoVerifiedCriticalFieldsSuffice(t *testing.T) {
	res := confidence.Result{Fields: map[listing.Field]confidence.FieldScore{
		listing.FieldRegistryID: {Field: listing.FieldRegistryID, Score: 0.6},
		listing.FieldAddress:    {Field: listing.FieldAddress, Score: 0.5},
	}}

	findings := Detect(listing.Record{}, nil, res, detectNow)
	_, ok := findByName(findings, NameMissingCriticalFields)
	assert.False(t, ok)
}

func TestDetect_MultiDiscrepancy(t *testing.T) {
	res := verifiedResult()
	for i := 0; i < 4; i++ {
		res.Discrepancies = append(res.Discrepancies, confidence.Discrepancy{Field: listing.FieldPhone})
	}

	findings := Detect(listing.Record{}, nil, res, detectNow)

	f, ok := findByName(findings, NameMultiDiscrepancy)
	require.True(t, ok)
	assert.Equal(t, similarity.SeverityMedium, f.Severity)
	assert.Contains(t, f.Detail, "4 fields")
}

func TestDetect_ThreeDiscrepanciesAreTolerated(t *testing.T) {
	res := verifiedResult()
	for i := 0; i < 3; i++ {
		res.Discrepancies = append(res.Discrepancies, confidence.Discrepancy{Field: listing.FieldPhone})
	}

	findings := Detect(listing.Record{}, nil, res, detectNow)
	_, ok := findByName(findings, NameMultiDiscrepancy)
	assert.False(t, ok)
}

func TestDetect_JurisdictionMismatch(t *testing.T) {
	rec := listing.Record{Jurisdiction: "IL"}
	entries := []evidence.Entry{
		evidence.Found("license_registry", 0.9, false, map[listing.Field]string{
			listing.FieldJurisdiction: "IL",
		}),
		evidence.Found("identifier_registry", 1.0, true, map[listing.Field]string{
			listing.FieldJurisdiction: "TX",
		}),
	}

	findings := Detect(rec, entries, verifiedResult(), detectNow)

	f, ok := findByName(findings, NameJurisdictionMismatch)
	require.True(t, ok)
	// The authoritative source outranks the agreeing one.
	assert.Contains(t, f.Detail, "identifier_registry")
	assert.Contains(t, f.Detail, "TX")
}

func TestDetect_JurisdictionAgreementIsClean(t *testing.T) {
	rec := listing.Record{Jurisdiction: "il"}
	entries := []evidence.Entry{
		evidence.Found("identifier_registry", 1.0, true, map[listing.Field]string{
			listing.FieldJurisdiction: "IL",
		}),
	}

	findings := Detect(rec, entries, verifiedResult(), detectNow)
	_, ok := findByName(findings, NameJurisdictionMismatch)
	assert.False(t, ok)
}

func TestDetect_NoDeclaredJurisdictionSkipsDetector(t *testing.T) {
	entries := []evidence.Entry{
		evidence.Found("identifier_registry", 1.0, true, map[listing.Field]string{
			listing.FieldJurisdiction: "TX",
		}),
	}

	findings := Detect(listing.Record{}, entries, verifiedResult(), detectNow)
	_, ok := findByName(findings, NameJurisdictionMismatch)
	assert.False(t, ok)
}

func TestPipelineFailure(t *testing.T) {
	f := PipelineFailure("score: scripted defect")
	assert.Equal(t, NamePipelineFailure, f.Name)
	assert.Equal(t, similarity.SeverityHigh, f.Severity)
	assert.Equal(t, FraudRiskLow, f.FraudRisk)
	assert.Equal(t, "score: scripted defect", f.Detail)
}
