package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"veridex/internal/evidence"
	"veridex/internal/listing"
)

const (
	licenseSource = "license_registry"
	licenseWeight = 0.9
)

// LicenseAdapter verifies a professional license against the jurisdiction's
// license board.
type LicenseAdapter struct {
	baseURL string
	client  *http.Client
}

func NewLicenseAdapter(baseURL string, timeout time.Duration) *LicenseAdapter {
	return &LicenseAdapter{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (a *LicenseAdapter) Name() string        { return licenseSource }
func (a *LicenseAdapter) Weight() float64     { return licenseWeight }
func (a *LicenseAdapter) Authoritative() bool { return false }

type licenseResponse struct {
	Licensee     string `json:"licensee"`
	Status       string `json:"status"`
	Expires      string `json:"expires"` // YYYY-MM-DD
	Jurisdiction string `json:"jurisdiction"`
}

func (a *LicenseAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	if rec.LicenseNumber == "" {
		return evidence.NotFound(licenseSource, licenseWeight, false)
	}

	endpoint := fmt.Sprintf("%s/licenses/%s?jurisdiction=%s",
		a.baseURL, url.PathEscape(rec.LicenseNumber), url.QueryEscape(rec.Jurisdiction))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return evidence.Errored(licenseSource, licenseWeight, false, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return evidence.Errored(licenseSource, licenseWeight, false, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return evidence.NotFound(licenseSource, licenseWeight, false)
	case resp.StatusCode != http.StatusOK:
		return evidence.Errored(licenseSource, licenseWeight, false,
			fmt.Errorf("license board returned status %d", resp.StatusCode))
	}

	var body licenseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return evidence.Errored(licenseSource, licenseWeight, false,
			fmt.Errorf("decode license response: %w", err))
	}

	fields := map[listing.Field]string{
		listing.FieldLicenseNumber: rec.LicenseNumber,
		listing.FieldName:          NormalizeName(body.Licensee),
	}
	if body.Status != "" {
		fields[listing.FieldLicenseStatus] = body.Status
	}
	if body.Expires != "" {
		fields[listing.FieldLicenseExpiry] = body.Expires
	}
	if body.Jurisdiction != "" {
		fields[listing.FieldJurisdiction] = NormalizeRegion(body.Jurisdiction)
	}
	return evidence.Found(licenseSource, licenseWeight, false, fields)
}
