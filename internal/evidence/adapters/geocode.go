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
	geocodeSource = "geocoding"
	geocodeWeight = 0.8
)

// GeocodeAdapter resolves the listing address through a geocoding service.
// Besides the canonical address line it reports the resolved jurisdiction,
// which the anomaly engine compares with the record's declared one.
type GeocodeAdapter struct {
	baseURL string
	client  *http.Client
}

func NewGeocodeAdapter(baseURL string, timeout time.Duration) *GeocodeAdapter {
	return &GeocodeAdapter{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (a *GeocodeAdapter) Name() string        { return geocodeSource }
func (a *GeocodeAdapter) Weight() float64     { return geocodeWeight }
func (a *GeocodeAdapter) Authoritative() bool { return false }

type geocodeResponse struct {
	Formatted  string `json:"formatted_address"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

func (a *GeocodeAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	if rec.Address.IsZero() {
		return evidence.NotFound(geocodeSource, geocodeWeight, false)
	}

	endpoint := fmt.Sprintf("%s/geocode?q=%s", a.baseURL, url.QueryEscape(rec.Address.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return evidence.Errored(geocodeSource, geocodeWeight, false, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return evidence.Errored(geocodeSource, geocodeWeight, false, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return evidence.NotFound(geocodeSource, geocodeWeight, false)
	case resp.StatusCode != http.StatusOK:
		return evidence.Errored(geocodeSource, geocodeWeight, false,
			fmt.Errorf("geocoder returned status %d", resp.StatusCode))
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return evidence.Errored(geocodeSource, geocodeWeight, false,
			fmt.Errorf("decode geocode response: %w", err))
	}
	if body.Formatted == "" {
		return evidence.NotFound(geocodeSource, geocodeWeight, false)
	}

	fields := map[listing.Field]string{
		listing.FieldAddress: body.Formatted,
	}
	if body.Region != "" {
		fields[listing.FieldJurisdiction] = NormalizeRegion(body.Region)
	}
	return evidence.Found(geocodeSource, geocodeWeight, false, fields)
}
