package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"veridex/internal/evidence"
	"veridex/internal/listing"
)

const (
	registrySource = "identifier_registry"
	registryWeight = 1.0
)

// RegistryAdapter queries the authoritative identifier registry. Its
// evidence is treated as ground truth when present.
type RegistryAdapter struct {
	baseURL string
	client  *http.Client
}

func NewRegistryAdapter(baseURL string, timeout time.Duration) *RegistryAdapter {
	return &RegistryAdapter{
		baseURL: baseURL,
		client:  newHTTPClient(timeout),
	}
}

func (a *RegistryAdapter) Name() string        { return registrySource }
func (a *RegistryAdapter) Weight() float64     { return registryWeight }
func (a *RegistryAdapter) Authoritative() bool { return true }

type registryResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Phone  string `json:"phone"`
	Website string `json:"website"`
	Address struct {
		Street     string `json:"street"`
		City       string `json:"city"`
		Region     string `json:"region"`
		PostalCode string `json:"postal_code"`
	} `json:"address"`
	Specialty string `json:"specialty"`
}

func (a *RegistryAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	if rec.RegistryID == "" {
		return evidence.NotFound(registrySource, registryWeight, true)
	}

	url := fmt.Sprintf("%s/v2/organizations/%s", a.baseURL, rec.RegistryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return evidence.Errored(registrySource, registryWeight, true, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return evidence.Errored(registrySource, registryWeight, true, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return evidence.NotFound(registrySource, registryWeight, true)
	case resp.StatusCode != http.StatusOK:
		return evidence.Errored(registrySource, registryWeight, true,
			fmt.Errorf("registry returned status %d", resp.StatusCode))
	}

	var body registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return evidence.Errored(registrySource, registryWeight, true,
			fmt.Errorf("decode registry response: %w", err))
	}

	fields := map[listing.Field]string{
		listing.FieldRegistryID: rec.RegistryID,
		listing.FieldName:       NormalizeName(body.Name),
	}
	if body.Phone != "" {
		fields[listing.FieldPhone] = NormalizePhone(body.Phone)
	}
	if body.Website != "" {
		fields[listing.FieldWebsite] = NormalizeWebsite(body.Website)
	}
	if body.Specialty != "" {
		fields[listing.FieldSpecialty] = body.Specialty
	}
	addr := listing.Address{
		Street:     body.Address.Street,
		City:       body.Address.City,
		Region:     body.Address.Region,
		PostalCode: body.Address.PostalCode,
	}
	if !addr.IsZero() {
		fields[listing.FieldAddress] = addr.String()
		fields[listing.FieldJurisdiction] = NormalizeRegion(body.Address.Region)
	}
	return evidence.Found(registrySource, registryWeight, true, fields)
}
