package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridex/internal/evidence"
	"veridex/internal/listing"
)

func registryRecord() listing.Record {
	return listing.Record{
		Name:       "Acme Clinic",
		RegistryID: "ORG-12345",
		Address:    listing.Address{City: "Springfield", Region: "IL"},
	}
}

func TestRegistryAdapter_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/organizations/ORG-12345", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"name": "Dr. Acme Clinic, MD",
			"status": "active",
			"phone": "(555) 123-4567",
			"website": "https://www.acmeclinic.com/",
			"address": {"street": "1 Main St", "city": "Springfield", "region": "il", "postal_code": "62701"},
			"specialty": "family medicine"
		}`))
	}))
	defer srv.Close()

	adapter := NewRegistryAdapter(srv.URL, time.Second)
	entry := adapter.Query(context.Background(), registryRecord())

	require.Equal(t, evidence.OutcomeFound, entry.Outcome)
	assert.Equal(t, "identifier_registry", entry.Source)
	assert.True(t, entry.Authoritative)
	assert.Equal(t, 1.0, entry.Weight)
	assert.Equal(t, "acme clinic", entry.Fields[listing.FieldName])
	assert.Equal(t, "5551234567", entry.Fields[listing.FieldPhone])
	assert.Equal(t, "acmeclinic.com", entry.Fields[listing.FieldWebsite])
	assert.Equal(t, "IL", entry.Fields[listing.FieldJurisdiction])
	assert.Equal(t, "1 Main St, Springfield, il, 62701", entry.Fields[listing.FieldAddress])
}

func TestRegistryAdapter_EmptyIDShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("adapter must not call the registry without an ID")
	}))
	defer srv.Close()

	adapter := NewRegistryAdapter(srv.URL, time.Second)
	entry := adapter.Query(context.Background(), listing.Record{Name: "Acme"})

	assert.Equal(t, evidence.OutcomeNotFound, entry.Outcome)
}

func TestRegistryAdapter_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	adapter := NewRegistryAdapter(srv.URL, time.Second)
	entry := adapter.Query(context.Background(), registryRecord())

	assert.Equal(t, evidence.OutcomeNotFound, entry.Outcome)
	assert.Empty(t, entry.Err)
}

func TestRegistryAdapter_ServerErrorBecomesErrorEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewRegistryAdapter(srv.URL, time.Second)
	entry := adapter.Query(context.Background(), registryRecord())

	assert.Equal(t, evidence.OutcomeError, entry.Outcome)
	assert.Contains(t, entry.Err, "status 500")
}

func TestRegistryAdapter_UnreachableHost(t *testing.T) {
	adapter := NewRegistryAdapter("http://127.0.0.1:1", 100*time.Millisecond)
	entry := adapter.Query(context.Background(), registryRecord())

	assert.Equal(t, evidence.OutcomeError, entry.Outcome)
	assert.NotEmpty(t, entry.Err)
}

func TestRegistryAdapter_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	adapter := NewRegistryAdapter(srv.URL, time.Second)
	entry := adapter.Query(context.Background(), registryRecord())

	assert.Equal(t, evidence.OutcomeError, entry.Outcome)
	assert.Contains(t, entry.Err, "decode registry response")
}

func TestLicenseAdapter_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/licenses/LIC-99", r.URL.Path)
		assert.Equal(t, "IL", r.URL.Query().Get("jurisdiction"))
		_, _ = w.Write([]byte(`{
			"licensee": "Jane Smith, MD",
			"status": "active",
			"expires": "2027-06-30",
			"jurisdiction": "il"
		}`))
	}))
	defer srv.Close()

	adapter := NewLicenseAdapter(srv.URL, time.Second)
	entry := adapter.Query(context.Background(), listing.Record{
		Name:          "Jane Smith",
		LicenseNumber: "LIC-99",
		Jurisdiction:  "IL",
	})

	require.Equal(t, evidence.OutcomeFound, entry.Outcome)
	assert.Equal(t, "license_registry", entry.Source)
	assert.False(t, entry.Authoritative)
	assert.Equal(t, 0.9, entry.Weight)
	assert.Equal(t, "jane smith", entry.Fields[listing.FieldName])
	assert.Equal(t, "active", entry.Fields[listing.FieldLicenseStatus])
	assert.Equal(t, "2027-06-30", entry.Fields[listing.FieldLicenseExpiry])
	assert.Equal(t, "IL", entry.Fields[listing.FieldJurisdiction])
}

func TestLicenseAdapter_EmptyNumberShortCircuits(t *testing.T) {
	adapter := NewLicenseAdapter("http://unused", time.Second)
	entry := adapter.Query(context.Background(), listing.Record{Name: "Jane Smith"})
	assert.Equal(t, evidence.OutcomeNotFound, entry.Outcome)
}

func TestListingSearchAdapter_EmptyNameShortCircuits(t *testing.T) {
	adapter := NewListingSearchAdapter("http://unused", time.Second)
	entry := adapter.Query(context.Background(), listing.Record{RegistryID: "ORG-1"})
	assert.Equal(t, evidence.OutcomeNotFound, entry.Outcome)
}

func TestWebSearchAdapter_LowWeightNonAuthoritative(t *testing.T) {
	adapter := NewWebSearchAdapter("http://unused", time.Second)
	assert.Equal(t, "web_search", adapter.Name())
	assert.Equal(t, 0.3, adapter.Weight())
	assert.False(t, adapter.Authoritative())
}
