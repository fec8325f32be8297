// Command sources runs a single mock server standing in for all five
// external evidence sources. It serves canned fixtures keyed by registry ID,
// license number, or name, and can inject latency and failures so the
// pipeline's degraded paths can be exercised locally:
//
//	go run ./mocks/sources -addr :9201 -latency 200ms -fail-rate 0.1
//
// Point the server at it with path-prefixed base URLs:
//
//	VERIDEX_REGISTRY_URL=http://localhost:9201/registry
//	VERIDEX_LICENSE_URL=http://localhost:9201/license
//	VERIDEX_GEOCODE_URL=http://localhost:9201/geocode
//	VERIDEX_LISTING_SEARCH_URL=http://localhost:9201/listing
//	VERIDEX_WEB_SEARCH_URL=http://localhost:9201/web
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type organization struct {
	RegistryID    string
	LicenseNumber string
	Name          string
	Status        string
	Phone         string
	Website       string
	Street        string
	City          string
	Region        string
	PostalCode    string
	Specialty     string
	LicenseExpiry string
}

var fixtures = []organization{
	{
		RegistryID:    "1234567890",
		LicenseNumber: "MED-44812",
		Name:          "Acme Family Clinic",
		Status:        "active",
		Phone:         "+15551234567",
		Website:       "acmefamilyclinic.example",
		Street:        "123 Main Street",
		City:          "Springfield",
		Region:        "IL",
		PostalCode:    "62701",
		Specialty:     "Family Medicine",
		LicenseExpiry: "2027-06-30",
	},
	{
		RegistryID:    "9876543210",
		LicenseNumber: "MED-90211",
		Name:          "Oak Dental Associates",
		Status:        "active",
		Phone:         "+15559876543",
		Website:       "oakdental.example",
		Street:        "456 Elm Avenue",
		City:          "Portland",
		Region:        "OR",
		PostalCode:    "97201",
		Specialty:     "Dentistry",
		LicenseExpiry: "2026-12-31",
	},
	{
		RegistryID:    "5550001111",
		LicenseNumber: "MED-00773",
		Name:          "Riverside Physical Therapy",
		Status:        "inactive",
		Phone:         "+15552223344",
		Website:       "riversidept.example",
		Street:        "9 River Road",
		City:          "Austin",
		Region:        "TX",
		PostalCode:    "78701",
		Specialty:     "Physical Therapy",
		LicenseExpiry: "2024-01-15",
	},
}

type server struct {
	log      *slog.Logger
	latency  time.Duration
	failRate float64
}

func main() {
	addr := flag.String("addr", ":9201", "listen address")
	latency := flag.Duration("latency", 0, "artificial latency per request")
	failRate := flag.Float64("fail-rate", 0, "probability of a 500 response")
	flag.Parse()

	s := &server{
		log:      slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		latency:  *latency,
		failRate: *failRate,
	}

	r := chi.NewRouter()
	r.Use(s.chaos)
	r.Get("/registry/v2/organizations/{registryID}", s.handleRegistry)
	r.Get("/license/licenses/{licenseNumber}", s.handleLicense)
	r.Get("/geocode/geocode", s.handleGeocode)
	r.Get("/listing/search", s.handleListingSearch)
	r.Get("/web/search", s.handleWebSearch)

	s.log.Info("mock sources listening", "addr", *addr,
		"latency", s.latency.String(), "fail_rate", s.failRate)
	if err := http.ListenAndServe(*addr, r); err != nil {
		s.log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// chaos applies the configured latency and failure injection to every route.
func (s *server) chaos(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		if s.failRate > 0 && rand.Float64() < s.failRate {
			s.log.Warn("injected failure", "path", r.URL.Path)
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleRegistry(w http.ResponseWriter, r *http.Request) {
	org, ok := lookupByRegistryID(chi.URLParam(r, "registryID"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"name":      org.Name,
		"status":    org.Status,
		"phone":     org.Phone,
		"website":   "https://" + org.Website,
		"specialty": org.Specialty,
		"address": map[string]string{
			"street":      org.Street,
			"city":        org.City,
			"region":      org.Region,
			"postal_code": org.PostalCode,
		},
	})
}

func (s *server) handleLicense(w http.ResponseWriter, r *http.Request) {
	num := chi.URLParam(r, "licenseNumber")
	for _, org := range fixtures {
		if org.LicenseNumber == num {
			writeJSON(w, map[string]string{
				"licensee":     org.Name,
				"status":       org.Status,
				"expires":      org.LicenseExpiry,
				"jurisdiction": org.Region,
			})
			return
		}
	}
	http.NotFound(w, r)
}

func (s *server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	for _, org := range fixtures {
		if strings.Contains(strings.ToLower(q), strings.ToLower(org.Street)) {
			writeJSON(w, map[string]string{
				"formatted_address": org.Street + ", " + org.City + ", " + org.Region + " " + org.PostalCode,
				"region":            org.Region,
				"postal_code":       org.PostalCode,
			})
			return
		}
	}
	http.NotFound(w, r)
}

func (s *server) handleListingSearch(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	var results []map[string]any
	for _, org := range fixtures {
		if name == "" || strings.Contains(strings.ToLower(org.Name), name) {
			results = append(results, map[string]any{
				"name":       org.Name,
				"phone":      org.Phone,
				"address":    org.Street + ", " + org.City + ", " + org.Region + " " + org.PostalCode,
				"website":    "https://" + org.Website,
				"categories": []string{org.Specialty},
			})
		}
	}
	writeJSON(w, map[string]any{"results": results})
}

func (s *server) handleWebSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	var hits []map[string]string
	for _, org := range fixtures {
		if q == "" || strings.Contains(strings.ToLower(org.Name+" "+org.City), q) {
			hits = append(hits, map[string]string{
				"title": org.Name + " - " + org.City,
				"url":   "https://" + org.Website,
				"phone": org.Phone,
			})
		}
	}
	writeJSON(w, map[string]any{"hits": hits})
}

func lookupByRegistryID(id string) (organization, bool) {
	for _, org := range fixtures {
		if org.RegistryID == id {
			return org, true
		}
	}
	return organization{}, false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
