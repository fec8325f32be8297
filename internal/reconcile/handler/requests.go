package handler

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"veridex/internal/listing"
	dErrors "veridex/pkg/domain-errors"
)

// ReconcileRequest is the HTTP request body for POST /v1/reconcile.
type ReconcileRequest struct {
	RecordID      string              `json:"record_id"`
	Name          string              `json:"name"`
	RegistryID    string              `json:"registry_id"`
	LicenseNumber string              `json:"license_number"`
	Phone         string              `json:"phone"`
	AltPhone      string              `json:"alt_phone"`
	Address       AddressRequest      `json:"address"`
	Website       string              `json:"website"`
	Specialty     string              `json:"specialty"`
	Services      []string            `json:"services"`
	Credentials   []CredentialRequest `json:"credentials"`
	Jurisdiction  string              `json:"jurisdiction"`

	// Parsed values (populated by Validate)
	parsedRecord listing.Record
}

// AddressRequest is the structured address portion of the request.
type AddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// CredentialRequest is one credential entry in the request.
type CredentialRequest struct {
	Name    string    `json:"name"`
	Expires time.Time `json:"expires,omitzero"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ReconcileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Name = strings.TrimSpace(r.Name)
	r.RegistryID = strings.TrimSpace(r.RegistryID)
	r.LicenseNumber = strings.TrimSpace(r.LicenseNumber)
	if r.Name == "" && r.RegistryID == "" && r.LicenseNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "at least one of name, registry_id or license_number is required")
	}

	recordID := uuid.New()
	if strings.TrimSpace(r.RecordID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(r.RecordID))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "record_id must be a UUID")
		}
		recordID = parsed
	}

	creds := make([]listing.Credential, 0, len(r.Credentials))
	for _, c := range r.Credentials {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return dErrors.New(dErrors.CodeValidation, "credential name is required")
		}
		creds = append(creds, listing.Credential{Name: name, Expires: c.Expires})
	}

	r.parsedRecord = listing.Record{
		ID:            recordID,
		Name:          r.Name,
		RegistryID:    r.RegistryID,
		LicenseNumber: r.LicenseNumber,
		Phone:         strings.TrimSpace(r.Phone),
		AltPhone:      strings.TrimSpace(r.AltPhone),
		Address: listing.Address{
			Street:     strings.TrimSpace(r.Address.Street),
			City:       strings.TrimSpace(r.Address.City),
			Region:     strings.TrimSpace(r.Address.Region),
			PostalCode: strings.TrimSpace(r.Address.PostalCode),
		},
		Website:      strings.TrimSpace(r.Website),
		Specialty:    strings.TrimSpace(r.Specialty),
		Services:     r.Services,
		Credentials:  creds,
		Jurisdiction: strings.TrimSpace(r.Jurisdiction),
	}
	return nil
}

// ParsedRecord returns the validated record.
func (r *ReconcileRequest) ParsedRecord() listing.Record {
	return r.parsedRecord
}
