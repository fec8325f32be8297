// Package listing defines the directory record under reconciliation. The
// pipeline reads records and proposes changes; it never mutates them.
package listing

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field identifies a trackable record field. Evidence entries and field
// scores are keyed by Field so sources reporting the same field can be
// compared and merged.
type Field string

const (
	FieldName          Field = "name"
	FieldRegistryID    Field = "registry_id"
	FieldLicenseNumber Field = "license_number"
	FieldLicenseExpiry Field = "license_expiry"
	FieldLicenseStatus Field = "license_status"
	FieldPhone         Field = "phone"
	FieldAltPhone      Field = "alt_phone"
	FieldAddress       Field = "address"
	FieldWebsite       Field = "website"
	FieldSpecialty     Field = "specialty"
	FieldCredentials   Field = "credentials"
	FieldServices      Field = "services"
	FieldJurisdiction  Field = "jurisdiction"
)

// Address holds the structured address components of a listing.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// String renders the address as a single comparable line.
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.Region, a.PostalCode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

// IsZero reports whether no address component is set.
func (a Address) IsZero() bool {
	return a.String() == ""
}

// Credential is a professional credential or certification attached to a
// listing. A zero Expires means the expiry is unknown.
type Credential struct {
	Name    string    `json:"name"`
	Expires time.Time `json:"expires,omitzero"`
}

// Record is the subject being validated. It is owned by the calling context;
// pipeline stages receive it by value and emit suggestions instead of edits.
type Record struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	RegistryID    string       `json:"registry_id"`
	LicenseNumber string       `json:"license_number"`
	Phone         string       `json:"phone"`
	AltPhone      string       `json:"alt_phone"`
	Address       Address      `json:"address"`
	Website       string       `json:"website"`
	Specialty     string       `json:"specialty"`
	Services      []string     `json:"services"`
	Credentials   []Credential `json:"credentials"`
	Jurisdiction  string       `json:"jurisdiction"`
}

// Value returns the record's current stored value for a field, rendered as
// the comparable string form used by the scoring engine.
func (r Record) Value(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldRegistryID:
		return r.RegistryID
	case FieldLicenseNumber:
		return r.LicenseNumber
	case FieldPhone:
		return r.Phone
	case FieldAltPhone:
		return r.AltPhone
	case FieldAddress:
		return r.Address.String()
	case FieldWebsite:
		return r.Website
	case FieldSpecialty:
		return r.Specialty
	case FieldServices:
		return strings.Join(r.Services, ", ")
	case FieldCredentials:
		names := make([]string, 0, len(r.Credentials))
		for _, c := range r.Credentials {
			names = append(names, c.Name)
		}
		return strings.Join(names, ", ")
	case FieldJurisdiction:
		return r.Jurisdiction
	}
	return ""
}
