package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressString(t *testing.T) {
	addr := Address{Street: " 123 Main Street ", City: "Springfield", PostalCode: "62701"}
	assert.Equal(t, "123 Main Street, Springfield, 62701", addr.String())
	assert.False(t, addr.IsZero())
	assert.True(t, Address{}.IsZero())
	assert.True(t, Address{Street: "   "}.IsZero())
}

func TestRecordValue(t *testing.T) {
	rec := Record{
		Name:        "Acme Family Clinic",
		Phone:       "+15551234567",
		Address:     Address{Street: "123 Main Street", City: "Springfield"},
		Services:    []string{"checkups", "immunizations"},
		Credentials: []Credential{{Name: "MD"}, {Name: "Board Certified"}},
	}

	assert.Equal(t, "Acme Family Clinic", rec.Value(FieldName))
	assert.Equal(t, "+15551234567", rec.Value(FieldPhone))
	assert.Equal(t, "123 Main Street, Springfield", rec.Value(FieldAddress))
	assert.Equal(t, "checkups, immunizations", rec.Value(FieldServices))
	assert.Equal(t, "MD, Board Certified", rec.Value(FieldCredentials))
	assert.Empty(t, rec.Value(FieldRegistryID))
	assert.Empty(t, rec.Value(Field("unknown")))
}
