package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veridex/pkg/domain-errors"
)

func TestReconcileRequest_Validate(t *testing.T) {
	t.Run("name alone suffices", func(t *testing.T) {
		req := &ReconcileRequest{Name: "  Acme Clinic  "}
		require.NoError(t, req.Validate())
		rec := req.ParsedRecord()
		assert.Equal(t, "Acme Clinic", rec.Name)
		assert.NotEqual(t, uuid.Nil, rec.ID)
	})

	t.Run("registry id alone suffices", func(t *testing.T) {
		req := &ReconcileRequest{RegistryID: "ORG-12345"}
		assert.NoError(t, req.Validate())
	})

	t.Run("no identity fields rejected", func(t *testing.T) {
		req := &ReconcileRequest{Phone: "(555) 123-4567"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("whitespace-only identity fields rejected", func(t *testing.T) {
		req := &ReconcileRequest{Name: "   "}
		assert.Error(t, req.Validate())
	})

	t.Run("explicit record id preserved", func(t *testing.T) {
		id := uuid.New()
		req := &ReconcileRequest{Name: "Acme", RecordID: id.String()}
		require.NoError(t, req.Validate())
		assert.Equal(t, id, req.ParsedRecord().ID)
	})

	t.Run("malformed record id rejected", func(t *testing.T) {
		req := &ReconcileRequest{Name: "Acme", RecordID: "not-a-uuid"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("address components trimmed", func(t *testing.T) {
		req := &ReconcileRequest{
			Name: "Acme",
			Address: AddressRequest{
				Street: " 1 Main St ",
				City:   " Springfield ",
				Region: " IL ",
			},
		}
		require.NoError(t, req.Validate())
		addr := req.ParsedRecord().Address
		assert.Equal(t, "1 Main St", addr.Street)
		assert.Equal(t, "IL", addr.Region)
	})

	t.Run("credential without name rejected", func(t *testing.T) {
		req := &ReconcileRequest{
			Name:        "Acme",
			Credentials: []CredentialRequest{{Name: "  "}},
		}
		assert.Error(t, req.Validate())
	})
}
