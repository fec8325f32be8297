package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "run not found")

	assert.Equal(t, "not_found: run not found", err.Error())
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeValidation))
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "store unreachable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unavailable: store unreachable: connection refused", err.Error())
	assert.Equal(t, CodeUnavailable, CodeOf(err))
}

func TestHasCode_WrappedDeep(t *testing.T) {
	inner := New(CodeValidation, "record_id must be a UUID")
	outer := fmt.Errorf("decode request: %w", inner)

	assert.True(t, HasCode(outer, CodeValidation))
}

func TestCodeOf_Uncoded(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestMessageOf(t *testing.T) {
	require.Equal(t, "run not found", MessageOf(New(CodeNotFound, "run not found")))
	assert.Empty(t, MessageOf(errors.New("sql: connection reset")))
}
