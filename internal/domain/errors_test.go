package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("failed to create message: %w", WriteError("insert", CollectionMessages, cause))

	assert.ErrorIs(t, err, ErrStoreWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)

	var se *StoreError
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, "insert", se.Op)
		assert.Equal(t, CollectionMessages, se.Collection)
	}
}

func TestValidationErrorIsErrValidation(t *testing.T) {
	err := &ValidationError{Collection: CollectionMessages, Violations: []string{"a", "b"}}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "invalid message document: a; b", err.Error())
}

func TestCanonicalID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)

	got, err := CanonicalID(id)
	assert.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = CanonicalID("65A1B2C3D4E5F60718293A4B")
	assert.NoError(t, err)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", got)

	for _, bad := range []string{"", "abc", "65a1b2c3d4e5f60718293a4", "zza1b2c3d4e5f60718293a4b", "65a1b2c3d4e5f60718293a4b0"} {
		_, err := CanonicalID(bad)
		assert.ErrorIs(t, err, ErrInvalidSessionID, bad)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleSystem.Valid())
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("tool").Valid())
	assert.False(t, Role("").Valid())
}
