package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret"), TTL: time.Minute})

	token, expiresAt, err := m.GenerateAdminToken("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, _, err := NewManager(TokenConfig{Secret: []byte("one")}).GenerateAdminToken("admin")
	require.NoError(t, err)

	_, err = NewManager(TokenConfig{Secret: []byte("two")}).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewManager(TokenConfig{Secret: []byte("one")}).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewManager(TokenConfig{Secret: []byte("secret"), TTL: time.Minute})
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := m.GenerateAdminToken("admin")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNoSecret(t *testing.T) {
	m := NewManager(TokenConfig{})

	_, _, err := m.GenerateAdminToken("admin")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = m.Validate("x")
	assert.ErrorIs(t, err, ErrNoSecret)
}
