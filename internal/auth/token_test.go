package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.GenerateToken("u1", "Ana", domain.RoleTechnician)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.SubjectID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, domain.RoleTechnician, claims.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("u1", "Ana", domain.RoleUser)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 60).ParseToken("not-a-token")
	assert.Error(t, err)
}
