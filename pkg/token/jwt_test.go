package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", 1)

	tok, err := m.GenerateToken("owner-1", RoleGuest)
	require.NoError(t, err)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", claims.Subject)
	assert.Equal(t, RoleGuest, claims.Role)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	tok, err := NewJWTManager("other", 1).GenerateToken("owner-1", RoleGuest)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", 1).VerifyToken(tok)
	assert.Error(t, err)

	_, err = NewJWTManager("secret", 1).VerifyToken("garbage")
	assert.Error(t, err)
}
