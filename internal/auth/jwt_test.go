package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTGenerateAndValidate(t *testing.T) {
	h := NewJWTHandler("test-secret", time.Hour)

	token, err := h.GenerateAccessToken("operator", "operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := h.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, "auxio", claims.Issuer)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	h := NewJWTHandler("secret-a", time.Hour)
	other := NewJWTHandler("secret-b", time.Hour)

	token, err := h.GenerateAccessToken("operator", "operator")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	h := NewJWTHandler("test-secret", -time.Minute)

	token, err := h.GenerateAccessToken("operator", "operator")
	require.NoError(t, err)

	_, err = h.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	h := NewJWTHandler("test-secret", time.Hour)

	_, err := h.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}

func TestRoleToPermissions(t *testing.T) {
	assert.Equal(t, []Permission{PermOperator}, RoleToPermissions("operator"))
	assert.Equal(t, []Permission{PermOperator, PermTechnician}, RoleToPermissions("technician"))
	assert.Equal(t, []Permission{PermOperator, PermTechnician, PermAdmin}, RoleToPermissions("admin"))
	assert.Nil(t, RoleToPermissions("intruder"))

	assert.True(t, hasPermission(RoleToPermissions("admin"), PermOperator))
	assert.False(t, hasPermission(RoleToPermissions("operator"), PermAdmin))
}
