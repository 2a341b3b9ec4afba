package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.GenerateSessionToken(7, "customer", "sess-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := New("one", time.Hour).GenerateToken(1, "customer")
	require.NoError(t, err)

	_, err = New("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := New("secret", -time.Minute).GenerateToken(1, "customer")
	require.NoError(t, err)

	_, err = New("secret", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}
