package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, exp, err := m.GenerateAccessToken("HOS-1", "hospital")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "HOS-1", claims.AccountID)
	assert.Equal(t, "hospital", claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).GenerateAccessToken("CIT-1", "citizen")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Hour).ParseAccessToken(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, _, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken("CIT-1", "citizen")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", -time.Minute).ParseAccessToken(token)
	assert.Error(t, err)
}
