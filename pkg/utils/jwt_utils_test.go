package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(42, "abekova")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "abekova", claims.Username)
	assert.Equal(t, "medishift-backend", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, claims.IssuedAt.Add(AccessTokenTTL), claims.ExpiresAt.Time, 2*time.Second)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := GenerateAccessToken(42, "abekova")
	require.NoError(t, err)

	t.Run("Modified Payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + ".eyJ1c2VyX2lkIjo5OTl9." + parts[2]

		_, err := ValidateToken(tampered)
		assert.Error(t, err)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		_, err := ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("Empty Token", func(t *testing.T) {
		_, err := ValidateToken("")
		assert.Error(t, err)
	})
}

func TestValidateTokenRejectsForeignKey(t *testing.T) {
	token, err := GenerateAccessToken(42, "abekova")
	require.NoError(t, err)

	InitJWT("a-completely-different-signing-key")
	defer InitJWT("dev-only-medishift-signing-key")

	_, err = ValidateToken(token)
	assert.Error(t, err)
}
