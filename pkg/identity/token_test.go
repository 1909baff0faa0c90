package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABBA-DALHATU/football-network-app/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "footballnet-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	id := Identity{Subject: "ext-user-123", FullName: "Lionel Iniesta", Email: "lionel@example.com"}

	token, err := MintAccessToken(cfg, time.Now(), id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "ext-user-123", claims.Subject)
	assert.Equal(t, "Lionel Iniesta", claims.FullName)
	assert.Equal(t, "lionel@example.com", claims.Email)
	assert.Equal(t, id, claims.Identity())
}

func TestMintAccessToken_Validation(t *testing.T) {
	now := time.Now()
	id := Identity{Subject: "ext-user-123"}

	t.Run("missing secret", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Secret = ""
		_, err := MintAccessToken(cfg, now, id)
		assert.Error(t, err)
	})

	t.Run("missing issuer", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Issuer = ""
		_, err := MintAccessToken(cfg, now, id)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := MintAccessToken(testJWTConfig(), now, Identity{})
		assert.Error(t, err)
	})
}

func TestParseAccessToken_Rejections(t *testing.T) {
	cfg := testJWTConfig()
	id := Identity{Subject: "ext-user-123"}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := MintAccessToken(cfg, time.Now(), id)
		require.NoError(t, err)

		bad := cfg
		bad.Secret = "other-secret"
		_, err = ParseAccessToken(bad, token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := cfg
		other.Issuer = "someone-else"
		token, err := MintAccessToken(other, time.Now(), id)
		require.NoError(t, err)

		_, err = ParseAccessToken(cfg, token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), id)
		require.NoError(t, err)

		_, err = ParseAccessToken(cfg, token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseAccessToken(cfg, "not-a-token")
		assert.Error(t, err)
	})
}
