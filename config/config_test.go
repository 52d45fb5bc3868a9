package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "TOKEN_TTL", "MIN_PASSWORD_LENGTH", "REDIS_ADDR", "CORS_ORIGINS", "MIGRATE_ON_START"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 240*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 7, cfg.MinPasswordLength)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.MigrateOnStart)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("MIN_PASSWORD_LENGTH", "10")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.MinPasswordLength)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.False(t, cfg.MigrateOnStart)
}

func TestFromEnv_MalformedValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "ten days")
	t.Setenv("BCRYPT_COST", "high")

	_, err := FromEnv()
	require.Error(t, err)
	assert.ErrorContains(t, err, "TOKEN_TTL")
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestFromEnv_DefaultJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.UsesDefaultJWTSecret())

	t.Setenv("JWT_SECRET", "a-real-signing-key")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "a-real-signing-key", cfg.JWTSecret)
	assert.False(t, cfg.UsesDefaultJWTSecret())
}
