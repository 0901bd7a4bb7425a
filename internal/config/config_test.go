package config_test

import (
	"testing"
	"time"

	"github.com/avdeev/events-manager/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60, cfg.JWTExpiryMinutes)
	assert.Equal(t, time.Hour, cfg.JWTExpiry())
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com,")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_JWTExpiryOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRY_MINUTES", "15")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry())
}
