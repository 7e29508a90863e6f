package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiration)
	assert.Equal(t, "test-key", cfg.GroqAPIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, "llama3-8b-8192", cfg.GroqModel)
	assert.Equal(t, 30*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, "soulchat", cfg.MetricsNamespace)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("GROQ_MODEL", "other-model")
	t.Setenv("AI_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("DATABASE_URL", "postgres://localhost/soulchat")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiration)
	assert.Equal(t, "other-model", cfg.GroqModel)
	assert.Equal(t, 5*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, "postgres://localhost/soulchat", cfg.DatabaseURL)
}

func TestLoadConfigInvalidIntFallsBack(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiration)
}
