package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.ChatModel)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.False(t, cfg.StrictConfirmation)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_MAX_AGE", "30m")
	t.Setenv("LLM_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("STRICT_CONFIRMATION", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.True(t, cfg.StrictConfirmation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LLM_RETRY_MAX_ATTEMPTS", "many")
	t.Setenv("SESSION_MAX_AGE", "soon")
	t.Setenv("CHAT_TEMPERATURE", "warm")

	cfg := Load()

	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, float64(0), cfg.Temperature)
}
