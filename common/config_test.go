package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_API_VERSION", "GEMINI_COMPOSE_MODEL",
		"GENAI_TIMEOUT_SECONDS", "CORS_TRUSTED_DOMAIN", "COMPOSE_INTERIOR_FALLBACK",
		"TRANSPORT", "SERVER_ADDRESS", "SERVER_PORT", "SERVER_BODY_LIMIT_MB",
		"METRICS_ENABLED", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_OUTPUT", "stderr")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err, "missing API key must not fail loading")

	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, "v1beta", cfg.GeminiAPIVersion)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiComposeModel)
	assert.Equal(t, "barulins.art", cfg.CORSTrustedDomain)
	assert.True(t, cfg.InteriorFallback)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, 20, cfg.BodyLimitMB)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, time.Duration(0), cfg.GenAITimeout())
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret-key")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:9999/")
	t.Setenv("GENAI_TIMEOUT_SECONDS", "45")
	t.Setenv("COMPOSE_INTERIOR_FALLBACK", "off")
	t.Setenv("TRANSPORT", "STDIO")
	t.Setenv("LOG_OUTPUT", "stdout")
	t.Setenv("METRICS_ENABLED", "yes")
	t.Setenv("CORS_TRUSTED_DOMAIN", "Example.COM")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.GeminiAPIKey)
	assert.Equal(t, "http://localhost:9999", cfg.GeminiBaseURL)
	assert.Equal(t, 45*time.Second, cfg.GenAITimeout())
	assert.False(t, cfg.InteriorFallback)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "example.com", cfg.CORSTrustedDomain)
}

func TestLoadConfigRejectsUnknownTransport(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSPORT", "grpc")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported TRANSPORT")
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"ON", false, true},
		{"no", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Setenv("WALLART_TEST_BOOL", tt.value)
		assert.Equal(t, tt.want, getEnvBool("WALLART_TEST_BOOL", tt.def), "value %q", tt.value)
	}
}
