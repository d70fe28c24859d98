package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv pins every recognized variable to an empty override so ambient
// shell values cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PLATEWISE_SERVER_PORT",
		"PLATEWISE_SERPAPI_API_KEY", "SERPAPI_API_KEY",
		"PLATEWISE_SERPAPI_MIN_INTERVAL", "SERPAPI_MIN_INTERVAL",
		"PLATEWISE_SERPAPI_MAX_RETRIES", "SERPAPI_MAX_RETRIES",
		"PLATEWISE_SERPAPI_BACKOFF_FACTOR", "SERPAPI_BACKOFF_FACTOR",
		"PLATEWISE_GEMINI_API_KEY", "GOOGLE_API_KEY",
		"PLATEWISE_CACHE_CAPACITY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.Equal(t, "https://serpapi.com/search", cfg.SerpAPI.BaseURL)
	assert.Equal(t, 1.0, cfg.SerpAPI.MinInterval)
	assert.Equal(t, time.Second, cfg.SerpAPI.MinIntervalDuration())
	assert.Equal(t, 2, cfg.SerpAPI.MaxRetries)
	assert.Equal(t, 1.5, cfg.SerpAPI.BackoffFactor)

	assert.Equal(t, 128, cfg.Cache.Capacity)

	require.NotEmpty(t, cfg.Gemini.Models)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Gemini.Models[0])

	assert.Equal(t, "http://127.0.0.1:8081/v1", cfg.Local.ServerURL)
	assert.Equal(t, "moondream2-text-model-f16.gguf", cfg.Local.Light.File)
	assert.Equal(t, "llava-phi-3-mini-int4.gguf", cfg.Local.Heavy.File)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_PrefixedEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLATEWISE_SERVER_PORT", "9090")
	t.Setenv("PLATEWISE_SERPAPI_API_KEY", "prefixed-key")
	t.Setenv("PLATEWISE_SERPAPI_MAX_RETRIES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "prefixed-key", cfg.SerpAPI.APIKey)
	assert.Equal(t, 5, cfg.SerpAPI.MaxRetries)
}

// The original deployment scripts export bare names, keep honoring them
func TestLoad_BareEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERPAPI_API_KEY", "bare-key")
	t.Setenv("SERPAPI_MIN_INTERVAL", "0.25")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bare-key", cfg.SerpAPI.APIKey)
	assert.Equal(t, 0.25, cfg.SerpAPI.MinInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.SerpAPI.MinIntervalDuration())
	assert.Equal(t, "google-key", cfg.Gemini.APIKey)
}

// Prefixed names win over the bare compatibility names
func TestLoad_PrefixedBeatsBare(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLATEWISE_SERPAPI_API_KEY", "prefixed-key")
	t.Setenv("SERPAPI_API_KEY", "bare-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed-key", cfg.SerpAPI.APIKey)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero min interval", "PLATEWISE_SERPAPI_MIN_INTERVAL", "0"},
		{"negative min interval", "PLATEWISE_SERPAPI_MIN_INTERVAL", "-1"},
		{"negative max retries", "PLATEWISE_SERPAPI_MAX_RETRIES", "-1"},
		{"backoff factor below one", "PLATEWISE_SERPAPI_BACKOFF_FACTOR", "0.5"},
		{"zero cache capacity", "PLATEWISE_CACHE_CAPACITY", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
