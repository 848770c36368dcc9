package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "APP_PORT", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "AI_MAX_TOKENS", "AI_TEMPERATURE",
		"OCR_LANGUAGE", "OCR_MAX_IMAGE_MB", "HTTP_BODY_LIMIT_MB", "HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT", "WORKER_OCR_CONCURRENCY", "WORKER_LLM_CONCURRENCY",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "CORS_ALLOW_ORIGINS", "NATS_URL", "NATS_SUBJECT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "  test-key-123 ")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":5001", cfg.HTTPAddress())
	require.True(t, cfg.IsDevelopment())
	require.Equal(t, ProviderGemini, cfg.AIProvider)
	require.Equal(t, "test-key-123", cfg.APIKey())
	require.Equal(t, "gemini-1.5-flash", cfg.AIModel())
	require.Equal(t, 1024, cfg.AIMaxTokens)
	require.InDelta(t, 0.2, cfg.AITemperature, 0.0001)
	require.Equal(t, []string{"eng"}, cfg.OCRLanguages)
	require.Equal(t, int64(50*1024*1024), cfg.OCRMaxImageBytes)
	require.Equal(t, 50*1024*1024, cfg.HTTPBodyLimitBytes)
	require.Equal(t, 60*time.Second, cfg.HTTPReadTimeout)
	require.Equal(t, 120*time.Second, cfg.HTTPWriteTimeout)
	require.Equal(t, 4, cfg.OCRConcurrency)
	require.Equal(t, 16, cfg.LLMConcurrency)
	require.Equal(t, 30, cfg.RateLimitMax)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
	require.Equal(t, "*", cfg.CORSAllowOrigins)
	require.Equal(t, "gema.evaluations", cfg.NATSSubject)
	require.Empty(t, cfg.NATSURL)
}

func TestLoadOpenAIOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", ":9000")
	t.Setenv("OCR_LANGUAGE", "eng+ind")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.AIProvider)
	require.Equal(t, "sk-test", cfg.APIKey())
	require.Equal(t, "gpt-4o", cfg.AIModel())
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, ":9000", cfg.HTTPAddress())
	require.Equal(t, []string{"eng", "ind"}, cfg.OCRLanguages)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoadRequiresProviderKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-only-openai")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadRejectsWhitespaceInKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "abc def")

	_, err := Load()
	require.Error(t, err)
	require.NotContains(t, err.Error(), "abc def")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("GEMINI_API_KEY", "key")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("HTTP_READ_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}
