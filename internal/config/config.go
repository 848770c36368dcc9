package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ProviderGemini selects Google Gemini as the rubric generator.
	ProviderGemini = "gemini"
	// ProviderOpenAI selects OpenAI chat completions as the rubric generator.
	ProviderOpenAI = "openai"
)

// ErrMissingAPIKey is returned when the selected provider has no API key.
var ErrMissingAPIKey = errors.New("api key for the selected ai provider is not configured")

// Config holds runtime configuration values for the answer checker service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	AIProvider         string
	GeminiAPIKey       string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	AIMaxTokens        int
	AITemperature      float32
	OCRLanguages       []string
	OCRMaxImageBytes   int64
	HTTPBodyLimitBytes int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	OCRConcurrency     int
	LLMConcurrency     int
	RateLimitMax       int
	RateLimitWindow    time.Duration
	CORSAllowOrigins   string
	NATSURL            string
	NATSSubject        string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// APIKey returns the key of the selected provider.
func (c Config) APIKey() string {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// AIModel returns the model name of the selected provider.
func (c Config) AIModel() string {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Answer Checker")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5001")
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.max_image_mb", 50)
	v.SetDefault("http.body_limit_mb", 50)
	v.SetDefault("http.read_timeout", "60s")
	v.SetDefault("http.write_timeout", "120s")
	v.SetDefault("worker.ocr_concurrency", 4)
	v.SetDefault("worker.llm_concurrency", 16)
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("nats.subject", "gema.evaluations")

	readTimeout, err := parseDuration(v, "http.read_timeout")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := parseDuration(v, "http.write_timeout")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "rate_limit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             strings.ToLower(strings.TrimSpace(v.GetString("app.env"))),
		AppPort:            strings.TrimSpace(v.GetString("app.port")),
		AIProvider:         strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		GeminiAPIKey:       strings.TrimSpace(v.GetString("gemini.api_key")),
		GeminiModel:        strings.TrimSpace(v.GetString("gemini.model")),
		OpenAIAPIKey:       strings.TrimSpace(v.GetString("openai.api_key")),
		OpenAIModel:        strings.TrimSpace(v.GetString("openai.model")),
		OpenAIBaseURL:      strings.TrimSpace(v.GetString("openai.base_url")),
		AIMaxTokens:        v.GetInt("ai.max_tokens"),
		AITemperature:      float32(v.GetFloat64("ai.temperature")),
		OCRLanguages:       splitLanguages(v.GetString("ocr.language")),
		OCRMaxImageBytes:   int64(positiveOr(v.GetInt("ocr.max_image_mb"), 50)) * 1024 * 1024,
		HTTPBodyLimitBytes: positiveOr(v.GetInt("http.body_limit_mb"), 50) * 1024 * 1024,
		HTTPReadTimeout:    readTimeout,
		HTTPWriteTimeout:   writeTimeout,
		OCRConcurrency:     positiveOr(v.GetInt("worker.ocr_concurrency"), 4),
		LLMConcurrency:     positiveOr(v.GetInt("worker.llm_concurrency"), 16),
		RateLimitMax:       v.GetInt("rate_limit.max"),
		RateLimitWindow:    rateWindow,
		CORSAllowOrigins:   strings.TrimSpace(v.GetString("cors.allow_origins")),
		NATSURL:            strings.TrimSpace(v.GetString("nats.url")),
		NATSSubject:        strings.TrimSpace(v.GetString("nats.subject")),
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 1024
	}

	switch cfg.AIProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	key := cfg.APIKey()
	if key == "" {
		return Config{}, fmt.Errorf("%w: set %s_API_KEY", ErrMissingAPIKey, strings.ToUpper(cfg.AIProvider))
	}
	if strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return Config{}, fmt.Errorf("%s_API_KEY must not contain whitespace", strings.ToUpper(cfg.AIProvider))
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return duration, nil
}

func splitLanguages(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '+' || r == ',' })
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			languages = append(languages, trimmed)
		}
	}
	if len(languages) == 0 {
		return []string{"eng"}
	}
	return languages
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
