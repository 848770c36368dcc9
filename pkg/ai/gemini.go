package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiConfig defines configuration options for the Gemini generator.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	Logger      zerolog.Logger
}

// GeminiGenerator implements Generator with the Google Generative AI client.
// The client is created once and shared by concurrent requests.
type GeminiGenerator struct {
	client *genai.Client
	cfg    GeminiConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewGeminiGenerator dials the Gemini API with the configured key.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("initialise gemini client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-answer-checker/pkg/ai/gemini"),
		logger: logger.With().Str("component", "gemini_generator").Logger(),
	}, nil
}

// Name reports the provider identifier.
func (g *GeminiGenerator) Name() string { return "gemini" }

// Model reports the configured model.
func (g *GeminiGenerator) Model() string { return g.cfg.Model }

// Close releases the underlying client connection.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate sends the prompt once and returns the first text part of the reply.
func (g *GeminiGenerator) Generate(parent context.Context, prompt string) (string, error) {
	ctx, span := g.tracer.Start(parent, "gemini.generate", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	model := g.client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(g.cfg.Temperature)
	model.SetMaxOutputTokens(g.cfg.MaxTokens)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		err = classifyGeminiError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	text := firstText(resp)
	if text == "" {
		err := fmt.Errorf("%w: gemini returned no text", ErrTransport)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if resp.UsageMetadata != nil {
		g.logger.Debug().
			Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("completion_tokens", resp.UsageMetadata.CandidatesTokenCount).
			Msg("gemini completion received")
	}

	return strings.TrimSpace(text), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				return string(text)
			}
		}
	}
	return ""
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: gemini: %v", ErrProviderAuth, err)
		}
	}
	if mentionsAPIKey(err) {
		return fmt.Errorf("%w: gemini: %v", ErrProviderAuth, err)
	}
	return fmt.Errorf("%w: gemini: %v", ErrTransport, err)
}
