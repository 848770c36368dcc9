package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-answer-checker/internal/config"
	"github.com/noah-isme/gema-answer-checker/internal/events"
	"github.com/noah-isme/gema-answer-checker/internal/handler"
	"github.com/noah-isme/gema-answer-checker/internal/middleware"
	"github.com/noah-isme/gema-answer-checker/internal/router"
	"github.com/noah-isme/gema-answer-checker/internal/service"
	"github.com/noah-isme/gema-answer-checker/pkg/ai"
	"github.com/noah-isme/gema-answer-checker/pkg/ocr/tesseract"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Info().
		Str("port", cfg.AppPort).
		Str("environment", cfg.AppEnv).
		Str("provider", cfg.AIProvider).
		Str("model", cfg.AIModel()).
		Bool("api_key_configured", cfg.APIKey() != "").
		Int("api_key_length", len(cfg.APIKey())).
		Strs("ocr_languages", cfg.OCRLanguages).
		Msg("server configuration")

	ctx := context.Background()

	generator, closeGenerator, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create ai generator")
	}
	defer closeGenerator()

	evaluator, err := ai.NewRubricEvaluator(generator, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create rubric evaluator")
	}

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	validate := validator.New(validator.WithRequiredStructEnabled())
	engine := tesseract.NewEngine()

	extractionService := service.NewExtractionService(
		engine,
		service.NewWorkLimiter("ocr", cfg.OCRConcurrency),
		validate,
		logger,
		service.ExtractionConfig{Languages: cfg.OCRLanguages, MaxImageBytes: cfg.OCRMaxImageBytes},
	)
	evaluationService := service.NewEvaluationService(
		evaluator,
		evaluator.Provider(),
		service.NewWorkLimiter("llm", cfg.LLMConcurrency),
		publisher,
		validate,
		logger,
	)

	evaluationHandler := handler.NewEvaluationHandler(extractionService, evaluationService, logger, cfg.IsDevelopment())

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.HTTPBodyLimitBytes,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	})

	middleware.Register(app, middleware.Config{
		Logger:        &logger,
		AllowOrigins:  cfg.CORSAllowOrigins,
		AccessLogging: cfg.IsDevelopment(),
	})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: evaluationHandler,
		OCREngine:         engine.Name(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func newGenerator(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.Generator, func(), error) {
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Logger:      logger,
		})
		return generator, func() {}, err
	default:
		generator, err := ai.NewGeminiGenerator(ctx, ai.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   int32(cfg.AIMaxTokens),
			Temperature: cfg.AITemperature,
			Logger:      logger,
		})
		if err != nil {
			return nil, func() {}, err
		}
		return generator, func() {
			if err := generator.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close gemini client")
			}
		}, nil
	}
}

func newPublisher(cfg config.Config, logger zerolog.Logger) (events.Publisher, func()) {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}, func() {}
	}

	conn, err := events.Connect(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, evaluation events disabled")
		return events.NopPublisher{}, func() {}
	}

	logger.Info().Str("subject", cfg.NATSSubject).Msg("publishing evaluation events to nats")
	return events.NewNATSPublisher(conn, cfg.NATSSubject), func() {
		if err := conn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
