package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of rubric evaluation requests",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of rubric evaluation failures by reason",
	}, []string{"provider", "model", "reason"})
)

// RubricEvaluator grades answers with a Generator and only returns validated scores.
type RubricEvaluator struct {
	generator Generator
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewRubricEvaluator wraps the generator with prompt construction and output validation.
func NewRubricEvaluator(generator Generator, logger zerolog.Logger) (*RubricEvaluator, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	return &RubricEvaluator{
		generator: generator,
		tracer:    otel.Tracer("github.com/noah-isme/gema-answer-checker/pkg/ai/rubric"),
		logger:    logger.With().Str("component", "rubric_evaluator").Logger(),
	}, nil
}

// Provider returns the name of the underlying generator.
func (e *RubricEvaluator) Provider() string {
	return e.generator.Name()
}

// Evaluate sends a single generation request and validates the response.
func (e *RubricEvaluator) Evaluate(parent context.Context, input RubricInput) (RubricScore, error) {
	provider, model := e.generator.Name(), e.generator.Model()
	ctx, span := e.tracer.Start(parent, "rubric.evaluate", trace.WithAttributes(
		attribute.String("ai.provider", provider),
		attribute.String("ai.model", model),
	))
	defer span.End()

	start := time.Now()
	raw, err := e.generator.Generate(ctx, BuildRubricPrompt(input))
	aiDuration.WithLabelValues(provider, model).Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "transport"
		if errors.Is(err, ErrProviderAuth) {
			reason = "auth"
		}
		aiFailures.WithLabelValues(provider, model, reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return RubricScore{}, err
	}

	parsed := ParseRubric(raw)
	if parsed.Status != ParseOK {
		err := parsed.Err()
		aiFailures.WithLabelValues(provider, model, parsed.Status.String()).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, parsed.Status.String())
		e.logger.Error().
			Str("provider", provider).
			Str("model", model).
			Str("status", parsed.Status.String()).
			Str("reason", parsed.Reason).
			Str("raw", raw).
			Msg("generator returned unusable rubric output")
		return RubricScore{}, err
	}

	span.SetAttributes(attribute.Float64("rubric.score", parsed.Score.Score))
	span.SetStatus(codes.Ok, "validated")
	return parsed.Score, nil
}
