package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-answer-checker/internal/dto"
	"github.com/noah-isme/gema-answer-checker/internal/events"
	"github.com/noah-isme/gema-answer-checker/internal/middleware"
	"github.com/noah-isme/gema-answer-checker/internal/observability"
	"github.com/noah-isme/gema-answer-checker/pkg/ai"
)

// EvaluationService compares a student answer with a model answer.
type EvaluationService interface {
	CompareAnswers(ctx context.Context, payload dto.CompareAnswersRequest) (ai.RubricScore, error)
}

type evaluationService struct {
	evaluator ai.Evaluator
	provider  string
	limiter   *WorkLimiter
	publisher events.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewEvaluationService constructs the answer comparison service.
func NewEvaluationService(evaluator ai.Evaluator, provider string, limiter *WorkLimiter, publisher events.Publisher, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &evaluationService{
		evaluator: evaluator,
		provider:  provider,
		limiter:   limiter,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-answer-checker/internal/service/evaluation"),
		now:       time.Now,
	}
}

func (s *evaluationService) CompareAnswers(ctx context.Context, payload dto.CompareAnswersRequest) (ai.RubricScore, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.compare_answers", trace.WithAttributes(
		attribute.String("ai.provider", s.provider),
	))
	defer span.End()

	input := ai.RubricInput{
		ModelAnswer:   strings.TrimSpace(payload.Model),
		StudentAnswer: strings.TrimSpace(payload.Student),
	}
	if input.ModelAnswer == "" || input.StudentAnswer == "" {
		observability.ComparisonOutcomes().WithLabelValues("invalid_input").Inc()
		span.SetStatus(codes.Error, "validation failed")
		return ai.RubricScore{}, ErrAnswersRequired
	}
	if s.validator != nil {
		if err := s.validator.Struct(payload); err != nil {
			observability.ComparisonOutcomes().WithLabelValues("invalid_input").Inc()
			span.SetStatus(codes.Error, "validation failed")
			return ai.RubricScore{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	start := s.now()
	var score ai.RubricScore
	err := s.limiter.Do(ctx, func(ctx context.Context) error {
		var evalErr error
		score, evalErr = s.evaluator.Evaluate(ctx, input)
		return evalErr
	})
	if err != nil {
		observability.ComparisonOutcomes().WithLabelValues(outcomeLabel(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeLabel(err))
		return ai.RubricScore{}, fmt.Errorf("compare answers: %w", err)
	}

	if err := ai.ValidateRubric(score); err != nil {
		s.logger.Error().Err(err).Msg("evaluator returned a rubric that failed validation")
		observability.ComparisonOutcomes().WithLabelValues("schema_invalid").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema_invalid")
		return ai.RubricScore{}, fmt.Errorf("compare answers: %w", err)
	}

	elapsed := s.now().Sub(start)
	observability.ComparisonOutcomes().WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Float64("rubric.score", score.Score))
	span.SetStatus(codes.Ok, "evaluated")

	event := events.EvaluationCompleted{
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		Provider:      s.provider,
		Score:         score.Score,
		Suggestions:   len(score.Suggestions),
		DurationMs:    elapsed.Milliseconds(),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.publisher.PublishEvaluation(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish evaluation event")
	}

	return score, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ai.ErrProviderAuth):
		return "auth"
	case errors.Is(err, ai.ErrSchemaViolation):
		return "schema_invalid"
	case errors.Is(err, ai.ErrParseFailed):
		return "parse_failed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "transport"
	}
}
