package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-answer-checker/internal/dto"
	"github.com/noah-isme/gema-answer-checker/internal/observability"
	"github.com/noah-isme/gema-answer-checker/pkg/ocr"
)

// ImagePayload is a decoded image awaiting recognition.
type ImagePayload struct {
	Data      []byte
	MediaType string
}

// ExtractionService runs OCR over uploaded answer sheets.
type ExtractionService interface {
	ExtractText(ctx context.Context, payload dto.ExtractTextRequest) (dto.ExtractTextResponse, error)
}

// ExtractionConfig describes OCR knobs.
type ExtractionConfig struct {
	Languages     []string
	Whitelist     string
	MaxImageBytes int64
}

type extractionService struct {
	engine    ocr.Engine
	limiter   *WorkLimiter
	validator *validator.Validate
	logger    zerolog.Logger
	config    ExtractionConfig
	tracer    trace.Tracer
}

// NewExtractionService constructs the text extraction service.
func NewExtractionService(engine ocr.Engine, limiter *WorkLimiter, validate *validator.Validate, logger zerolog.Logger, cfg ExtractionConfig) ExtractionService {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 50 * 1024 * 1024
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{ocr.DefaultLanguage}
	}
	if cfg.Whitelist == "" {
		cfg.Whitelist = ocr.DefaultWhitelist
	}

	return &extractionService{
		engine:    engine,
		limiter:   limiter,
		validator: validate,
		logger:    logger.With().Str("component", "extraction_service").Logger(),
		config:    cfg,
		tracer:    otel.Tracer("github.com/noah-isme/gema-answer-checker/internal/service/extraction"),
	}
}

func (s *extractionService) ExtractText(ctx context.Context, payload dto.ExtractTextRequest) (dto.ExtractTextResponse, error) {
	ctx, span := s.tracer.Start(ctx, "extraction.extract_text")
	defer span.End()

	image, err := s.decode(payload)
	if err != nil {
		observability.ExtractionOutcomes().WithLabelValues("invalid_input").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.ExtractTextResponse{}, err
	}
	span.SetAttributes(
		attribute.String("image.media_type", image.MediaType),
		attribute.Int("image.size_bytes", len(image.Data)),
	)

	logger := s.logger.With().Str("engine", s.engine.Name()).Logger()
	opts := ocr.Options{
		Languages: s.config.Languages,
		Whitelist: s.config.Whitelist,
		Observer: func(ev ocr.Event) {
			logger.Debug().Str("stage", string(ev.Stage)).Float64("progress", ev.Progress).Msg("ocr progress")
		},
	}

	var raw string
	err = s.limiter.Do(ctx, func(ctx context.Context) error {
		start := time.Now()
		defer func() {
			observability.OCRDuration().Observe(time.Since(start).Seconds())
		}()

		var recognizeErr error
		raw, recognizeErr = s.engine.Recognize(ctx, image.Data, opts)
		return recognizeErr
	})
	if err != nil {
		observability.ExtractionOutcomes().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "ocr failed")
		return dto.ExtractTextResponse{}, fmt.Errorf("extract text: %w", err)
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		observability.ExtractionOutcomes().WithLabelValues("no_text").Inc()
		span.SetStatus(codes.Error, "no text")
		return dto.ExtractTextResponse{}, ErrNoTextFound
	}

	observability.ExtractionOutcomes().WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Int("ocr.text_length", len(text)))
	span.SetStatus(codes.Ok, "extracted")
	return dto.ExtractTextResponse{Text: text}, nil
}

// decode validates the request and turns it into raw image bytes. No OCR happens here.
func (s *extractionService) decode(payload dto.ExtractTextRequest) (ImagePayload, error) {
	if strings.TrimSpace(payload.Image) == "" {
		return ImagePayload{}, ErrImageRequired
	}

	mediaType := strings.ToLower(strings.TrimSpace(payload.MimeType))
	if !strings.HasPrefix(mediaType, "image/") {
		return ImagePayload{}, ErrImageFormat
	}

	if s.validator != nil {
		if err := s.validator.Struct(payload); err != nil {
			return ImagePayload{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	data, err := DecodeBase64Image(payload.Image)
	if err != nil {
		return ImagePayload{}, ErrImageEncoding
	}
	if len(data) == 0 {
		return ImagePayload{}, ErrImageRequired
	}
	if int64(len(data)) > s.config.MaxImageBytes {
		return ImagePayload{}, ErrImageTooLarge
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return ImagePayload{}, ErrImageFormat
	}
	if !detected.Is(mediaType) {
		s.logger.Debug().
			Str("declared", mediaType).
			Str("detected", detected.String()).
			Msg("declared media type differs from content")
	}

	return ImagePayload{Data: data, MediaType: mediaType}, nil
}

// DecodeBase64Image accepts standard, URL-safe and unpadded base64, optionally
// prefixed with a data URI header.
func DecodeBase64Image(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if idx := strings.IndexByte(encoded, ','); idx > 0 {
			encoded = encoded[idx+1:]
		}
	}

	var lastErr error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		data, err := enc.DecodeString(encoded)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
