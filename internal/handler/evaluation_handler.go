package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-answer-checker/internal/dto"
	"github.com/noah-isme/gema-answer-checker/internal/service"
	"github.com/noah-isme/gema-answer-checker/internal/utils"
	"github.com/noah-isme/gema-answer-checker/pkg/ai"
)

const (
	msgInvalidPayload  = "Invalid request payload"
	msgNoImage         = "No image data provided"
	msgInvalidFormat   = "Invalid image format"
	msgInvalidEncoding = "Image data is not valid base64"
	msgImageTooLarge   = "Image exceeds the maximum allowed size"
	msgNoText          = "No text could be extracted from the image"
	msgExtractFailed   = "Failed to extract text from image"
	msgAnswersRequired = "Both model and student answers are required"
	msgInvalidAPIKey   = "Invalid or missing API key. Please check your API key configuration."
	msgModelResponse   = "Failed to parse model response"
	msgCompareFailed   = "Failed to compare answers"
)

// EvaluationHandler serves the OCR and answer comparison endpoints.
type EvaluationHandler struct {
	extraction    service.ExtractionService
	evaluation    service.EvaluationService
	logger        zerolog.Logger
	exposeDetails bool
}

// NewEvaluationHandler constructs the handler. exposeDetails attaches error causes to
// 401 and 500 responses and should only be enabled in development.
func NewEvaluationHandler(extraction service.ExtractionService, evaluation service.EvaluationService, logger zerolog.Logger, exposeDetails bool) *EvaluationHandler {
	return &EvaluationHandler{
		extraction:    extraction,
		evaluation:    evaluation,
		logger:        logger.With().Str("component", "evaluation_handler").Logger(),
		exposeDetails: exposeDetails,
	}
}

// Register wires evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/extract-text", h.extractText)
	router.Post("/compare-answers", h.compareAnswers)
}

func (h *EvaluationHandler) extractText(c *fiber.Ctx) error {
	var payload dto.ExtractTextRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, msgInvalidPayload, "")
	}

	response, err := h.extraction.ExtractText(c.UserContext(), payload)
	if err != nil {
		return h.handleExtractError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, response)
}

func (h *EvaluationHandler) compareAnswers(c *fiber.Ctx) error {
	var payload dto.CompareAnswersRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, msgInvalidPayload, "")
	}

	score, err := h.evaluation.CompareAnswers(c.UserContext(), payload)
	if err != nil {
		return h.handleCompareError(c, err)
	}

	return utils.SendJSON(c, fiber.StatusOK, score)
}

func (h *EvaluationHandler) handleExtractError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrImageRequired):
		return utils.SendError(c, fiber.StatusBadRequest, msgNoImage, "")
	case errors.Is(err, service.ErrImageFormat):
		return utils.SendError(c, fiber.StatusBadRequest, msgInvalidFormat, "")
	case errors.Is(err, service.ErrImageEncoding):
		return utils.SendError(c, fiber.StatusBadRequest, msgInvalidEncoding, "")
	case errors.Is(err, service.ErrImageTooLarge):
		return utils.SendError(c, fiber.StatusBadRequest, msgImageTooLarge, "")
	case errors.Is(err, service.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, msgInvalidPayload, "")
	case errors.Is(err, service.ErrNoTextFound):
		return utils.SendError(c, fiber.StatusBadRequest, msgNoText, "")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to extract text")
		return utils.SendError(c, fiber.StatusInternalServerError, msgExtractFailed, h.details(err))
	}
}

func (h *EvaluationHandler) handleCompareError(c *fiber.Ctx, err error) error {
	logger := requestLogger(h.logger, c)

	switch {
	case errors.Is(err, service.ErrAnswersRequired):
		return utils.SendError(c, fiber.StatusBadRequest, msgAnswersRequired, "")
	case errors.Is(err, service.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, msgInvalidPayload, "")
	case errors.Is(err, ai.ErrProviderAuth):
		logger.Error().Err(err).Msg("ai provider rejected credentials")
		return utils.SendError(c, fiber.StatusUnauthorized, msgInvalidAPIKey, h.details(err))
	case errors.Is(err, ai.ErrSchemaViolation), errors.Is(err, ai.ErrParseFailed):
		logger.Error().Err(err).Msg("ai provider returned an unusable rubric")
		return utils.SendError(c, fiber.StatusInternalServerError, msgModelResponse, h.details(err))
	default:
		logger.Error().Err(err).Msg("failed to compare answers")
		return utils.SendError(c, fiber.StatusInternalServerError, msgCompareFailed, h.details(err))
	}
}

func (h *EvaluationHandler) details(err error) string {
	if !h.exposeDetails || err == nil {
		return ""
	}
	return err.Error()
}
