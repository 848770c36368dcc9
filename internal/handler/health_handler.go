package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-answer-checker/internal/config"
	"github.com/noah-isme/gema-answer-checker/internal/dto"
	"github.com/noah-isme/gema-answer-checker/internal/utils"
)

// HealthCheck returns a handler that reports application health information. The
// API key itself is never included.
func HealthCheck(cfg config.Config, ocrEngine string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := dto.HealthResponse{
			Status:      "ok",
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Provider:    cfg.AIProvider,
			Model:       cfg.AIModel(),
			OCREngine:   ocrEngine,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}

		return utils.SendJSON(c, fiber.StatusOK, payload)
	}
}
