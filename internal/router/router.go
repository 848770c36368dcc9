package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-answer-checker/internal/config"
	"github.com/noah-isme/gema-answer-checker/internal/handler"
	"github.com/noah-isme/gema-answer-checker/internal/middleware"
	"github.com/noah-isme/gema-answer-checker/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EvaluationHandler *handler.EvaluationHandler
	OCREngine         string
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler(nil))

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.OCREngine))

	if deps.EvaluationHandler != nil {
		limited := api.Group("", middleware.RateLimit("evaluation", cfg.RateLimitMax, cfg.RateLimitWindow))
		deps.EvaluationHandler.Register(limited)
	}
}
