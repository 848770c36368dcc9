package middleware_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-answer-checker/internal/middleware"
)

func TestCorrelationIDGeneratesAndPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())

	var fromContext string
	app.Get("/", func(c *fiber.Ctx) error {
		fromContext = middleware.CorrelationIDFromContext(c.UserContext())
		return c.SendString(middleware.GetCorrelationID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	header := resp.Header.Get(middleware.HeaderCorrelationID)
	require.NotEmpty(t, header)
	require.Equal(t, header, fromContext)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, header, string(body))
}

func TestCorrelationIDReusesIncomingHeader(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-42", resp.Header.Get(middleware.HeaderCorrelationID))
}

func TestCorrelationIDReplacesUnsafeHeader(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderCorrelationID, strings.Repeat("a", 300))
	resp, err := app.Test(req)
	require.NoError(t, err)

	got := resp.Header.Get(middleware.HeaderCorrelationID)
	require.NotEmpty(t, got)
	require.Less(t, len(got), 300)
}

func TestContextWithCorrelation(t *testing.T) {
	ctx := middleware.ContextWithCorrelation(context.Background(), " abc ")
	require.Equal(t, "abc", middleware.CorrelationIDFromContext(ctx))
	require.Empty(t, middleware.CorrelationIDFromContext(middleware.ContextWithCorrelation(context.Background(), "  ")))
}

func TestObservabilityLogsAPIRequests(t *testing.T) {
	var logs bytes.Buffer
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Use(middleware.Observability(zerolog.New(&logs)))
	app.Post("/api/compare-answers", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadRequest) })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/compare-answers", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, logs.String(), `"route":"/api/compare-answers"`)
	require.Contains(t, logs.String(), `"status":400`)

	logs.Reset()
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Empty(t, logs.String())
}

func TestRegisterAppliesCORS(t *testing.T) {
	app := fiber.New()
	middleware.Register(app, middleware.Config{})
	app.Post("/api/extract-text", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/extract-text", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req)
	require.NoError(t, err)

	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET,POST", resp.Header.Get("Access-Control-Allow-Methods"))
	require.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"))
}

func TestRateLimitRejectsBurst(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimit("test", 2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitDisabled(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RateLimit("test", 0, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
