package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-answer-checker/internal/dto"
	"github.com/noah-isme/gema-answer-checker/internal/handler"
	"github.com/noah-isme/gema-answer-checker/internal/service"
	"github.com/noah-isme/gema-answer-checker/pkg/ai"
)

type mockExtractionService struct {
	lastPayload dto.ExtractTextRequest
	response    dto.ExtractTextResponse
	err         error
	calls       int
}

func (m *mockExtractionService) ExtractText(_ context.Context, payload dto.ExtractTextRequest) (dto.ExtractTextResponse, error) {
	m.calls++
	m.lastPayload = payload
	if m.err != nil {
		return dto.ExtractTextResponse{}, m.err
	}
	return m.response, nil
}

type mockEvaluationService struct {
	lastPayload dto.CompareAnswersRequest
	score       ai.RubricScore
	err         error
}

func (m *mockEvaluationService) CompareAnswers(_ context.Context, payload dto.CompareAnswersRequest) (ai.RubricScore, error) {
	m.lastPayload = payload
	if m.err != nil {
		return ai.RubricScore{}, m.err
	}
	return m.score, nil
}

func newTestApp(extraction service.ExtractionService, evaluation service.EvaluationService, exposeDetails bool) *fiber.App {
	app := fiber.New()
	handler.NewEvaluationHandler(extraction, evaluation, zerolog.New(io.Discard), exposeDetails).Register(app.Group("/api"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func TestExtractTextSuccess(t *testing.T) {
	extraction := &mockExtractionService{response: dto.ExtractTextResponse{Text: "Plants use light"}}
	app := newTestApp(extraction, &mockEvaluationService{}, false)

	resp := postJSON(t, app, "/api/extract-text", dto.ExtractTextRequest{Image: "aGVsbG8=", MimeType: "image/png"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeResponse(t, resp, &body)
	require.Equal(t, map[string]string{"text": "Plants use light"}, body)
	require.Equal(t, "image/png", extraction.lastPayload.MimeType)
}

func TestExtractTextErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "missing image", err: service.ErrImageRequired, status: fiber.StatusBadRequest, message: "No image data provided"},
		{name: "wrong mime", err: service.ErrImageFormat, status: fiber.StatusBadRequest, message: "Invalid image format"},
		{name: "bad base64", err: service.ErrImageEncoding, status: fiber.StatusBadRequest, message: "Image data is not valid base64"},
		{name: "too large", err: service.ErrImageTooLarge, status: fiber.StatusBadRequest, message: "Image exceeds the maximum allowed size"},
		{name: "no text", err: service.ErrNoTextFound, status: fiber.StatusBadRequest, message: "No text could be extracted from the image"},
		{name: "engine failure", err: errors.New("tesseract crashed"), status: fiber.StatusInternalServerError, message: "Failed to extract text from image"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&mockExtractionService{err: tc.err}, &mockEvaluationService{}, false)
			resp := postJSON(t, app, "/api/extract-text", dto.ExtractTextRequest{Image: "x", MimeType: "image/png"})
			require.Equal(t, tc.status, resp.StatusCode)

			var body map[string]interface{}
			decodeResponse(t, resp, &body)
			require.Equal(t, tc.message, body["error"])
			_, hasDetails := body["details"]
			require.False(t, hasDetails)
		})
	}
}

func TestExtractTextRejectsMalformedBody(t *testing.T) {
	extraction := &mockExtractionService{}
	app := newTestApp(extraction, &mockEvaluationService{}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/extract-text", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, extraction.calls)
}

func TestExtractTextDetailsOnlyInDevelopment(t *testing.T) {
	failure := errors.New("engine exploded")

	app := newTestApp(&mockExtractionService{err: failure}, &mockEvaluationService{}, true)
	resp := postJSON(t, app, "/api/extract-text", dto.ExtractTextRequest{Image: "x", MimeType: "image/png"})
	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, "engine exploded", body.Details)

	app = newTestApp(&mockExtractionService{err: failure}, &mockEvaluationService{}, false)
	resp = postJSON(t, app, "/api/extract-text", dto.ExtractTextRequest{Image: "x", MimeType: "image/png"})
	body = dto.ErrorResponse{}
	decodeResponse(t, resp, &body)
	require.Empty(t, body.Details)
}

func TestCompareAnswersSuccessMatchesRubricSchema(t *testing.T) {
	evaluation := &mockEvaluationService{score: ai.RubricScore{
		Score: 7,
		Feedback: ai.RubricFeedback{
			ContentAccuracy:   "Mostly right.",
			Completeness:      "Misses chlorophyll.",
			Clarity:           "Clear.",
			TechnicalAccuracy: "Fine.",
		},
		Suggestions: []string{},
	}}
	app := newTestApp(&mockExtractionService{}, evaluation, false)

	resp := postJSON(t, app, "/api/compare-answers", dto.CompareAnswersRequest{
		Model:   "Photosynthesis converts light to energy",
		Student: "Plants use light to make energy",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Plants use light to make energy", evaluation.lastPayload.Student)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	schema, err := jsonschema.CompileString(ai.RubricSchemaURL, ai.RubricSchemaJSON)
	require.NoError(t, err)

	var document interface{}
	require.NoError(t, json.Unmarshal(raw, &document))
	require.NoError(t, schema.Validate(document))

	var score ai.RubricScore
	require.NoError(t, json.Unmarshal(raw, &score))
	require.Equal(t, float64(7), score.Score)
	require.NotNil(t, score.Suggestions)
}

func TestCompareAnswersErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{name: "missing answers", err: service.ErrAnswersRequired, status: fiber.StatusBadRequest, message: "Both model and student answers are required"},
		{name: "auth", err: fmt.Errorf("generate: %w", ai.ErrProviderAuth), status: fiber.StatusUnauthorized, message: "Invalid or missing API key. Please check your API key configuration."},
		{name: "schema", err: fmt.Errorf("%w: /score: must be <= 10", ai.ErrSchemaViolation), status: fiber.StatusInternalServerError, message: "Failed to parse model response"},
		{name: "parse", err: ai.ErrParseFailed, status: fiber.StatusInternalServerError, message: "Failed to parse model response"},
		{name: "transport", err: ai.ErrTransport, status: fiber.StatusInternalServerError, message: "Failed to compare answers"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&mockExtractionService{}, &mockEvaluationService{err: tc.err}, false)
			resp := postJSON(t, app, "/api/compare-answers", dto.CompareAnswersRequest{Model: "m", Student: "s"})
			require.Equal(t, tc.status, resp.StatusCode)

			var body dto.ErrorResponse
			decodeResponse(t, resp, &body)
			require.Equal(t, tc.message, body.Error)
			require.Empty(t, body.Details)
		})
	}
}

func TestCompareAnswersAuthDetailsInDevelopment(t *testing.T) {
	app := newTestApp(&mockExtractionService{}, &mockEvaluationService{err: ai.ErrProviderAuth}, true)
	resp := postJSON(t, app, "/api/compare-answers", dto.CompareAnswersRequest{Model: "m", Student: "s"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body dto.ErrorResponse
	decodeResponse(t, resp, &body)
	require.Equal(t, ai.ErrProviderAuth.Error(), body.Details)
}
