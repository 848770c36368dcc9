// Package client calls the answer checker HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/gema-answer-checker/internal/dto"
	"github.com/noah-isme/gema-answer-checker/pkg/ai"
)

// DefaultBaseURL is where the API listens by default.
const DefaultBaseURL = "http://localhost:5001"

// ErrEmptyText is returned when the server answered 200 with no text.
var ErrEmptyText = errors.New("no text was extracted from the image")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New builds a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractText uploads an image and returns the recognised text.
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	payload := dto.ExtractTextRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		MimeType: mimeType,
	}

	var response dto.ExtractTextResponse
	if err := c.post(ctx, "/api/extract-text", payload, &response); err != nil {
		return "", err
	}
	if strings.TrimSpace(response.Text) == "" {
		return "", ErrEmptyText
	}
	return response.Text, nil
}

// CompareAnswers asks the server to grade the student answer against the model answer.
func (c *Client) CompareAnswers(ctx context.Context, model, student string) (ai.RubricScore, error) {
	payload := dto.CompareAnswersRequest{Model: model, Student: student}

	var score ai.RubricScore
	if err := c.post(ctx, "/api/compare-answers", payload, &score); err != nil {
		return ai.RubricScore{}, err
	}
	if err := ai.ValidateRubric(score); err != nil {
		return ai.RubricScore{}, fmt.Errorf("server returned an invalid rubric: %w", err)
	}
	if score.Suggestions == nil {
		score.Suggestions = []string{}
	}
	return score, nil
}

func (c *Client) post(ctx context.Context, path string, payload, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody dto.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Details = errBody.Details
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
