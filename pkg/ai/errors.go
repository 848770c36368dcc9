package ai

import "errors"

var (
	// ErrProviderAuth indicates the generator provider rejected the configured credentials.
	ErrProviderAuth = errors.New("provider rejected credentials")
	// ErrTransport indicates the generator provider could not be reached or failed to answer.
	ErrTransport = errors.New("provider request failed")
	// ErrParseFailed indicates the generator response did not contain a decodable JSON object.
	ErrParseFailed = errors.New("failed to parse model response")
	// ErrSchemaViolation indicates the generator response decoded but broke the rubric contract.
	ErrSchemaViolation = errors.New("model response violates rubric schema")
)
