package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParseStatus tags the outcome of interpreting generator output.
type ParseStatus int

const (
	// ParseOK means the response produced a fully validated RubricScore.
	ParseOK ParseStatus = iota
	// ParseFailed means no JSON object could be decoded from the response.
	ParseFailed
	// SchemaInvalid means a JSON object was decoded but broke the rubric contract.
	SchemaInvalid
)

func (s ParseStatus) String() string {
	switch s {
	case ParseOK:
		return "ok"
	case ParseFailed:
		return "parse_failed"
	case SchemaInvalid:
		return "schema_invalid"
	default:
		return "unknown"
	}
}

// RubricParse is the tagged result of ParseRubric. Score is only meaningful when Status is ParseOK.
type RubricParse struct {
	Status ParseStatus
	Score  RubricScore
	Reason string
}

// Err converts a failed parse into an error wrapping ErrParseFailed or ErrSchemaViolation.
func (p RubricParse) Err() error {
	switch p.Status {
	case ParseOK:
		return nil
	case ParseFailed:
		return fmt.Errorf("%w: %s", ErrParseFailed, p.Reason)
	default:
		return fmt.Errorf("%w: %s", ErrSchemaViolation, p.Reason)
	}
}

// ExtractJSON returns the span from the first '{' to the last '}' of the response,
// or the whole trimmed response when no such span exists.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return content
	}
	return content[start : end+1]
}

// ParseRubric decodes and validates untrusted generator output.
func ParseRubric(content string) RubricParse {
	candidate := ExtractJSON(content)
	if candidate == "" {
		return RubricParse{Status: ParseFailed, Reason: "empty response"}
	}

	decoder := json.NewDecoder(strings.NewReader(candidate))
	decoder.UseNumber()

	var document interface{}
	if err := decoder.Decode(&document); err != nil {
		return RubricParse{Status: ParseFailed, Reason: err.Error()}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return RubricParse{Status: ParseFailed, Reason: "unexpected data after JSON object"}
	}

	if err := rubricSchema.Validate(document); err != nil {
		return RubricParse{Status: SchemaInvalid, Reason: describeViolation(err)}
	}

	var score RubricScore
	if err := json.Unmarshal([]byte(candidate), &score); err != nil {
		return RubricParse{Status: SchemaInvalid, Reason: err.Error()}
	}
	if score.Suggestions == nil {
		score.Suggestions = []string{}
	}

	return RubricParse{Status: ParseOK, Score: score}
}

// ValidateRubric re-checks an already typed score against the rubric schema.
func ValidateRubric(score RubricScore) error {
	if score.Suggestions == nil {
		score.Suggestions = []string{}
	}
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("encode rubric: %w", err)
	}
	return ParseRubric(string(payload)).Err()
}

func describeViolation(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}

	leaves := make([]string, 0, 4)
	var walk func(*jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		if len(ve.Causes) == 0 {
			location := ve.InstanceLocation
			if location == "" {
				location = "/"
			}
			leaves = append(leaves, fmt.Sprintf("%s: %s", location, ve.Message))
			return
		}
		for _, cause := range ve.Causes {
			walk(cause)
		}
	}
	walk(validationErr)

	var buf bytes.Buffer
	for i, leaf := range leaves {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(leaf)
	}
	return buf.String()
}
