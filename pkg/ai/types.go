package ai

import "context"

// RubricInput contains the two answers compared by the rubric evaluator.
type RubricInput struct {
	ModelAnswer   string
	StudentAnswer string
}

// RubricFeedback holds one comment per rubric criterion.
type RubricFeedback struct {
	ContentAccuracy   string `json:"contentAccuracy"`
	Completeness      string `json:"completeness"`
	Clarity           string `json:"clarity"`
	TechnicalAccuracy string `json:"technicalAccuracy"`
}

// RubricScore is the validated evaluation returned to callers.
type RubricScore struct {
	Score       float64        `json:"score"`
	Feedback    RubricFeedback `json:"feedback"`
	Suggestions []string       `json:"suggestions"`
}

// Evaluator grades a student answer against a model answer.
type Evaluator interface {
	Evaluate(ctx context.Context, input RubricInput) (RubricScore, error)
}

// Generator turns a prompt into raw, untrusted model text.
type Generator interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}
