package dto

// ExtractTextRequest carries a base64 encoded answer sheet image.
type ExtractTextRequest struct {
	Image    string `json:"image" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
}

// ExtractTextResponse is returned after successful recognition.
type ExtractTextResponse struct {
	Text string `json:"text"`
}

// CompareAnswersRequest pairs the reference answer with the student's answer.
type CompareAnswersRequest struct {
	Model   string `json:"model" validate:"required"`
	Student string `json:"student" validate:"required"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports service liveness and the configured collaborators.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	OCREngine   string `json:"ocrEngine"`
	Timestamp   string `json:"timestamp"`
}
