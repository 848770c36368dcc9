// Package events announces completed evaluations to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "gema.evaluations"

// EvaluationCompleted is emitted after a rubric score passed validation.
// Answer text is deliberately absent from the payload.
type EvaluationCompleted struct {
	CorrelationID string    `json:"correlationId,omitempty"`
	Provider      string    `json:"provider"`
	Score         float64   `json:"score"`
	Suggestions   int       `json:"suggestions"`
	DurationMs    int64     `json:"durationMs"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher delivers evaluation events.
type Publisher interface {
	PublishEvaluation(ctx context.Context, event EvaluationCompleted) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// PublishEvaluation implements Publisher.
func (NopPublisher) PublishEvaluation(context.Context, EvaluationCompleted) error { return nil }

type messagePublisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes events as JSON messages on a NATS subject.
type NATSPublisher struct {
	conn    messagePublisher
	subject string
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return newPublisher(conn, subject)
}

func newPublisher(conn messagePublisher, subject string) *NATSPublisher {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

// PublishEvaluation implements Publisher.
func (p *NATSPublisher) PublishEvaluation(ctx context.Context, event EvaluationCompleted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode evaluation event: %w", err)
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publish evaluation event: %w", err)
	}
	return nil
}

// Connect dials NATS with the options the service relies on.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}
	return conn, nil
}
