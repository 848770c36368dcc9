package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type connStub struct {
	subject string
	data    []byte
	err     error
}

func (c *connStub) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.err
}

func TestNATSPublisherEncodesEvent(t *testing.T) {
	conn := &connStub{}
	publisher := newPublisher(conn, "")

	err := publisher.PublishEvaluation(context.Background(), EvaluationCompleted{
		CorrelationID: "corr-1",
		Provider:      "gemini",
		Score:         7.5,
		Suggestions:   2,
		DurationMs:    1200,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultSubject, conn.subject)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.data, &decoded))
	require.Equal(t, "corr-1", decoded["correlationId"])
	require.Equal(t, 7.5, decoded["score"])
	require.NotEmpty(t, decoded["occurredAt"])
	require.NotContains(t, decoded, "student")
}

func TestNATSPublisherPropagatesErrors(t *testing.T) {
	conn := &connStub{err: errors.New("nats: connection closed")}
	publisher := newPublisher(conn, "custom.subject")

	err := publisher.PublishEvaluation(context.Background(), EvaluationCompleted{OccurredAt: time.Now()})
	require.Error(t, err)
	require.Equal(t, "custom.subject", conn.subject)
}

func TestNATSPublisherSkipsCancelledContext(t *testing.T) {
	conn := &connStub{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newPublisher(conn, "s").PublishEvaluation(ctx, EvaluationCompleted{})
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, conn.data)
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(" ", "test")
	require.Error(t, err)
}
