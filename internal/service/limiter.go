package service

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/noah-isme/gema-answer-checker/internal/observability"
)

// WorkLimiter bounds how many blocking OCR or LLM jobs run at once. Callers beyond
// the limit wait for a slot until their context is done.
type WorkLimiter struct {
	name string
	sem  *semaphore.Weighted
}

// NewWorkLimiter creates a limiter with the given number of slots.
func NewWorkLimiter(name string, size int) *WorkLimiter {
	if size <= 0 {
		size = 1
	}
	return &WorkLimiter{name: name, sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn once a slot is available.
func (l *WorkLimiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}

	start := time.Now()
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	observability.WorkerWait().WithLabelValues(l.name).Observe(time.Since(start).Seconds())

	inFlight := observability.WorkerInFlight().WithLabelValues(l.name)
	inFlight.Inc()
	defer func() {
		inFlight.Dec()
		l.sem.Release(1)
	}()

	return fn(ctx)
}
