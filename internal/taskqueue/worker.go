package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"peerprep/interview/internal/metrics"
)

// Handler is a pure function over a job payload. Handlers know nothing about
// session state; they receive their inputs in the payload and return a
// marshalable result.
type Handler func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// RetryPolicy bounds how a handler is retried before the job is failed.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
	OnRetry        func(attempt int, err error)
}

// WithRetry decorates a handler with bounded retries and exponential backoff.
// Each attempt runs under its own timeout; exceeding it counts as a failed
// attempt. The retry behavior lives here, as a decorator, not inside the
// queue client.
func WithRetry(policy RetryPolicy, handler Handler) Handler {
	return func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var lastErr error
		delay := policy.BaseDelay

		for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
			attemptCtx, cancel := context.WithTimeout(ctx, policy.AttemptTimeout)
			result, err := handler(attemptCtx, payload)
			cancel()
			if err == nil {
				return result, nil
			}
			lastErr = err

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == policy.MaxAttempts {
				break
			}
			if policy.OnRetry != nil {
				policy.OnRetry(attempt, err)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
		return nil, lastErr
	}
}

// Worker drains one job kind's queue. Run as many workers per kind as the
// desired parallelism; jobs for different sessions then grade in parallel
// while each caller still awaits its own result.
type Worker struct {
	kind    string
	client  *Client
	handler Handler
	logger  *zap.Logger
}

func NewWorker(kind string, client *Client, handler Handler, policy RetryPolicy, logger *zap.Logger) *Worker {
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error) {
			metrics.IncJobRetry(kind)
			logger.Warn("job attempt failed, retrying",
				zap.String("kind", kind),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	}
	return &Worker{
		kind:    kind,
		client:  client,
		handler: WithRetry(policy, handler),
		logger:  logger,
	}
}

// Run blocks, processing jobs until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		values, err := w.client.rdb.BRPop(ctx, time.Second, queueKey(w.kind)).Result()
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			w.logger.Error("failed to pop job", zap.String("kind", w.kind), zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		w.process(ctx, values[1])
	}
}

func (w *Worker) process(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.logger.Error("dropping malformed job", zap.String("kind", w.kind), zap.Error(err))
		return
	}

	start := time.Now()
	payload, err := w.handler(ctx, job.Payload)

	result := &JobResult{JobID: job.ID, OK: err == nil, Payload: payload}
	status := "ok"
	if err != nil {
		result.Error = err.Error()
		status = "failed"
		w.logger.Warn("job exhausted retries",
			zap.String("kind", w.kind),
			zap.String("jobId", job.ID),
			zap.Error(err))
	}
	metrics.ObserveJob(w.kind, status, time.Since(start))

	if err := w.client.publishResult(ctx, result); err != nil {
		w.logger.Error("failed to publish job result",
			zap.String("kind", w.kind),
			zap.String("jobId", job.ID),
			zap.Error(err))
	}
}
