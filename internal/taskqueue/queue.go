package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job kinds, one durable queue each.
const (
	KindGenerateQuestions = "generate-questions"
	KindGradeAnswer       = "grade-answer"
	KindGenerateSummary   = "generate-summary"
)

var ErrAwaitTimeout = errors.New("timed out waiting for job result")

// Job is the wire form of one enqueued task.
type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// JobResult is the wire form of a finished job, success or terminal failure.
type JobResult struct {
	JobID   string          `json:"jobId"`
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// JobHandle identifies an enqueued job so the caller can await it.
type JobHandle struct {
	ID   string
	Kind string
}

func queueKey(kind string) string  { return "jobs:" + kind }
func replyKey(jobID string) string { return "jobs:reply:" + jobID }

// Client enqueues jobs onto the durable per-kind queues and awaits their
// replies. Enqueue and Await are deliberately separate so the rendezvous is
// explicit at the call site.
type Client struct {
	rdb       *redis.Client
	resultTTL time.Duration
}

func NewClient(rdb *redis.Client, resultTTL time.Duration) *Client {
	return &Client{rdb: rdb, resultTTL: resultTTL}
}

// Enqueue pushes a job for the given kind and returns its handle.
func (c *Client) Enqueue(ctx context.Context, kind string, payload any) (*JobHandle, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}
	job := Job{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	if err := c.rdb.LPush(ctx, queueKey(kind), encoded).Err(); err != nil {
		return nil, fmt.Errorf("enqueue %s job: %w", kind, err)
	}
	return &JobHandle{ID: job.ID, Kind: kind}, nil
}

// Await blocks until the job's result arrives or the timeout elapses.
// The worker reports terminal failures as a JobResult with OK=false.
func (c *Client) Await(ctx context.Context, handle *JobHandle, timeout time.Duration) (*JobResult, error) {
	values, err := c.rdb.BRPop(ctx, timeout, replyKey(handle.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAwaitTimeout
	}
	if err != nil {
		return nil, fmt.Errorf("await %s job: %w", handle.Kind, err)
	}
	// BRPop returns [key, value].
	var result JobResult
	if err := json.Unmarshal([]byte(values[1]), &result); err != nil {
		return nil, fmt.Errorf("decode job result: %w", err)
	}
	return &result, nil
}

// Do is the enqueue-then-await rendezvous in one call: it runs the job,
// surfaces a worker failure as an error, and decodes success into out.
func (c *Client) Do(ctx context.Context, kind string, payload any, timeout time.Duration, out any) error {
	handle, err := c.Enqueue(ctx, kind, payload)
	if err != nil {
		return err
	}
	result, err := c.Await(ctx, handle, timeout)
	if err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s job failed: %s", kind, result.Error)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(result.Payload, out)
}

func (c *Client) publishResult(ctx context.Context, result *JobResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return err
	}
	key := replyKey(result.JobID)
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, encoded)
	pipe.Expire(ctx, key, c.resultTTL)
	_, err = pipe.Exec(ctx)
	return err
}
