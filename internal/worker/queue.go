package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"pokerstudy-backend/internal/models"
)

const suggestionQueue = "queue:suggestion-generation"

// Queue carries suggestion jobs from the HTTP handler to the worker pool.
type Queue interface {
	Enqueue(ctx context.Context, job models.SuggestionJob) error
	// Dequeue blocks up to timeout and returns nil when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*models.SuggestionJob, error)
}

// RedisQueue is a redis list, pushed with LPUSH and drained with BRPOP so
// jobs survive a restart while queued.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job models.SuggestionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, suggestionQueue, data).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*models.SuggestionJob, error) {
	result, err := q.client.BRPop(ctx, timeout, suggestionQueue).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}

	var job models.SuggestionJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// MemoryQueue backs the memory storage mode and tests.
type MemoryQueue struct {
	jobs chan models.SuggestionJob
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{jobs: make(chan models.SuggestionJob, 64)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job models.SuggestionJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*models.SuggestionJob, error) {
	select {
	case job := <-q.jobs:
		return &job, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
