package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"pokerstudy-backend/internal/models"
)

func TestMemoryQueue_RoundTrip(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	job := models.SuggestionJob{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		CreatedAt: time.Now(),
	}
	if err := q.Enqueue(ctx, job); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	got, err := q.Dequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if got == nil || got.ID != job.ID || got.SessionID != job.SessionID {
		t.Errorf("Dequeued wrong job: %+v", got)
	}
}

func TestMemoryQueue_DequeueTimesOut(t *testing.T) {
	q := NewMemoryQueue()

	start := time.Now()
	got, err := q.Dequeue(context.Background(), 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil on timeout, got %+v", got)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Dequeue returned before the timeout")
	}
}

func TestMemoryQueue_DequeueHonorsContext(t *testing.T) {
	q := NewMemoryQueue()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Dequeue(ctx, time.Hour); err == nil {
		t.Error("Expected context error from cancelled dequeue")
	}
}
