package models

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionJob asks the AI coach for focus objectives for one session. Jobs
// are queued and processed by the worker pool; at most one may be in flight
// per session.
type SuggestionJob struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type SuggestionEvent struct {
	JobID     uuid.UUID `json:"job_id"`
	SessionID uuid.UUID `json:"session_id"`
	Error     string    `json:"error,omitempty"`
}

type SnapshotEvent struct {
	Sessions int    `json:"sessions"`
	Error    string `json:"error,omitempty"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
