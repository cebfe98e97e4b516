package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pokerstudy-backend/internal/library"
	"pokerstudy-backend/internal/services"
	"pokerstudy-backend/internal/worker"
)

// CoachHandler enqueues AI suggestion jobs. coach is nil when no Gemini key
// is configured; the endpoint then reports the coach as unavailable instead
// of failing requests elsewhere.
type CoachHandler struct {
	coach *services.CoachService
	queue worker.Queue
}

func NewCoachHandler(coach *services.CoachService, queue worker.Queue) *CoachHandler {
	return &CoachHandler{coach: coach, queue: queue}
}

func (h *CoachHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if h.coach == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("AI_ERROR", "AI coach is not configured", r))
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	job, err := h.coach.Begin(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrSessionNotFound):
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		case errors.Is(err, services.ErrSuggestionInFlight):
			writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "A suggestion is already in flight for this session", r))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start suggestion", r))
		}
		return
	}

	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		h.coach.Abort(job)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enqueue suggestion job", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": "pending",
	})
}
