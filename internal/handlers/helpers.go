package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pokerstudy-backend/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// sessionResponse is the wire shape of a session. Linked tells the view
// whether the record needs a re-link before the player can open it.
type sessionResponse struct {
	ID        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	Spot      models.Spot      `json:"spot"`
	FileName  string           `json:"file_name"`
	Notes     string           `json:"notes"`
	Hands     []models.HandTag `json:"hands"`
	CreatedAt time.Time        `json:"created_at"`
	Linked    bool             `json:"linked"`
	Media     *models.MediaRef `json:"media,omitempty"`
}

func toSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Title:     s.Title,
		Spot:      s.Spot,
		FileName:  s.FileName,
		Notes:     s.Notes,
		Hands:     s.Hands,
		CreatedAt: s.CreatedAt,
		Linked:    s.Linked(),
		Media:     s.MediaRef,
	}
}
