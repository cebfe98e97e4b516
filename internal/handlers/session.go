package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pokerstudy-backend/internal/library"
	"pokerstudy-backend/internal/models"
)

type SessionHandler struct {
	lib   *library.Library
	saver *library.Autosaver
}

func NewSessionHandler(lib *library.Library, saver *library.Autosaver) *SessionHandler {
	return &SessionHandler{lib: lib, saver: saver}
}

// Spots lists the closed spot taxonomy for the sidebar.
func (h *SessionHandler) Spots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"spots": models.AllSpots()})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	var spot models.Spot
	if raw := r.URL.Query().Get("spot"); raw != "" {
		spot = models.Spot(raw)
		if !spot.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unknown spot: "+raw, r))
			return
		}
	}

	sessions := h.lib.Sessions(spot)
	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(s)
	}

	resp := map[string]interface{}{"sessions": out}
	if activeID, ok := h.lib.ActiveID(); ok {
		resp["active_id"] = activeID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session := &models.Session{
		Title:    req.Title,
		Spot:     req.Spot,
		MediaRef: req.Media,
		FileName: req.FileName,
	}

	if err := h.lib.AddSession(session); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", verr.Message, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create session", r))
		return
	}

	if err := h.lib.Save(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Session created but the snapshot write failed", r))
		return
	}

	created, _ := h.lib.Get(session.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"session": toSessionResponse(created)})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	session, ok := h.lib.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": toSessionResponse(session)})
}

// Update patches title, spot or notes. Note edits arrive on every keystroke
// pause, so they persist through the debounced autosaver; structural edits
// snapshot immediately.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var patch models.SessionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, found, err := h.lib.UpdateSession(id, patch)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", verr.Message, r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update session", r))
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	if notesOnly(patch) {
		h.saver.Schedule()
	} else if err := h.lib.Save(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Update applied but the snapshot write failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": toSessionResponse(session)})
}

func notesOnly(patch models.SessionPatch) bool {
	return patch.Notes != nil && patch.Title == nil && patch.Spot == nil
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	found, wasActive := h.lib.DeleteSession(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	if err := h.lib.Save(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Session deleted but the snapshot write failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Session deleted",
		"was_active": wasActive,
	})
}

// Relink attaches a fresh media handle chosen by the user's file picker.
// MediaRef is runtime-only, so no snapshot write happens here.
func (h *SessionHandler) Relink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.RelinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Media == nil || req.Media.ObjectURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A media handle is required", r))
		return
	}

	session, found := h.lib.Relink(id, *req.Media)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"session": toSessionResponse(session)})
}

func (h *SessionHandler) AddHand(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.AddHandTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	hand, err := h.lib.AddHandTag(id, req.Time)
	if err != nil {
		var verr *models.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", verr.Message, r))
		case errors.Is(err, library.ErrSessionNotFound):
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to tag hand", r))
		}
		return
	}

	if err := h.lib.Save(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Hand tagged but the snapshot write failed", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"hand": hand})
}

func (h *SessionHandler) UpdateHand(w http.ResponseWriter, r *http.Request) {
	sessionID, handID, ok := h.handIDs(w, r)
	if !ok {
		return
	}

	var patch models.HandTagPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	found, err := h.lib.UpdateHandTag(sessionID, handID, patch)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Hand not found", r))
		return
	}

	if err := h.lib.Save(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Hand updated but the snapshot write failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Hand updated"})
}

func (h *SessionHandler) RemoveHand(w http.ResponseWriter, r *http.Request) {
	sessionID, handID, ok := h.handIDs(w, r)
	if !ok {
		return
	}

	found, err := h.lib.RemoveHandTag(sessionID, handID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Hand not found", r))
		return
	}

	if err := h.lib.Save(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_ERROR", "Hand removed but the snapshot write failed", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Hand removed"})
}

func (h *SessionHandler) handIDs(w http.ResponseWriter, r *http.Request) (sessionID, handID uuid.UUID, ok bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return uuid.Nil, uuid.Nil, false
	}
	handID, err = uuid.Parse(chi.URLParam(r, "handId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid hand ID", r))
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, handID, true
}
