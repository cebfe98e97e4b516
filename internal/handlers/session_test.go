package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"pokerstudy-backend/internal/library"
	"pokerstudy-backend/internal/models"
	"pokerstudy-backend/internal/storage"
)

// newTestRouter mounts the session and coach handlers the way the real
// router does, minus the auth middleware.
func newTestRouter(t *testing.T) (http.Handler, *library.Library, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	lib := library.New(library.NewSnapshot(store))
	saver := library.NewAutosaver(time.Hour, lib.Save)
	t.Cleanup(func() { saver.Stop(context.Background()) })

	sessionHandler := NewSessionHandler(lib, saver)
	coachHandler := NewCoachHandler(nil, nil)

	r := chi.NewRouter()
	r.Get("/spots", sessionHandler.Spots)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", sessionHandler.List)
		r.Post("/", sessionHandler.Create)
		r.Get("/{id}", sessionHandler.Get)
		r.Put("/{id}", sessionHandler.Update)
		r.Delete("/{id}", sessionHandler.Delete)
		r.Post("/{id}/relink", sessionHandler.Relink)
		r.Post("/{id}/suggest", coachHandler.Suggest)
		r.Route("/{id}/hands", func(r chi.Router) {
			r.Post("/", sessionHandler.AddHand)
			r.Put("/{handId}", sessionHandler.UpdateHand)
			r.Delete("/{handId}", sessionHandler.RemoveHand)
		})
	})
	return r, lib, store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createSession(t *testing.T, h http.Handler) sessionResponse {
	t.Helper()

	rr := doJSON(t, h, http.MethodPost, "/sessions", models.CreateSessionRequest{
		Title:    "BTN flats review",
		Spot:     models.SpotBBVsBTN,
		FileName: "btn_flats.mp4",
		Media:    &models.MediaRef{ObjectURL: "blob:test"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Create returned %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Session sessionResponse `json:"session"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Session
}

func TestCreateSession(t *testing.T) {
	h, _, store := newTestRouter(t)

	created := createSession(t, h)
	if created.Title != "BTN flats review" || !created.Linked {
		t.Errorf("Unexpected created session: %+v", created)
	}
	if store.SetCalls != 1 {
		t.Errorf("Create must snapshot immediately, got %d writes", store.SetCalls)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	h, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		req  models.CreateSessionRequest
	}{
		{"missing title", models.CreateSessionRequest{Spot: models.SpotMWP, Media: &models.MediaRef{ObjectURL: "blob:x"}}},
		{"missing media", models.CreateSessionRequest{Title: "T", Spot: models.SpotMWP}},
		{"bad spot", models.CreateSessionRequest{Title: "T", Spot: "UTG limp", Media: &models.MediaRef{ObjectURL: "blob:x"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodPost, "/sessions", tc.req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}

			var resp models.ErrorResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("Expected VALIDATION_ERROR, got %q", resp.Error.Code)
			}
		})
	}
}

func TestListSessions_SpotFilter(t *testing.T) {
	h, lib, _ := newTestRouter(t)
	createSession(t, h)
	lib.AddSession(&models.Session{
		Title: "3bet pots", Spot: models.SpotThreeBetIP,
		MediaRef: &models.MediaRef{ObjectURL: "blob:x"},
	})

	rr := doJSON(t, h, http.MethodGet, "/sessions?spot=3Bet+IP", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("List returned %d", rr.Code)
	}
	var resp struct {
		Sessions []sessionResponse `json:"sessions"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Sessions) != 1 || resp.Sessions[0].Spot != models.SpotThreeBetIP {
		t.Errorf("Unexpected filter result: %+v", resp.Sessions)
	}

	rr = doJSON(t, h, http.MethodGet, "/sessions?spot=bogus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Unknown spot must 400, got %d", rr.Code)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/sessions/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/sessions/not-a-uuid", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for bad id, got %d", rr.Code)
	}
}

func TestUpdateSession_NotesAreDebounced(t *testing.T) {
	h, lib, store := newTestRouter(t)
	created := createSession(t, h)
	writesAfterCreate := store.SetCalls

	notes := "population folds too much on paired boards"
	rr := doJSON(t, h, http.MethodPut, "/sessions/"+created.ID.String(), models.SessionPatch{Notes: &notes})
	if rr.Code != http.StatusOK {
		t.Fatalf("Update returned %d: %s", rr.Code, rr.Body.String())
	}

	// Notes go through the autosaver; no immediate snapshot write.
	if store.SetCalls != writesAfterCreate {
		t.Errorf("Notes edit must not write synchronously, got %d extra writes", store.SetCalls-writesAfterCreate)
	}
	got, _ := lib.Get(created.ID)
	if got.Notes != notes {
		t.Errorf("Notes not applied in memory: %q", got.Notes)
	}

	// A title edit is structural and snapshots immediately.
	title := "BTN flats deep dive"
	doJSON(t, h, http.MethodPut, "/sessions/"+created.ID.String(), models.SessionPatch{Title: &title})
	if store.SetCalls != writesAfterCreate+1 {
		t.Errorf("Title edit must write synchronously, got %d writes", store.SetCalls)
	}
}

func TestDeleteSession_ReportsActiveFlag(t *testing.T) {
	h, lib, _ := newTestRouter(t)
	created := createSession(t, h)
	lib.Relink(created.ID, models.MediaRef{ObjectURL: "blob:again"})

	rr := doJSON(t, h, http.MethodDelete, "/sessions/"+created.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Delete returned %d", rr.Code)
	}
	var resp struct {
		WasActive bool `json:"was_active"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if !resp.WasActive {
		t.Error("Deleting the active session must report was_active")
	}

	rr = doJSON(t, h, http.MethodDelete, "/sessions/"+created.ID.String(), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Second delete must 404, got %d", rr.Code)
	}
}

func TestRelinkSession(t *testing.T) {
	h, lib, _ := newTestRouter(t)
	created := createSession(t, h)

	// Simulate a reload: drop the runtime handle.
	lib.Load(context.Background())

	rr := doJSON(t, h, http.MethodPost, "/sessions/"+created.ID.String()+"/relink", models.RelinkRequest{
		Media: &models.MediaRef{ObjectURL: "blob:fresh"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Relink returned %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Session sessionResponse `json:"session"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if !resp.Session.Linked {
		t.Error("Relinked session must report linked")
	}

	rr = doJSON(t, h, http.MethodPost, "/sessions/"+created.ID.String()+"/relink", models.RelinkRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Relink without a handle must 400, got %d", rr.Code)
	}
}

func TestHandTagEndpoints(t *testing.T) {
	h, _, _ := newTestRouter(t)
	created := createSession(t, h)
	base := "/sessions/" + created.ID.String() + "/hands"

	rr := doJSON(t, h, http.MethodPost, base, models.AddHandTagRequest{Time: 42})
	if rr.Code != http.StatusCreated {
		t.Fatalf("AddHand returned %d: %s", rr.Code, rr.Body.String())
	}
	var addResp struct {
		Hand models.HandTag `json:"hand"`
	}
	json.NewDecoder(rr.Body).Decode(&addResp)
	if addResp.Hand.Label != "Hand @ 00:42" {
		t.Errorf("Unexpected default label %q", addResp.Hand.Label)
	}

	label := "Hero open 2.5bb BTN"
	rr = doJSON(t, h, http.MethodPut, base+"/"+addResp.Hand.ID.String(), models.HandTagPatch{Label: &label})
	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateHand returned %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPut, base+"/"+uuid.NewString(), models.HandTagPatch{Label: &label})
	if rr.Code != http.StatusNotFound {
		t.Errorf("Unknown hand must 404, got %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodDelete, base+"/"+addResp.Hand.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("RemoveHand returned %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, base, models.AddHandTagRequest{Time: -3})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Negative time must 400, got %d", rr.Code)
	}
}

func TestSuggest_CoachDisabled(t *testing.T) {
	h, _, _ := newTestRouter(t)
	created := createSession(t, h)

	rr := doJSON(t, h, http.MethodPost, "/sessions/"+created.ID.String()+"/suggest", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 when coach is unconfigured, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Code != "AI_ERROR" {
		t.Errorf("Expected AI_ERROR, got %q", resp.Error.Code)
	}
}

func TestSpots(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rr := doJSON(t, h, http.MethodGet, "/spots", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Spots returned %d", rr.Code)
	}
	var resp struct {
		Spots []models.Spot `json:"spots"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Spots) != 9 {
		t.Errorf("Expected 9 spots, got %d", len(resp.Spots))
	}
}
