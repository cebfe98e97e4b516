package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPersistedSession_HasNoMediaField(t *testing.T) {
	s := &Session{
		ID:        uuid.New(),
		Title:     "Test",
		Spot:      SpotBBVsBTN,
		MediaRef:  &MediaRef{ObjectURL: "blob:abc", AttachedAt: time.Now()},
		FileName:  "review.mp4",
		Notes:     "notes",
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(s.Persisted())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "blob:abc") || strings.Contains(string(data), "object_url") {
		t.Errorf("Media handle leaked into persisted form: %s", data)
	}
	if !strings.Contains(string(data), `"file_name":"review.mp4"`) {
		t.Errorf("File name hint must persist: %s", data)
	}
}

func TestPersistedRuntime_RoundTrip(t *testing.T) {
	s := &Session{
		ID:       uuid.New(),
		Title:    "Turn play",
		Spot:     SpotThreeBetOOP,
		MediaRef: &MediaRef{ObjectURL: "blob:xyz"},
		FileName: "turn.mp4",
		Notes:    "barrel more",
		Hands: []HandTag{
			{ID: uuid.New(), Time: 12.5, Label: "Hand @ 00:12"},
		},
		CreatedAt: time.Now().Truncate(time.Second),
	}

	back := s.Persisted().Runtime()
	if back.Linked() {
		t.Error("Rehydrated session must be unlinked")
	}
	if back.ID != s.ID || back.Title != s.Title || back.Spot != s.Spot ||
		back.FileName != s.FileName || back.Notes != s.Notes {
		t.Errorf("Fields changed in round trip: %+v", back)
	}
	if len(back.Hands) != 1 || back.Hands[0] != s.Hands[0] {
		t.Errorf("Hands changed in round trip: %+v", back.Hands)
	}

	// The copies must not alias the original's hand slice.
	back.Hands[0].Label = "mutated"
	if s.Hands[0].Label == "mutated" {
		t.Error("Runtime copy aliases the persisted hands")
	}
}

func TestValidateNew(t *testing.T) {
	valid := func() *Session {
		return &Session{
			Title:    "Test",
			Spot:     SpotCOVsBTN,
			MediaRef: &MediaRef{ObjectURL: "blob:v"},
		}
	}

	if err := valid().ValidateNew(); err != nil {
		t.Fatalf("Valid session rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Session)
		field  string
	}{
		{"empty title", func(s *Session) { s.Title = "" }, "title"},
		{"no media", func(s *Session) { s.MediaRef = nil }, "media"},
		{"bad spot", func(s *Session) { s.Spot = "HJ vs CO" }, "spot"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			err := s.ValidateNew()
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestSpotEnum(t *testing.T) {
	if len(AllSpots()) != 9 {
		t.Fatalf("Expected 9 spots, got %d", len(AllSpots()))
	}
	for _, s := range AllSpots() {
		if !s.Valid() {
			t.Errorf("Spot %q must be valid", s)
		}
	}
	if Spot("All").Valid() {
		t.Error("'All' is a view filter, not a spot")
	}
	if !SpotBBVsBTN.Valid() || string(SpotBBVsBTN) != "BB vs BTN" {
		t.Error("Spot values must match the fixed taxonomy text")
	}
}
