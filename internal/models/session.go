package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaRef is a runtime-only handle to playable media. The browser owns the
// underlying blob and mints an object URL for it; that URL is only valid for
// the page lifetime that created it, so a MediaRef never crosses the
// persistence boundary.
type MediaRef struct {
	ObjectURL  string    `json:"object_url"`
	AttachedAt time.Time `json:"attached_at"`
}

type HandTag struct {
	ID          uuid.UUID `json:"id"`
	Time        float64   `json:"time"` // seconds into the media, fractional allowed
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

// Session is the in-memory shape of a study session. MediaRef is present only
// while the session is linked in the current runtime.
type Session struct {
	ID        uuid.UUID
	Title     string
	Spot      Spot
	MediaRef  *MediaRef
	FileName  string
	Notes     string
	Hands     []HandTag
	CreatedAt time.Time
}

// Linked reports whether the session has a playable media handle in this
// runtime. Sessions restored from a snapshot start unlinked.
func (s *Session) Linked() bool {
	return s.MediaRef != nil
}

// PersistedSession is the only session shape that crosses the storage
// boundary. It lacks MediaRef by construction rather than by a nil check.
type PersistedSession struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Spot      Spot      `json:"spot"`
	FileName  string    `json:"file_name"`
	Notes     string    `json:"notes"`
	Hands     []HandTag `json:"hands"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Persisted() PersistedSession {
	hands := make([]HandTag, len(s.Hands))
	copy(hands, s.Hands)
	return PersistedSession{
		ID:        s.ID,
		Title:     s.Title,
		Spot:      s.Spot,
		FileName:  s.FileName,
		Notes:     s.Notes,
		Hands:     hands,
		CreatedAt: s.CreatedAt,
	}
}

// Runtime rehydrates a persisted session. The result is always unlinked.
func (p PersistedSession) Runtime() *Session {
	hands := make([]HandTag, len(p.Hands))
	copy(hands, p.Hands)
	return &Session{
		ID:        p.ID,
		Title:     p.Title,
		Spot:      p.Spot,
		FileName:  p.FileName,
		Notes:     p.Notes,
		Hands:     hands,
		CreatedAt: p.CreatedAt,
	}
}

// ValidateNew checks the invariants a session must satisfy at creation time.
func (s *Session) ValidateNew() error {
	if s.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if s.MediaRef == nil {
		return &ValidationError{Field: "media", Message: "a media file must be attached"}
	}
	if !s.Spot.Valid() {
		return &ValidationError{Field: "spot", Message: "unknown spot: " + string(s.Spot)}
	}
	return nil
}
