package library

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pokerstudy-backend/internal/models"
)

// ErrSessionNotFound reports an operation against a session id that is not
// in the library.
var ErrSessionNotFound = errors.New("library: session not found")

// Library holds the in-memory session collection and applies all mutations
// to it. Handlers run concurrently, so one mutex serializes every mutation
// and every snapshot marshal; a save can never capture a half-applied state.
//
// Mutators only touch memory. Persistence is the caller's policy: structural
// edits save immediately, note edits go through the Autosaver.
type Library struct {
	mu       sync.Mutex
	sessions []*models.Session
	activeID uuid.UUID
	snapshot *Snapshot
	notify   func(models.WSMessage)
}

func New(snapshot *Snapshot) *Library {
	return &Library{snapshot: snapshot}
}

// SetNotifier installs the event sink (the websocket hub). May stay unset.
func (l *Library) SetNotifier(fn func(models.WSMessage)) {
	l.notify = fn
}

// Load replaces the collection with the persisted snapshot. Every restored
// session is unlinked until the user re-links it.
func (l *Library) Load(ctx context.Context) {
	sessions := l.snapshot.Load(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = sessions
	l.activeID = uuid.Nil
}

// Save snapshots the current collection. Each session is deep-copied under
// the lock so the snapshot always reflects the latest state and never reads
// a record a concurrent mutator is writing; only the marshal and the store
// write run unlocked.
func (l *Library) Save(ctx context.Context) error {
	l.mu.Lock()
	sessions := make([]*models.Session, len(l.sessions))
	for i, s := range l.sessions {
		c := copySession(s)
		sessions[i] = &c
	}
	l.mu.Unlock()

	err := l.snapshot.Save(ctx, sessions)
	l.publishSnapshotEvent(len(sessions), err)
	return err
}

func (l *Library) publishSnapshotEvent(count int, err error) {
	if l.notify == nil {
		return
	}
	ev := models.SnapshotEvent{Sessions: count}
	msgType := "session_saved"
	if err != nil {
		ev.Error = err.Error()
		msgType = "persistence_error"
	}
	l.notify(models.WSMessage{Type: msgType, Payload: ev})
}

// Sessions returns a copy of the collection, newest first, optionally
// filtered by spot (empty spot means all).
func (l *Library) Sessions(spot models.Spot) []models.Session {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		if spot != "" && s.Spot != spot {
			continue
		}
		out = append(out, copySession(s))
	}
	return out
}

func (l *Library) Get(id uuid.UUID) (models.Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.find(id)
	if s == nil {
		return models.Session{}, false
	}
	return copySession(s), true
}

// ActiveID returns the session currently open in the player, if any.
func (l *Library) ActiveID() (uuid.UUID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeID, l.activeID != uuid.Nil
}

// AddSession validates and prepends a new session so the library lists
// newest first.
func (l *Library) AddSession(s *models.Session) error {
	if err := s.ValidateNew(); err != nil {
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.Hands == nil {
		s.Hands = []models.HandTag{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = append([]*models.Session{s}, l.sessions...)
	return nil
}

// UpdateSession shallow-merges the patch into the matching session. An
// unknown id is a no-op, reported through the bool.
func (l *Library) UpdateSession(id uuid.UUID, patch models.SessionPatch) (models.Session, bool, error) {
	if patch.Spot != nil && !patch.Spot.Valid() {
		return models.Session{}, false, &models.ValidationError{Field: "spot", Message: "unknown spot: " + string(*patch.Spot)}
	}
	if patch.Title != nil && *patch.Title == "" {
		return models.Session{}, false, &models.ValidationError{Field: "title", Message: "title is required"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.find(id)
	if s == nil {
		return models.Session{}, false, nil
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Spot != nil {
		s.Spot = *patch.Spot
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	return copySession(s), true, nil
}

// DeleteSession removes the session and all of its hand tags. wasActive
// tells the caller the active pointer was cleared, so the view can close the
// player. Linkage state has no bearing on deletion.
func (l *Library) DeleteSession(id uuid.UUID) (found, wasActive bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, s := range l.sessions {
		if s.ID == id {
			l.sessions = append(l.sessions[:i], l.sessions[i+1:]...)
			if l.activeID == id {
				l.activeID = uuid.Nil
				wasActive = true
			}
			return true, wasActive
		}
	}
	return false, false
}

// Relink attaches a fresh media handle to an unlinked session and marks it
// active. Nothing else on the record changes.
func (l *Library) Relink(id uuid.UUID, ref models.MediaRef) (models.Session, bool) {
	if ref.AttachedAt.IsZero() {
		ref.AttachedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.find(id)
	if s == nil {
		return models.Session{}, false
	}
	s.MediaRef = &ref
	l.activeID = id
	return copySession(s), true
}

// AddHandTag tags the current playback position. The new hand gets a
// generated id and a default label, and the hand list is re-sorted by time;
// the sort is stable so equal times keep insertion order.
func (l *Library) AddHandTag(sessionID uuid.UUID, at float64) (models.HandTag, error) {
	if at < 0 {
		return models.HandTag{}, &models.ValidationError{Field: "time", Message: "time must be non-negative"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.find(sessionID)
	if s == nil {
		return models.HandTag{}, ErrSessionNotFound
	}

	hand := models.HandTag{
		ID:    uuid.New(),
		Time:  at,
		Label: "Hand @ " + FormatTime(at),
	}
	s.Hands = append(s.Hands, hand)
	sort.SliceStable(s.Hands, func(i, j int) bool {
		return s.Hands[i].Time < s.Hands[j].Time
	})
	return hand, nil
}

// UpdateHandTag merges the patch into the matching hand. Label and
// description edits never move the hand, so no re-sort happens here. An
// unknown hand id is a no-op.
func (l *Library) UpdateHandTag(sessionID, handID uuid.UUID, patch models.HandTagPatch) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.find(sessionID)
	if s == nil {
		return false, ErrSessionNotFound
	}
	for i := range s.Hands {
		if s.Hands[i].ID == handID {
			if patch.Label != nil {
				s.Hands[i].Label = *patch.Label
			}
			if patch.Description != nil {
				s.Hands[i].Description = *patch.Description
			}
			return true, nil
		}
	}
	return false, nil
}

// RemoveHandTag deletes the matching hand. Sibling hands keep their ids and
// relative order. An unknown hand id is a no-op.
func (l *Library) RemoveHandTag(sessionID, handID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.find(sessionID)
	if s == nil {
		return false, ErrSessionNotFound
	}
	for i := range s.Hands {
		if s.Hands[i].ID == handID {
			s.Hands = append(s.Hands[:i], s.Hands[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// find must be called with the lock held.
func (l *Library) find(id uuid.UUID) *models.Session {
	for _, s := range l.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func copySession(s *models.Session) models.Session {
	out := *s
	out.Hands = make([]models.HandTag, len(s.Hands))
	copy(out.Hands, s.Hands)
	if s.MediaRef != nil {
		ref := *s.MediaRef
		out.MediaRef = &ref
	}
	return out
}
