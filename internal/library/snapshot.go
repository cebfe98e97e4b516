package library

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"pokerstudy-backend/internal/models"
	"pokerstudy-backend/internal/storage"
)

// SnapshotKey is the fixed storage key for the session collection. The
// version suffix is the schema version: an incompatible change bumps the key
// and orphans old data instead of migrating it.
const SnapshotKey = "poker_study_v1"

// Snapshot round-trips the full session collection through the storage port.
// Every save is a whole-collection overwrite of the single key.
type Snapshot struct {
	store storage.Store
	key   string
}

func NewSnapshot(store storage.Store) *Snapshot {
	return &Snapshot{store: store, key: SnapshotKey}
}

// Save writes the collection. MediaRef never reaches the store: each session
// is narrowed to its PersistedSession shape first.
func (s *Snapshot) Save(ctx context.Context, sessions []*models.Session) error {
	persisted := make([]models.PersistedSession, len(sessions))
	for i, sess := range sessions {
		persisted[i] = sess.Persisted()
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: err}
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return &models.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Load reads the snapshot. A missing key or a corrupt payload degrades to an
// empty collection; the app must stay usable either way. Every loaded
// session starts unlinked.
func (s *Snapshot) Load(ctx context.Context) []*models.Session {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("snapshot load failed, starting with empty library: %v", err)
		}
		return nil
	}

	var persisted []models.PersistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		log.Printf("snapshot is corrupt, starting with empty library: %v", err)
		return nil
	}

	sessions := make([]*models.Session, len(persisted))
	for i, p := range persisted {
		sessions[i] = p.Runtime()
	}
	return sessions
}
