package library

import (
	"context"
	"log"
	"sync"
	"time"
)

// Autosaver coalesces bursts of note edits into a single snapshot write.
// Each Schedule call restarts the countdown; the save runs once the edits go
// quiet for the configured delay. Stop flushes any pending save instead of
// dropping it, so the last edit burst survives a shutdown.
type Autosaver struct {
	mu      sync.Mutex
	delay   time.Duration
	save    func(ctx context.Context) error
	timer   *time.Timer
	pending bool
	stopped bool
}

func NewAutosaver(delay time.Duration, save func(ctx context.Context) error) *Autosaver {
	return &Autosaver{delay: delay, save: save}
}

// Schedule (re)arms the debounce timer.
func (a *Autosaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	a.pending = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if !a.pending {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.mu.Unlock()

	if err := a.save(context.Background()); err != nil {
		log.Printf("autosave failed: %v", err)
	}
}

// Flush runs a pending save immediately, if there is one.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if !a.pending {
		a.mu.Unlock()
		return nil
	}
	a.pending = false
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	return a.save(ctx)
}

// Stop flushes pending work and refuses further scheduling.
func (a *Autosaver) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()

	return a.Flush(ctx)
}
