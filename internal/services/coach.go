package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"pokerstudy-backend/internal/library"
	"pokerstudy-backend/internal/models"
)

// ErrSuggestionInFlight rejects a second suggestion request for a session
// that already has one pending.
var ErrSuggestionInFlight = errors.New("coach: a suggestion is already in flight for this session")

// CoachService asks Gemini for strategic focus objectives for a study
// session and prepends the result to the session notes. One request per
// session may be in flight at a time; total concurrency is capped by a
// token bucket.
type CoachService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	lib    *library.Library

	rateChan chan struct{}

	mu       sync.Mutex
	inFlight map[uuid.UUID]uuid.UUID // session id -> job id
	notify   func(models.WSMessage)
}

func NewCoachService(apiKey string, concurrentReqs int, lib *library.Library) (*CoachService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &CoachService{
		client:   client,
		model:    model,
		lib:      lib,
		rateChan: rateChan,
		inFlight: make(map[uuid.UUID]uuid.UUID),
	}, nil
}

func (s *CoachService) Close() {
	s.client.Close()
}

// SetNotifier installs the event sink (the websocket hub). May stay unset.
func (s *CoachService) SetNotifier(fn func(models.WSMessage)) {
	s.notify = fn
}

// Begin registers a suggestion job for the session. The caller enqueues the
// returned job; Process releases the in-flight guard when it finishes.
func (s *CoachService) Begin(sessionID uuid.UUID) (models.SuggestionJob, error) {
	if _, ok := s.lib.Get(sessionID); !ok {
		return models.SuggestionJob{}, library.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return models.SuggestionJob{}, ErrSuggestionInFlight
	}

	job := models.SuggestionJob{
		ID:        uuid.New(),
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
	s.inFlight[sessionID] = job.ID
	return job, nil
}

// Abort releases the in-flight guard for a job that never made it onto the
// queue.
func (s *CoachService) Abort(job models.SuggestionJob) {
	s.release(job.SessionID)
}

// InFlight reports whether a suggestion is pending for the session.
func (s *CoachService) InFlight(sessionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[sessionID]
	return busy
}

func (s *CoachService) release(sessionID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}

func (s *CoachService) publish(msgType string, job models.SuggestionJob, errMsg string) {
	if s.notify == nil {
		return
	}
	s.notify(models.WSMessage{
		Type: msgType,
		Payload: models.SuggestionEvent{
			JobID:     job.ID,
			SessionID: job.SessionID,
			Error:     errMsg,
		},
	})
}

// Process runs one suggestion job from the queue. On success the suggestion
// is prepended to the session notes and the collection is saved; on failure
// the notes are left untouched and a non-fatal event is published. A session
// deleted while the request was pending discards the late response silently.
func (s *CoachService) Process(ctx context.Context, job models.SuggestionJob) {
	defer s.release(job.SessionID)

	session, ok := s.lib.Get(job.SessionID)
	if !ok {
		return
	}

	s.publish("suggestion_started", job, "")

	text, err := s.generate(ctx, session)
	if err != nil {
		log.Printf("suggestion for session %s failed: %v", job.SessionID, err)
		s.publish("suggestion_failed", job, err.Error())
		return
	}

	// Re-read under the patch so a note edit made while Gemini was thinking
	// is not overwritten by the stale copy we prompted with.
	current, ok := s.lib.Get(job.SessionID)
	if !ok {
		return
	}
	notes := "### STRATEGIC FOCUS\n" + text + "\n\n---\n" + current.Notes
	if _, found, err := s.lib.UpdateSession(job.SessionID, models.SessionPatch{Notes: &notes}); err != nil || !found {
		return
	}
	if err := s.lib.Save(ctx); err != nil {
		log.Printf("failed to persist suggestion for session %s: %v", job.SessionID, err)
	}

	s.publish("suggestion_completed", job, "")
}

func (s *CoachService) generate(ctx context.Context, session models.Session) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	prompt := fmt.Sprintf(`Act as a high-stakes poker analyst. The spot is %s.
Session: %q. Notes: %q.
Provide 4 specific bullet points of "Focus Objectives" for this study session.
Focus on range construction and exploit frequencies. Use concise, professional terminology.`,
		session.Spot, session.Title, session.Notes)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned an empty suggestion")
	}
	return text, nil
}

// acquireRate blocks until a rate slot is available
func (s *CoachService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *CoachService) releaseRate() {
	s.rateChan <- struct{}{}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
