package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"focusgate/models"
	"focusgate/ports"

	"github.com/google/uuid"
)

// SessionRepositoryImpl is an in-memory SessionRepository used by tests and
// the dev server. Sessions are stored by value so callers cannot mutate the
// store through returned pointers.
type SessionRepositoryImpl struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

// NewSessionRepository creates an in-memory session repository
func NewSessionRepository() ports.SessionRepository {
	return &SessionRepositoryImpl{sessions: make(map[uuid.UUID]models.Session)}
}

// Create inserts a new session row
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

// Active returns the session with a null end timestamp, or nil if none
func (r *SessionRepositoryImpl) Active(ctx context.Context) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Session
	for _, s := range r.sessions {
		if s.EndedAt != nil {
			continue
		}
		s := s
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = &s
		}
	}
	return latest, nil
}

// AwaitingQuestionnaire returns the most recent session with null
// questionnaire fields, or nil if none
func (r *SessionRepositoryImpl) AwaitingQuestionnaire(ctx context.Context) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Session
	for _, s := range r.sessions {
		if s.Distractions != nil {
			continue
		}
		s := s
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = &s
		}
	}
	return latest, nil
}

// SetEnded writes the end timestamp
func (r *SessionRepositoryImpl) SetEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil
	}
	s.EndedAt = &endedAt
	r.sessions[id] = s
	return nil
}

// CompleteQuestionnaire writes the reflection fields exactly once
func (r *SessionRepositoryImpl) CompleteQuestionnaire(ctx context.Context, id uuid.UUID, distractions int, didTheThing, rabbitHole, assistantUsed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Distractions != nil {
		return nil
	}
	s.Distractions = &distractions
	s.DidTheThing = &didTheThing
	s.RabbitHole = &rabbitHole
	s.AssistantUsed = assistantUsed
	r.sessions[id] = s
	return nil
}

// Delete removes a session row outright
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// ListOpen returns every session with a null end timestamp
func (r *SessionRepositoryImpl) ListOpen(ctx context.Context) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var open []*models.Session
	for _, s := range r.sessions {
		if s.EndedAt == nil {
			s := s
			open = append(open, &s)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].StartedAt.Before(open[j].StartedAt) })
	return open, nil
}

// CountEndedSince counts sessions ended at/after the given instant,
// excluding the given ID when set
func (r *SessionRepositoryImpl) CountEndedSince(ctx context.Context, since time.Time, exclude uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, s := range r.sessions {
		if s.ID == exclude || s.EndedAt == nil {
			continue
		}
		if !s.EndedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// CountCompletedSince counts sessions started at/after the given instant
// that have ended
func (r *SessionRepositoryImpl) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, s := range r.sessions {
		if s.EndedAt != nil && !s.StartedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// LastEnded returns the most recently ended session, excluding the given
// ID when set, or nil if none has ended
func (r *SessionRepositoryImpl) LastEnded(ctx context.Context, exclude uuid.UUID) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Session
	for _, s := range r.sessions {
		if s.ID == exclude || s.EndedAt == nil {
			continue
		}
		s := s
		if latest == nil || s.EndedAt.After(*latest.EndedAt) {
			latest = &s
		}
	}
	return latest, nil
}

// ListEndedSince returns sessions ended at/after the given instant,
// most recent first
func (r *SessionRepositoryImpl) ListEndedSince(ctx context.Context, since time.Time) ([]*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ended []*models.Session
	for _, s := range r.sessions {
		if s.EndedAt == nil || s.EndedAt.Before(since) {
			continue
		}
		s := s
		ended = append(ended, &s)
	}
	sort.Slice(ended, func(i, j int) bool { return ended[i].EndedAt.After(*ended[j].EndedAt) })
	return ended, nil
}
