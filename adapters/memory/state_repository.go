package memory

import (
	"context"
	"sync"
	"time"

	"focusgate/models"
	"focusgate/ports"
)

// StateRepositoryImpl is an in-memory StateRepository used by tests and
// the dev server.
type StateRepositoryImpl struct {
	mu       sync.RWMutex
	settings *models.Settings
	state    models.AppState
}

// NewStateRepository creates an in-memory state repository
func NewStateRepository() ports.StateRepository {
	return &StateRepositoryImpl{}
}

// Settings returns the settings row, seeding it from defaults on first run
func (r *StateRepositoryImpl) Settings(ctx context.Context, defaults *models.Settings) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		seeded := *defaults
		r.settings = &seeded
	}
	copied := *r.settings
	return &copied, nil
}

// UpdateSettings replaces the settings row
func (r *StateRepositoryImpl) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.settings = &copied
	return nil
}

// State returns the app-state row
func (r *StateRepositoryImpl) State(ctx context.Context) (*models.AppState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	copied := r.state
	if r.state.BreakUntil != nil {
		until := *r.state.BreakUntil
		copied.BreakUntil = &until
	}
	return &copied, nil
}

// SetBreakUntil writes break_until; nil clears the break
func (r *StateRepositoryImpl) SetBreakUntil(ctx context.Context, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if until == nil {
		r.state.BreakUntil = nil
		return nil
	}
	copied := *until
	r.state.BreakUntil = &copied
	return nil
}

// SetCheckInMode writes the check-in flag
func (r *StateRepositoryImpl) SetCheckInMode(ctx context.Context, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.CheckInMode = on
	return nil
}
