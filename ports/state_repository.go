package ports

import (
	"context"
	"time"

	"focusgate/models"
)

// StateRepository owns the two singleton rows: Settings and AppState.
// No component other than the lifecycle manager and the reconciler may
// mutate break_until.
type StateRepository interface {
	// Settings returns the settings row, seeding it with the given
	// defaults if it does not exist yet
	Settings(ctx context.Context, defaults *models.Settings) (*models.Settings, error)

	// UpdateSettings replaces the settings row
	UpdateSettings(ctx context.Context, settings *models.Settings) error

	// State returns the app-state row, creating an empty one if missing
	State(ctx context.Context) (*models.AppState, error)

	// SetBreakUntil writes break_until; nil clears the break
	SetBreakUntil(ctx context.Context, until *time.Time) error

	// SetCheckInMode writes the check-in flag
	SetCheckInMode(ctx context.Context, on bool) error
}
