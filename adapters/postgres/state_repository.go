package postgres

import (
	"context"
	"database/sql"
	"time"

	"focusgate/models"
	"focusgate/ports"

	"github.com/jmoiron/sqlx"
)

// Both settings and app_state are singleton rows pinned to id = 1.

// StateRepositoryImpl implements StateRepository for PostgreSQL
type StateRepositoryImpl struct {
	db *sqlx.DB
}

// NewStateRepository creates a new PostgreSQL state repository
func NewStateRepository(db *sqlx.DB) ports.StateRepository {
	return &StateRepositoryImpl{db: db}
}

// Settings returns the settings row, seeding it from defaults on first run
func (r *StateRepositoryImpl) Settings(ctx context.Context, defaults *models.Settings) (*models.Settings, error) {
	var settings models.Settings
	err := r.db.GetContext(ctx, &settings, `
		SELECT daily_cap, hard_max, evening_cutoff, rabbit_hole_threshold, session_minutes, short_break_minutes, long_break_minutes
		FROM settings WHERE id = 1
	`)
	if err == sql.ErrNoRows {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO settings (id, daily_cap, hard_max, evening_cutoff, rabbit_hole_threshold, session_minutes, short_break_minutes, long_break_minutes)
			VALUES (1, $1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, defaults.DailyCap, defaults.HardMax, defaults.EveningCutoff, defaults.RabbitHoleThreshold,
			defaults.SessionMinutes, defaults.ShortBreakMinutes, defaults.LongBreakMinutes)
		if err != nil {
			return nil, err
		}
		seeded := *defaults
		return &seeded, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces the settings row
func (r *StateRepositoryImpl) UpdateSettings(ctx context.Context, settings *models.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings
		SET daily_cap = $1, hard_max = $2, evening_cutoff = $3, rabbit_hole_threshold = $4,
		    session_minutes = $5, short_break_minutes = $6, long_break_minutes = $7
		WHERE id = 1
	`, settings.DailyCap, settings.HardMax, settings.EveningCutoff, settings.RabbitHoleThreshold,
		settings.SessionMinutes, settings.ShortBreakMinutes, settings.LongBreakMinutes)
	return err
}

// State returns the app-state row, creating an empty one if missing
func (r *StateRepositoryImpl) State(ctx context.Context) (*models.AppState, error) {
	var state models.AppState
	err := r.db.GetContext(ctx, &state, `
		SELECT break_until, check_in_mode FROM app_state WHERE id = 1
	`)
	if err == sql.ErrNoRows {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO app_state (id, break_until, check_in_mode)
			VALUES (1, NULL, FALSE)
			ON CONFLICT (id) DO NOTHING
		`)
		if err != nil {
			return nil, err
		}
		return &models.AppState{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// SetBreakUntil writes break_until; nil clears the break
func (r *StateRepositoryImpl) SetBreakUntil(ctx context.Context, until *time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE app_state SET break_until = $1 WHERE id = 1`, until)
	return err
}

// SetCheckInMode writes the check-in flag
func (r *StateRepositoryImpl) SetCheckInMode(ctx context.Context, on bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE app_state SET check_in_mode = $1 WHERE id = 1`, on)
	return err
}
