package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrator applies the schema. Statements are idempotent so it is safe to
// run at every startup.
type Migrator struct {
	db *sqlx.DB
}

// NewMigrator creates a new migrator
func NewMigrator(db *sqlx.DB) *Migrator {
	return &Migrator{db: db}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL,
		intention TEXT,
		priority_id UUID,
		next_up_id UUID,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		duration_minutes INTEGER,
		distractions INTEGER,
		did_the_thing BOOLEAN,
		rabbit_hole BOOLEAN,
		assistant_used BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions (ended_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions (started_at)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		daily_cap INTEGER NOT NULL,
		hard_max INTEGER NOT NULL,
		evening_cutoff TEXT NOT NULL,
		rabbit_hole_threshold INTEGER NOT NULL,
		session_minutes INTEGER NOT NULL,
		short_break_minutes INTEGER NOT NULL,
		long_break_minutes INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS app_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		break_until TIMESTAMPTZ,
		check_in_mode BOOLEAN NOT NULL DEFAULT FALSE
	)`,
}

// Up executes all schema statements
func (m *Migrator) Up(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
