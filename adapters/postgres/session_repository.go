package postgres

import (
	"context"
	"database/sql"
	"time"

	"focusgate/models"
	"focusgate/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const sessionColumns = `id, kind, intention, priority_id, next_up_id, started_at, ended_at, duration_minutes, distractions, did_the_thing, rabbit_hole, assistant_used`

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Create inserts a new session row
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *models.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, kind, intention, priority_id, next_up_id, started_at, ended_at, duration_minutes, distractions, did_the_thing, rabbit_hole, assistant_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, session.ID, session.Kind, session.Intention, session.PriorityID, session.NextUpID,
		session.StartedAt, session.EndedAt, session.DurationMinutes,
		session.Distractions, session.DidTheThing, session.RabbitHole, session.AssistantUsed)
	return err
}

// Active returns the session with a null end timestamp, or nil if none
func (r *SessionRepositoryImpl) Active(ctx context.Context) (*models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// AwaitingQuestionnaire returns the most recent session with null
// questionnaire fields, or nil if none
func (r *SessionRepositoryImpl) AwaitingQuestionnaire(ctx context.Context) (*models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE distractions IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetEnded writes the end timestamp
func (r *SessionRepositoryImpl) SetEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at = $2 WHERE id = $1
	`, id, endedAt)
	return err
}

// CompleteQuestionnaire writes the reflection fields exactly once
func (r *SessionRepositoryImpl) CompleteQuestionnaire(ctx context.Context, id uuid.UUID, distractions int, didTheThing, rabbitHole, assistantUsed bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET distractions = $2, did_the_thing = $3, rabbit_hole = $4, assistant_used = $5
		WHERE id = $1 AND distractions IS NULL
	`, id, distractions, didTheThing, rabbitHole, assistantUsed)
	return err
}

// Delete removes a session row outright
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// ListOpen returns every session with a null end timestamp
func (r *SessionRepositoryImpl) ListOpen(ctx context.Context) ([]*models.Session, error) {
	var sessions []*models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE ended_at IS NULL
		ORDER BY started_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountEndedSince counts sessions ended at/after the given instant,
// excluding the given ID when set
func (r *SessionRepositoryImpl) CountEndedSince(ctx context.Context, since time.Time, exclude uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM sessions
		WHERE ended_at IS NOT NULL AND ended_at >= $1 AND id <> $2
	`, since, exclude)
	return count, err
}

// CountCompletedSince counts sessions started at/after the given instant
// that have ended
func (r *SessionRepositoryImpl) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM sessions
		WHERE started_at >= $1 AND ended_at IS NOT NULL
	`, since)
	return count, err
}

// LastEnded returns the most recently ended session, excluding the given
// ID when set, or nil if none has ended
func (r *SessionRepositoryImpl) LastEnded(ctx context.Context, exclude uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE ended_at IS NOT NULL AND id <> $1
		ORDER BY ended_at DESC
		LIMIT 1
	`, exclude)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListEndedSince returns sessions ended at/after the given instant,
// most recent first
func (r *SessionRepositoryImpl) ListEndedSince(ctx context.Context, since time.Time) ([]*models.Session, error) {
	var sessions []*models.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE ended_at IS NOT NULL AND ended_at >= $1
		ORDER BY ended_at DESC
	`, since)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
