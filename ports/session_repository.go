package ports

import (
	"context"
	"time"

	"focusgate/models"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for session data operations.
// Rows are append-created and updated in place; the only delete path is
// abandoning the active session.
type SessionRepository interface {
	// Create inserts a new session row
	Create(ctx context.Context, session *models.Session) error

	// Active returns the session with a null end timestamp, or nil if none
	Active(ctx context.Context) (*models.Session, error)

	// AwaitingQuestionnaire returns the most recent session whose
	// questionnaire fields are still null, ended or not, or nil if none
	AwaitingQuestionnaire(ctx context.Context) (*models.Session, error)

	// SetEnded writes the end timestamp, leaving questionnaire fields alone
	SetEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error

	// CompleteQuestionnaire writes the reflection trio and the assistant
	// flag exactly once
	CompleteQuestionnaire(ctx context.Context, id uuid.UUID, distractions int, didTheThing, rabbitHole, assistantUsed bool) error

	// Delete removes a session row outright (abandon)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListOpen returns every session with a null end timestamp
	ListOpen(ctx context.Context) ([]*models.Session, error)

	// CountEndedSince counts sessions with an end timestamp at/after the
	// given instant, excluding the given ID when it is not uuid.Nil
	CountEndedSince(ctx context.Context, since time.Time, exclude uuid.UUID) (int, error)

	// CountCompletedSince counts sessions started at/after the given
	// instant that have a non-null end timestamp
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)

	// LastEnded returns the most recently ended session, excluding the
	// given ID when it is not uuid.Nil, or nil if none has ended
	LastEnded(ctx context.Context, exclude uuid.UUID) (*models.Session, error)

	// ListEndedSince returns sessions ended at/after the given instant,
	// most recent first
	ListEndedSince(ctx context.Context, since time.Time) ([]*models.Session, error)
}
