package app

import (
	"context"
	"time"

	"focusgate/models"
	"focusgate/ports"

	"github.com/google/uuid"
)

// cycleLength is the number of sessions in one work/long-break cycle
const cycleLength = 4

// CycleEngine computes where the next break falls in the 4-session cycle.
// Position is a deterministic function of (settings, session history), so
// repeated timer-complete calls for the same awaiting session converge to
// the same break window.
type CycleEngine struct {
	sessions ports.SessionRepository
}

// NewCycleEngine creates a cycle engine over the session store
func NewCycleEngine(sessions ports.SessionRepository) *CycleEngine {
	return &CycleEngine{sessions: sessions}
}

// Position returns the cycle position in [0,3] for the session identified by
// exclude. The target session is excluded from all counting so the result is
// stable whether or not its own end timestamp has been written yet.
//
// If the gap since the last other session ended exceeds the long-break
// duration, the user has naturally rested long enough and the cycle resets
// to 0. Otherwise position is the count of other sessions ended today mod 4.
func (e *CycleEngine) Position(ctx context.Context, settings *models.Settings, exclude uuid.UUID, now time.Time) (int, error) {
	last, err := e.sessions.LastEnded(ctx, exclude)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 0, nil
	}
	if now.Sub(*last.EndedAt) > settings.LongBreak() {
		return 0, nil
	}

	count, err := e.sessions.CountEndedSince(ctx, dayStart(now), exclude)
	if err != nil {
		return 0, err
	}
	return count % cycleLength, nil
}

// BreakFor maps a cycle position to a break duration. Position 3, the 4th
// session in the cycle, earns the long break.
func (e *CycleEngine) BreakFor(settings *models.Settings, position int) (time.Duration, bool) {
	if position == cycleLength-1 {
		return settings.LongBreak(), true
	}
	return settings.ShortBreak(), false
}

// dayStart returns local midnight for the given instant
func dayStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
