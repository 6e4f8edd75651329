package app

import (
	"context"
	"sync"
	"time"

	"focusgate/internal"
	"focusgate/internal/errors"
	"focusgate/models"
	"focusgate/ports"

	"github.com/google/uuid"
)

// Client-facing rejection reasons
const (
	ReasonPendingQuestionnaire = "Complete questionnaire for previous session first"
	ReasonEveningCutoff        = "Evening cutoff reached - no more sessions today"
	ReasonDailyMax             = "Daily maximum reached"
	ReasonOnBreak              = "Currently on break"
	ReasonNoQuestionnaire      = "No session awaiting questionnaire"
	ReasonNoActiveSession      = "No active session"
)

// FocusService owns the session lifecycle: start, end, timer-complete and
// abandon, plus the eligibility checks and read projections. All mutating
// operations are serialized by one mutex so a read-decide-write sequence is
// a single logical transaction against the single-tenant store.
type FocusService struct {
	mu       sync.Mutex
	sessions ports.SessionRepository
	state    ports.StateRepository
	gate     ports.Gate
	cycle    *CycleEngine
	defaults *models.Settings
	logger   *internal.Logger
	now      func() time.Time
}

// NewFocusService creates the lifecycle manager
func NewFocusService(sessions ports.SessionRepository, state ports.StateRepository, gate ports.Gate, defaults *models.Settings, logger *internal.Logger) *FocusService {
	return &FocusService{
		sessions: sessions,
		state:    state,
		gate:     gate,
		cycle:    NewCycleEngine(sessions),
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// SetNow overrides the service clock. Intended for tests that need to move
// time deterministically.
func (s *FocusService) SetNow(now func() time.Time) {
	s.now = now
}

// StartInput carries the parameters of a start request
type StartInput struct {
	Kind            models.SessionKind
	Intention       *string
	PriorityID      *uuid.UUID
	NextUpID        *uuid.UUID
	DurationMinutes *int
}

// Start creates a new session after the full precondition chain passes:
// no pending questionnaire, eligibility, no in-progress break, and for
// youtube sessions a valid duration plus an unblocked gate. Any violation
// is a hard failure and no row is created.
func (s *FocusService) Start(ctx context.Context, in StartInput) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !models.ValidKind(in.Kind) {
		return nil, errors.Validation("unknown session kind: " + string(in.Kind))
	}

	settings, err := s.state.Settings(ctx, s.defaults)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	awaiting, err := s.sessions.AwaitingQuestionnaire(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if awaiting != nil {
		return nil, errors.Eligibility(ReasonPendingQuestionnaire)
	}

	now := s.now()
	if check, err := s.canStart(ctx, settings, now); err != nil {
		return nil, err
	} else if !check.Allowed {
		return nil, errors.Eligibility(check.Reason)
	}

	state, err := s.reconcileState(ctx, now)
	if err != nil {
		return nil, err
	}
	if state.OnBreak(now) {
		return nil, errors.Eligibility(ReasonOnBreak)
	}

	if in.Kind == models.KindYoutube {
		if err := models.ValidateYoutubeDuration(in.DurationMinutes); err != nil {
			return nil, errors.Validation(err.Error())
		}
		if err := s.gate.Unblock(ctx); err != nil {
			if err == ports.ErrGateNotConfigured {
				s.logger.Info("gate not configured, starting youtube session without unblock")
			} else {
				return nil, errors.GateError(err)
			}
		}
	} else if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		return nil, errors.Validation("duration must be positive")
	}

	session := models.NewSession(in.Kind, now)
	session.Intention = in.Intention
	session.PriorityID = in.PriorityID
	session.NextUpID = in.NextUpID
	session.DurationMinutes = in.DurationMinutes

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, errors.DatabaseError(err)
	}
	s.logger.Info("started %s session %s", session.Kind, session.ID)
	return session, nil
}

// CanStart answers the eligibility question without side effects
func (s *FocusService) CanStart(ctx context.Context) (*models.CanStart, error) {
	settings, err := s.state.Settings(ctx, s.defaults)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return s.canStart(ctx, settings, s.now())
}

func (s *FocusService) canStart(ctx context.Context, settings *models.Settings, now time.Time) (*models.CanStart, error) {
	cutoff, err := settings.CutoffToday(now)
	if err != nil {
		return nil, errors.Wrap(err, "cannot resolve evening cutoff")
	}
	if !now.Before(cutoff) {
		return &models.CanStart{Allowed: false, Reason: ReasonEveningCutoff}, nil
	}

	completed, err := s.sessions.CountCompletedSince(ctx, dayStart(now))
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if completed >= settings.HardMax {
		return &models.CanStart{Allowed: false, Reason: ReasonDailyMax}, nil
	}
	return &models.CanStart{Allowed: true}, nil
}

// End records the questionnaire for the most recent session whose
// reflection fields are still null, ending it first if nothing else has.
// A rabbit-hole acknowledgment extends the break unconditionally, the one
// deliberately non-idempotent break write.
func (s *FocusService) End(ctx context.Context, distractions int, didTheThing, rabbitHole, assistantUsed bool) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.sessions.AwaitingQuestionnaire(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if target == nil {
		return nil, errors.NotFound(ReasonNoQuestionnaire)
	}

	now := s.now()
	if target.EndedAt == nil {
		if err := s.sessions.SetEnded(ctx, target.ID, now); err != nil {
			return nil, errors.DatabaseError(err)
		}
		target.EndedAt = &now
	}

	if err := s.sessions.CompleteQuestionnaire(ctx, target.ID, distractions, didTheThing, rabbitHole, assistantUsed); err != nil {
		return nil, errors.DatabaseError(err)
	}
	target.Distractions = &distractions
	target.DidTheThing = &didTheThing
	target.RabbitHole = &rabbitHole
	target.AssistantUsed = assistantUsed

	if rabbitHole {
		settings, err := s.state.Settings(ctx, s.defaults)
		if err != nil {
			return nil, errors.DatabaseError(err)
		}
		until := now.Add(settings.LongBreak())
		if err := s.state.SetBreakUntil(ctx, &until); err != nil {
			return nil, errors.DatabaseError(err)
		}
		s.logger.Info("rabbit hole acknowledged, break extended to %s", until.Format(time.RFC3339))
	}

	if target.Kind == models.KindYoutube {
		s.blockBestEffort(ctx, "end")
	}
	return target, nil
}

// TimerComplete establishes the break for the session awaiting its
// questionnaire. The break window is a pure function of settings and cycle
// position with the target session excluded, so client retries converge to
// the same window instead of stacking breaks.
func (s *FocusService) TimerComplete(ctx context.Context) (*models.BreakResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.sessions.AwaitingQuestionnaire(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if target == nil {
		return nil, errors.NotFound(ReasonNoQuestionnaire)
	}

	settings, err := s.state.Settings(ctx, s.defaults)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	now := s.now()
	if target.EndedAt == nil {
		if err := s.sessions.SetEnded(ctx, target.ID, now); err != nil {
			return nil, errors.DatabaseError(err)
		}
		target.EndedAt = &now
	}

	position, err := s.cycle.Position(ctx, settings, target.ID, now)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	duration, isLong := s.cycle.BreakFor(settings, position)

	until := now.Add(duration)
	if err := s.state.SetBreakUntil(ctx, &until); err != nil {
		return nil, errors.DatabaseError(err)
	}

	if target.Kind == models.KindYoutube {
		s.blockBestEffort(ctx, "timer-complete")
	}

	return &models.BreakResult{
		BreakDuration: duration,
		BreakSeconds:  int(duration.Seconds()),
		CyclePosition: position,
		IsLongBreak:   isLong,
		BreakUntil:    until,
	}, nil
}

// Abandon deletes the active session outright, no questionnaire and no
// break side effect. Youtube sessions get the gate re-blocked first.
func (s *FocusService) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.sessions.Active(ctx)
	if err != nil {
		return errors.DatabaseError(err)
	}
	if active == nil {
		return errors.NotFound(ReasonNoActiveSession)
	}

	if active.Kind == models.KindYoutube {
		s.blockBestEffort(ctx, "abandon")
	}

	if err := s.sessions.Delete(ctx, active.ID); err != nil {
		return errors.DatabaseError(err)
	}
	s.logger.Info("abandoned %s session %s", active.Kind, active.ID)
	return nil
}

// Status returns a snapshot after the explicit reconcile step. Precedence:
// an active session wins, then a pending questionnaire, then a live break.
func (s *FocusService) Status(ctx context.Context) (*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.state.Settings(ctx, s.defaults)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	now := s.now()
	state, err := s.reconcileState(ctx, now)
	if err != nil {
		return nil, err
	}

	completed, err := s.sessions.CountCompletedSince(ctx, dayStart(now))
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	alert, err := s.rabbitHoleAlert(ctx, settings, now)
	if err != nil {
		return nil, err
	}

	status := &models.Status{
		Mode:            models.ModeIdle,
		ServerTime:      now,
		BreakUntil:      state.BreakUntil,
		CheckInMode:     state.CheckInMode,
		SessionsToday:   completed,
		DailyCap:        settings.DailyCap,
		RabbitHoleAlert: alert,
	}

	active, err := s.sessions.Active(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if active != nil {
		status.Mode = models.ModeSession
		status.Session = active
		remaining := int(active.Deadline(settings).Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		status.RemainingSeconds = remaining
		return status, nil
	}

	awaiting, err := s.sessions.AwaitingQuestionnaire(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if awaiting != nil {
		status.Mode = models.ModeSessionEnded
		status.Session = awaiting
		if state.OnBreak(now) {
			status.RemainingSeconds = int(state.BreakUntil.Sub(now).Seconds())
		}
		return status, nil
	}

	if state.OnBreak(now) {
		status.Mode = models.ModeBreak
		status.RemainingSeconds = int(state.BreakUntil.Sub(now).Seconds())
	}
	return status, nil
}

// BreakState is the projection served to the reverse proxy: just enough to
// gate unrelated traffic while on break.
func (s *FocusService) BreakState(ctx context.Context) (*models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileState(ctx, s.now())
}

// reconcileState clears an expired break before the caller reads state.
// Mutation happens here explicitly, never as a hidden getter side effect.
func (s *FocusService) reconcileState(ctx context.Context, now time.Time) (*models.AppState, error) {
	state, err := s.state.State(ctx)
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	if state.BreakExpired(now) {
		if err := s.state.SetBreakUntil(ctx, nil); err != nil {
			return nil, errors.DatabaseError(err)
		}
		state.BreakUntil = nil
	}
	return state, nil
}

// rabbitHoleAlert reports whether the trailing run of personal sessions
// today has reached the configured threshold
func (s *FocusService) rabbitHoleAlert(ctx context.Context, settings *models.Settings, now time.Time) (bool, error) {
	ended, err := s.sessions.ListEndedSince(ctx, dayStart(now))
	if err != nil {
		return false, errors.DatabaseError(err)
	}
	run := 0
	for _, session := range ended {
		if session.Kind != models.KindPersonal {
			break
		}
		run++
	}
	return run >= settings.RabbitHoleThreshold, nil
}

// blockBestEffort re-blocks the distraction source where failure must not
// fail the calling operation; the reconciler's periodic sweep is the only
// retry mechanism.
func (s *FocusService) blockBestEffort(ctx context.Context, op string) {
	if err := s.gate.Block(ctx); err != nil && err != ports.ErrGateNotConfigured {
		s.logger.Warn("gate block failed during %s: %v", op, err)
	}
}
