package app

import (
	"context"
	"sync"
	"time"

	"focusgate/internal"
	"focusgate/internal/errors"
	"focusgate/models"
	"focusgate/ports"

	"golang.org/x/sync/semaphore"
)

// ExpireSessions is the expiry sweep: every open session past its deadline
// is force-closed with its questionnaire left null, exactly as if the
// client had disconnected mid-session. A short break is then enforced
// unless a longer client-established break is already live.
func (s *FocusService) ExpireSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.state.Settings(ctx, s.defaults)
	if err != nil {
		return errors.DatabaseError(err)
	}

	open, err := s.sessions.ListOpen(ctx)
	if err != nil {
		return errors.DatabaseError(err)
	}

	now := s.now()
	for _, session := range open {
		if session.Deadline(settings).After(now) {
			continue
		}

		if session.Kind == models.KindYoutube {
			s.blockBestEffort(ctx, "expiry sweep")
		}

		if err := s.sessions.SetEnded(ctx, session.ID, now); err != nil {
			return errors.DatabaseError(err)
		}
		s.logger.Info("expired %s session %s, started %s", session.Kind, session.ID, session.StartedAt.Format(time.RFC3339))

		state, err := s.reconcileState(ctx, now)
		if err != nil {
			return err
		}
		if !state.OnBreak(now) {
			until := now.Add(settings.ShortBreak())
			if err := s.state.SetBreakUntil(ctx, &until); err != nil {
				return errors.DatabaseError(err)
			}
		}
	}
	return nil
}

// SweepCutoff flips check-in mode on at the evening cutoff and back off
// once a new day begins before the cutoff. Idempotent between transitions.
func (s *FocusService) SweepCutoff(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.state.Settings(ctx, s.defaults)
	if err != nil {
		return errors.DatabaseError(err)
	}

	now := s.now()
	cutoff, err := settings.CutoffToday(now)
	if err != nil {
		return errors.Wrap(err, "cannot resolve evening cutoff")
	}

	state, err := s.state.State(ctx)
	if err != nil {
		return errors.DatabaseError(err)
	}

	switch {
	case !now.Before(cutoff) && !state.CheckInMode:
		if err := s.state.SetCheckInMode(ctx, true); err != nil {
			return errors.DatabaseError(err)
		}
		s.logger.Info("evening cutoff reached, check-in mode on")
	case now.Before(cutoff) && state.CheckInMode:
		if err := s.state.SetCheckInMode(ctx, false); err != nil {
			return errors.DatabaseError(err)
		}
		s.logger.Info("new day, check-in mode off")
	}
	return nil
}

// EnsureGateDefault asserts the default-blocked gate state: blocked unless
// a youtube session is currently active. Best-effort on both verbs.
func (s *FocusService) EnsureGateDefault(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.sessions.Active(ctx)
	if err != nil {
		s.logger.Warn("gate default check could not read active session: %v", err)
		return
	}

	if active != nil && active.Kind == models.KindYoutube {
		if err := s.gate.Unblock(ctx); err != nil && err != ports.ErrGateNotConfigured {
			s.logger.Warn("gate unblock failed during startup: %v", err)
		}
		return
	}
	s.blockBestEffort(ctx, "startup")
}

// Reconciler drives the two background sweeps on independent timers so a
// dropped client can never leave a session open or a break unenforced.
// Each sweep holds its own lock: a slow store delays the next run of the
// same sweep instead of overlapping it, while the two sweeps stay free to
// run against each other.
type Reconciler struct {
	service        *FocusService
	logger         *internal.Logger
	expiryInterval time.Duration
	cutoffInterval time.Duration
	expiryLock     *semaphore.Weighted
	cutoffLock     *semaphore.Weighted
}

// NewReconciler creates the background reconciliation loop
func NewReconciler(service *FocusService, logger *internal.Logger, expiryInterval, cutoffInterval time.Duration) *Reconciler {
	return &Reconciler{
		service:        service,
		logger:         logger,
		expiryInterval: expiryInterval,
		cutoffInterval: cutoffInterval,
		expiryLock:     semaphore.NewWeighted(1),
		cutoffLock:     semaphore.NewWeighted(1),
	}
}

// Startup runs both sweeps synchronously once, catching sessions that
// expired while the process was down, then asserts the default gate state.
func (r *Reconciler) Startup(ctx context.Context) {
	r.runSweep(ctx, "expiry", r.expiryLock, r.service.ExpireSessions)
	r.runSweep(ctx, "cutoff", r.cutoffLock, r.service.SweepCutoff)
	r.service.EnsureGateDefault(ctx)
}

// Run blocks until ctx is cancelled, ticking both sweeps on their intervals
func (r *Reconciler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		r.tick(ctx, r.expiryInterval, "expiry", r.expiryLock, r.service.ExpireSessions)
	}()
	go func() {
		defer wg.Done()
		r.tick(ctx, r.cutoffInterval, "cutoff", r.cutoffLock, r.service.SweepCutoff)
	}()

	wg.Wait()
}

func (r *Reconciler) tick(ctx context.Context, interval time.Duration, name string, lock *semaphore.Weighted, sweep func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runSweep(ctx, name, lock, sweep)
		}
	}
}

// runSweep executes one sweep iteration. Errors and panics are logged and
// swallowed; nothing may stop the next scheduled run.
func (r *Reconciler) runSweep(ctx context.Context, name string, lock *semaphore.Weighted, sweep func(context.Context) error) {
	if err := lock.Acquire(ctx, 1); err != nil {
		return
	}
	defer lock.Release(1)

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("%s sweep panicked: %v", name, rec)
		}
	}()

	if err := sweep(ctx); err != nil {
		r.logger.Error("%s sweep failed: %v", name, err)
	}
}
