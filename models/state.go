package models

import (
	"fmt"
	"time"
)

// AppState is the singleton mutable application state row.
// BreakUntil, when non-null and in the future, represents exactly one
// in-progress break. A past value is an expired break awaiting the explicit
// reconcile step. CheckInMode flips on once per day at the evening cutoff.
type AppState struct {
	BreakUntil  *time.Time `db:"break_until" json:"break_until,omitempty"`
	CheckInMode bool       `db:"check_in_mode" json:"check_in_mode"`
}

// OnBreak reports whether a break is in progress at the given instant
func (a *AppState) OnBreak(now time.Time) bool {
	return a.BreakUntil != nil && a.BreakUntil.After(now)
}

// BreakExpired reports whether a stale break timestamp needs clearing
func (a *AppState) BreakExpired(now time.Time) bool {
	return a.BreakUntil != nil && !a.BreakUntil.After(now)
}

// Settings is the singleton configuration row, seeded from the environment
// on first run and externally editable afterwards.
type Settings struct {
	DailyCap            int    `db:"daily_cap" json:"daily_cap"`
	HardMax             int    `db:"hard_max" json:"hard_max"`
	EveningCutoff       string `db:"evening_cutoff" json:"evening_cutoff"` // "HH:MM" local time-of-day
	RabbitHoleThreshold int    `db:"rabbit_hole_threshold" json:"rabbit_hole_threshold"`
	SessionMinutes      int    `db:"session_minutes" json:"session_minutes"`
	ShortBreakMinutes   int    `db:"short_break_minutes" json:"short_break_minutes"`
	LongBreakMinutes    int    `db:"long_break_minutes" json:"long_break_minutes"`
}

// SessionDuration is the default focus-session length
func (s *Settings) SessionDuration() time.Duration {
	return time.Duration(s.SessionMinutes) * time.Minute
}

// ShortBreak is the short-break length
func (s *Settings) ShortBreak() time.Duration {
	return time.Duration(s.ShortBreakMinutes) * time.Minute
}

// LongBreak is the long-break length, also the natural-rest reset threshold
func (s *Settings) LongBreak() time.Duration {
	return time.Duration(s.LongBreakMinutes) * time.Minute
}

// CutoffToday resolves the evening cutoff to a concrete instant on now's day,
// in now's location
func (s *Settings) CutoffToday(now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", s.EveningCutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid evening cutoff %q: %w", s.EveningCutoff, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

// Validate checks settings for values the scheduling engine cannot work with
func (s *Settings) Validate() error {
	if s.HardMax <= 0 {
		return fmt.Errorf("hard max must be positive, got %d", s.HardMax)
	}
	if s.DailyCap <= 0 || s.DailyCap > s.HardMax {
		return fmt.Errorf("daily cap must be in [1, hard max], got %d", s.DailyCap)
	}
	if s.SessionMinutes <= 0 || s.ShortBreakMinutes <= 0 || s.LongBreakMinutes <= 0 {
		return fmt.Errorf("session and break durations must be positive")
	}
	if s.RabbitHoleThreshold <= 0 {
		return fmt.Errorf("rabbit hole threshold must be positive, got %d", s.RabbitHoleThreshold)
	}
	if _, err := time.Parse("15:04", s.EveningCutoff); err != nil {
		return fmt.Errorf("invalid evening cutoff %q", s.EveningCutoff)
	}
	return nil
}

// StatusMode is the client-facing state of the engine
type StatusMode string

const (
	ModeIdle         StatusMode = "idle"
	ModeSession      StatusMode = "session"
	ModeSessionEnded StatusMode = "session_ended"
	ModeBreak        StatusMode = "break"
)

// Status is the snapshot returned by the status query. ServerTime lets the
// client correct for clock skew when rendering countdowns.
type Status struct {
	Mode             StatusMode `json:"mode"`
	RemainingSeconds int        `json:"remaining_seconds"`
	ServerTime       time.Time  `json:"server_time"`
	Session          *Session   `json:"session,omitempty"`
	BreakUntil       *time.Time `json:"break_until,omitempty"`
	CheckInMode      bool       `json:"check_in_mode"`
	SessionsToday    int        `json:"sessions_today"`
	DailyCap         int        `json:"daily_cap"`
	RabbitHoleAlert  bool       `json:"rabbit_hole_alert"`
}

// BreakResult is what timer-complete reports back to the client
type BreakResult struct {
	BreakDuration time.Duration `json:"-"`
	BreakSeconds  int           `json:"break_duration_seconds"`
	CyclePosition int           `json:"cycle_position"`
	IsLongBreak   bool          `json:"is_long_break"`
	BreakUntil    time.Time     `json:"break_until"`
}

// CanStart is the eligibility answer for starting a new session
type CanStart struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
