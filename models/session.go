package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionKind categorizes what a focus session is for
type SessionKind string

const (
	// KindExpected is priority-linked planned work
	KindExpected SessionKind = "expected"
	// KindPersonal is unplanned personal work
	KindPersonal SessionKind = "personal"
	// KindYoutube is supervised distraction time behind the gate
	KindYoutube SessionKind = "youtube"
)

// YoutubeDurations are the only durations a youtube session may request, in minutes
var YoutubeDurations = []int{15, 30, 45, 60}

// Session is one tracked unit of focused work or supervised distraction time.
// At most one session has a null EndedAt at any time (the active session).
// A session whose questionnaire fields are still null is "awaiting
// questionnaire" and blocks starting a new one.
type Session struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Kind            SessionKind `db:"kind" json:"kind"`
	Intention       *string     `db:"intention" json:"intention,omitempty"`
	PriorityID      *uuid.UUID  `db:"priority_id" json:"priority_id,omitempty"`
	NextUpID        *uuid.UUID  `db:"next_up_id" json:"next_up_id,omitempty"`
	StartedAt       time.Time   `db:"started_at" json:"started_at"`
	EndedAt         *time.Time  `db:"ended_at" json:"ended_at,omitempty"`
	DurationMinutes *int        `db:"duration_minutes" json:"duration_minutes,omitempty"`

	// Questionnaire fields, null until answered exactly once by End
	Distractions *int  `db:"distractions" json:"distractions,omitempty"`
	DidTheThing  *bool `db:"did_the_thing" json:"did_the_thing,omitempty"`
	RabbitHole   *bool `db:"rabbit_hole" json:"rabbit_hole,omitempty"`

	AssistantUsed bool `db:"assistant_used" json:"assistant_used"`
}

// NewSession creates an open session starting now
func NewSession(kind SessionKind, startedAt time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Kind:      kind,
		StartedAt: startedAt,
	}
}

// ValidKind reports whether k is one of the known session kinds
func ValidKind(k SessionKind) bool {
	switch k {
	case KindExpected, KindPersonal, KindYoutube:
		return true
	}
	return false
}

// ValidateYoutubeDuration checks the duration constraint for youtube sessions
func ValidateYoutubeDuration(minutes *int) error {
	if minutes == nil {
		return fmt.Errorf("youtube sessions require a duration")
	}
	for _, d := range YoutubeDurations {
		if *minutes == d {
			return nil
		}
	}
	return fmt.Errorf("youtube duration must be one of %v minutes, got %d", YoutubeDurations, *minutes)
}

// EffectiveDuration returns the session's duration: the custom value when set,
// otherwise the settings default
func (s *Session) EffectiveDuration(settings *Settings) time.Duration {
	if s.DurationMinutes != nil {
		return time.Duration(*s.DurationMinutes) * time.Minute
	}
	return settings.SessionDuration()
}

// Deadline is the instant the session's timer runs out
func (s *Session) Deadline(settings *Settings) time.Time {
	return s.StartedAt.Add(s.EffectiveDuration(settings))
}

// Active reports whether the session has no end timestamp yet
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// AwaitingQuestionnaire reports whether the post-session reflection fields
// have not been recorded. The trio is written atomically, so a null
// Distractions is the marker.
func (s *Session) AwaitingQuestionnaire() bool {
	return s.Distractions == nil
}
