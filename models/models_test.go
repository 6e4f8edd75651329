package models

import (
	"testing"
	"time"
)

func TestValidateYoutubeDuration(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		name        string
		minutes     *int
		expectError bool
	}{
		{name: "Missing duration", minutes: nil, expectError: true},
		{name: "Valid 15", minutes: intp(15), expectError: false},
		{name: "Valid 30", minutes: intp(30), expectError: false},
		{name: "Valid 45", minutes: intp(45), expectError: false},
		{name: "Valid 60", minutes: intp(60), expectError: false},
		{name: "Invalid 20", minutes: intp(20), expectError: true},
		{name: "Invalid zero", minutes: intp(0), expectError: true},
		{name: "Invalid negative", minutes: intp(-15), expectError: true},
		{name: "Invalid 90", minutes: intp(90), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYoutubeDuration(tt.minutes)

			if tt.expectError && err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestValidKind(t *testing.T) {
	tests := []struct {
		kind  SessionKind
		valid bool
	}{
		{KindExpected, true},
		{KindPersonal, true},
		{KindYoutube, true},
		{SessionKind("work"), false},
		{SessionKind(""), false},
	}

	for _, tt := range tests {
		if got := ValidKind(tt.kind); got != tt.valid {
			t.Errorf("ValidKind(%q) = %v, want %v", tt.kind, got, tt.valid)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	valid := Settings{
		DailyCap:            6,
		HardMax:             8,
		EveningCutoff:       "21:30",
		RabbitHoleThreshold: 3,
		SessionMinutes:      25,
		ShortBreakMinutes:   5,
		LongBreakMinutes:    15,
	}

	tests := []struct {
		name        string
		mutate      func(*Settings)
		expectError bool
	}{
		{name: "Valid defaults", mutate: func(s *Settings) {}, expectError: false},
		{name: "Zero hard max", mutate: func(s *Settings) { s.HardMax = 0 }, expectError: true},
		{name: "Cap above hard max", mutate: func(s *Settings) { s.DailyCap = 9 }, expectError: true},
		{name: "Zero session minutes", mutate: func(s *Settings) { s.SessionMinutes = 0 }, expectError: true},
		{name: "Zero short break", mutate: func(s *Settings) { s.ShortBreakMinutes = 0 }, expectError: true},
		{name: "Bad cutoff format", mutate: func(s *Settings) { s.EveningCutoff = "9pm" }, expectError: true},
		{name: "Zero rabbit hole threshold", mutate: func(s *Settings) { s.RabbitHoleThreshold = 0 }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := valid
			tt.mutate(&settings)
			err := settings.Validate()

			if tt.expectError && err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for %s: %v", tt.name, err)
			}
		})
	}
}

func TestCutoffToday(t *testing.T) {
	settings := Settings{EveningCutoff: "21:30"}
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

	cutoff, err := settings.CutoffToday(now)
	if err != nil {
		t.Fatalf("CutoffToday returned error: %v", err)
	}

	want := time.Date(2026, 3, 14, 21, 30, 0, 0, time.Local)
	if !cutoff.Equal(want) {
		t.Errorf("CutoffToday = %v, want %v", cutoff, want)
	}
}

func TestSessionEffectiveDuration(t *testing.T) {
	settings := &Settings{SessionMinutes: 25}
	session := NewSession(KindExpected, time.Now())

	if got := session.EffectiveDuration(settings); got != 25*time.Minute {
		t.Errorf("default duration = %v, want 25m", got)
	}

	custom := 45
	session.DurationMinutes = &custom
	if got := session.EffectiveDuration(settings); got != 45*time.Minute {
		t.Errorf("custom duration = %v, want 45m", got)
	}
}

func TestAppStateBreak(t *testing.T) {
	now := time.Now()
	state := AppState{}

	if state.OnBreak(now) || state.BreakExpired(now) {
		t.Error("empty state should be neither on break nor expired")
	}

	future := now.Add(5 * time.Minute)
	state.BreakUntil = &future
	if !state.OnBreak(now) {
		t.Error("future break_until should be on break")
	}
	if state.BreakExpired(now) {
		t.Error("future break_until should not be expired")
	}

	past := now.Add(-time.Minute)
	state.BreakUntil = &past
	if state.OnBreak(now) {
		t.Error("past break_until should not be on break")
	}
	if !state.BreakExpired(now) {
		t.Error("past break_until should be expired")
	}
}

func TestAwaitingQuestionnaire(t *testing.T) {
	session := NewSession(KindPersonal, time.Now())
	if !session.AwaitingQuestionnaire() {
		t.Error("new session should be awaiting questionnaire")
	}

	ended := time.Now()
	session.EndedAt = &ended
	if !session.AwaitingQuestionnaire() {
		t.Error("ended session without questionnaire should still be awaiting")
	}

	distractions := 2
	session.Distractions = &distractions
	if session.AwaitingQuestionnaire() {
		t.Error("answered session should not be awaiting")
	}
}
