package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"focusgate/adapters/memory"
	"focusgate/app"
	"focusgate/internal"
	"focusgate/models"
	"focusgate/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGate struct {
	mu           sync.Mutex
	blockCalls   int
	unblockCalls int
}

func (g *stubGate) Block(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blockCalls++
	return nil
}

func (g *stubGate) Unblock(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unblockCalls++
	return nil
}

var _ ports.Gate = (*stubGate)(nil)

type apiFixture struct {
	server  *Server
	service *app.FocusService
	clock   time.Time
	mu      sync.Mutex
}

func newAPIFixture() *apiFixture {
	defaults := &models.Settings{
		DailyCap:            6,
		HardMax:             8,
		EveningCutoff:       "21:30",
		RabbitHoleThreshold: 3,
		SessionMinutes:      25,
		ShortBreakMinutes:   5,
		LongBreakMinutes:    15,
	}
	logger := internal.NewLogger(internal.LogLevelError)
	service := app.NewFocusService(
		memory.NewSessionRepository(),
		memory.NewStateRepository(),
		&stubGate{},
		defaults,
		logger,
	)

	f := &apiFixture{
		service: service,
		clock:   time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local),
	}
	service.SetNow(func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.clock
	})
	f.server = NewServer(service, logger, gin.TestMode)
	return f
}

func (f *apiFixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(d)
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestStartEndpoint(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/session/start", gin.H{"kind": "expected", "intention": "write the parser"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session models.Session
	decode(t, rec, &session)
	assert.Equal(t, models.KindExpected, session.Kind)
	assert.Nil(t, session.EndedAt)
}

func TestStartRejectsUnknownKind(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/session/start", gin.H{"kind": "gaming"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartRejectsBadYoutubeDuration(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/session/start", gin.H{"kind": "youtube", "duration_minutes": 20})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/session/start", gin.H{"kind": "youtube", "duration_minutes": 30})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestEndWithoutSession(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/session/end", gin.H{"distractions": 1, "did_the_thing": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, app.ReasonNoQuestionnaire, resp["error"])
}

func TestFullSessionFlow(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/session/start", gin.H{"kind": "expected"})
	require.Equal(t, http.StatusCreated, rec.Code)

	f.advance(25 * time.Minute)
	rec = f.do(t, http.MethodPost, "/api/session/timer-complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.BreakResult
	decode(t, rec, &result)
	assert.Equal(t, 0, result.CyclePosition)
	assert.False(t, result.IsLongBreak)
	assert.Equal(t, 5*60, result.BreakSeconds)

	rec = f.do(t, http.MethodPost, "/api/session/end", gin.H{"distractions": 2, "did_the_thing": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/session/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.Status
	decode(t, rec, &status)
	assert.Equal(t, models.ModeBreak, status.Mode)
	assert.InDelta(t, 5*60, status.RemainingSeconds, 1)
}

func TestAbandonEndpoint(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodPost, "/api/session/abandon", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/session/start", gin.H{"kind": "personal"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/session/abandon", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "abandoned", resp["status"])

	rec = f.do(t, http.MethodGet, "/api/session/status", nil)
	var status models.Status
	decode(t, rec, &status)
	assert.Equal(t, models.ModeIdle, status.Mode)
}

func TestCanStartEndpoint(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/api/session/can-start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var check models.CanStart
	decode(t, rec, &check)
	assert.True(t, check.Allowed)

	f.advance(12 * time.Hour) // 22:00
	rec = f.do(t, http.MethodGet, "/api/session/can-start", nil)
	decode(t, rec, &check)
	assert.False(t, check.Allowed)
	assert.Equal(t, app.ReasonEveningCutoff, check.Reason)
}

func TestStatusServerTime(t *testing.T) {
	f := newAPIFixture()

	rec := f.do(t, http.MethodGet, "/api/session/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.Status
	decode(t, rec, &status)
	assert.Equal(t, models.ModeIdle, status.Mode)
	assert.True(t, status.ServerTime.Equal(time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)))
}
