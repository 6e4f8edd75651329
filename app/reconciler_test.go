package app

import (
	"context"
	"testing"
	"time"

	"focusgate/adapters/memory"
	"focusgate/internal"
	"focusgate/models"
	"focusgate/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcilerFixture struct {
	service *FocusService
	state   ports.StateRepository
	gate    *fakeGate
	clock   *testClock
}

func newReconcilerFixture(defaults *models.Settings) *reconcilerFixture {
	if defaults == nil {
		defaults = testSettings()
	}
	gate := &fakeGate{}
	clock := newTestClock()
	state := memory.NewStateRepository()
	service := NewFocusService(
		memory.NewSessionRepository(),
		state,
		gate,
		defaults,
		internal.NewLogger(internal.LogLevelError),
	)
	service.now = clock.Now
	return &reconcilerFixture{service: service, state: state, gate: gate, clock: clock}
}

func TestExpirySweepClosesOrphanedSession(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	_, err := f.service.Start(ctx, StartInput{Kind: models.KindExpected})
	require.NoError(t, err)

	// 30 minutes with no client call, default duration 25
	f.clock.Advance(30 * time.Minute)
	require.NoError(t, f.service.ExpireSessions(ctx))

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSessionEnded, status.Mode)
	require.NotNil(t, status.Session.EndedAt)
	assert.Nil(t, status.Session.Distractions, "questionnaire must stay unanswered")

	state, err := f.state.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.BreakUntil)
	assert.True(t, state.BreakUntil.After(f.clock.Now()))
}

func TestExpirySweepIsIdempotent(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	_, err := f.service.Start(ctx, StartInput{Kind: models.KindExpected})
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)

	require.NoError(t, f.service.ExpireSessions(ctx))
	first, err := f.state.State(ctx)
	require.NoError(t, err)

	require.NoError(t, f.service.ExpireSessions(ctx))
	second, err := f.state.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.BreakUntil, second.BreakUntil)
}

func TestExpirySweepPreservesLongerBreak(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	_, err := f.service.Start(ctx, StartInput{Kind: models.KindExpected})
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)

	// A client-established break reaching 20 minutes out
	longer := f.clock.Now().Add(20 * time.Minute)
	require.NoError(t, f.state.SetBreakUntil(ctx, &longer))

	require.NoError(t, f.service.ExpireSessions(ctx))

	state, err := f.state.State(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.BreakUntil)
	assert.Equal(t, longer, *state.BreakUntil, "sweep must not clobber a live break")
}

func TestExpirySweepBlocksExpiredYoutube(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	duration := 15
	_, err := f.service.Start(ctx, StartInput{Kind: models.KindYoutube, DurationMinutes: &duration})
	require.NoError(t, err)
	require.Equal(t, 1, f.gate.unblockCalls)

	f.clock.Advance(20 * time.Minute)
	require.NoError(t, f.service.ExpireSessions(ctx))
	assert.Equal(t, 1, f.gate.blockCalls)
}

func TestExpirySweepSurvivesGateFailure(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	duration := 15
	_, err := f.service.Start(ctx, StartInput{Kind: models.KindYoutube, DurationMinutes: &duration})
	require.NoError(t, err)

	f.gate.failWith = context.DeadlineExceeded
	f.clock.Advance(20 * time.Minute)

	// Block failure is logged, the session is still closed
	require.NoError(t, f.service.ExpireSessions(ctx))
	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSessionEnded, status.Mode)
}

func TestExpirySweepLeavesRunningSessions(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	_, err := f.service.Start(ctx, StartInput{Kind: models.KindExpected})
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	require.NoError(t, f.service.ExpireSessions(ctx))
	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSession, status.Mode)
}

func TestCutoffSweep(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	// Morning: nothing to do
	require.NoError(t, f.service.SweepCutoff(ctx))
	state, err := f.state.State(ctx)
	require.NoError(t, err)
	assert.False(t, state.CheckInMode)

	// 22:00, past the 21:30 cutoff
	f.clock.Advance(13 * time.Hour)
	require.NoError(t, f.service.SweepCutoff(ctx))
	state, err = f.state.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.CheckInMode)

	// Repeat runs are idempotent
	require.NoError(t, f.service.SweepCutoff(ctx))
	state, err = f.state.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.CheckInMode)

	// Next morning the flag resets
	f.clock.Advance(11 * time.Hour)
	require.NoError(t, f.service.SweepCutoff(ctx))
	state, err = f.state.State(ctx)
	require.NoError(t, err)
	assert.False(t, state.CheckInMode)
}

func TestStartupReconciliation(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	_, err := f.service.Start(ctx, StartInput{Kind: models.KindExpected})
	require.NoError(t, err)
	f.clock.Advance(40 * time.Minute)

	reconciler := NewReconciler(f.service, internal.NewLogger(internal.LogLevelError), time.Minute, time.Minute)
	reconciler.Startup(ctx)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeSessionEnded, status.Mode)

	// No youtube session active, so startup re-asserts the blocked default
	assert.GreaterOrEqual(t, f.gate.blockCalls, 1)
}

func TestStartupKeepsActiveYoutubeUnblocked(t *testing.T) {
	f := newReconcilerFixture(nil)
	ctx := context.Background()

	duration := 30
	_, err := f.service.Start(ctx, StartInput{Kind: models.KindYoutube, DurationMinutes: &duration})
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)

	reconciler := NewReconciler(f.service, internal.NewLogger(internal.LogLevelError), time.Minute, time.Minute)
	reconciler.Startup(ctx)

	assert.Zero(t, f.gate.blockCalls)
	assert.Equal(t, 2, f.gate.unblockCalls, "start plus startup re-assert")
}

func TestReconcilerRunStopsOnCancel(t *testing.T) {
	f := newReconcilerFixture(nil)
	reconciler := NewReconciler(f.service, internal.NewLogger(internal.LogLevelError), 10*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reconciler.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop after cancellation")
	}
}
