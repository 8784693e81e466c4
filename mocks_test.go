package threadly_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	threadly "github.com/goliatone/threadly-client"
)

// MockAuthAPI implements threadly.AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthAPI) Register(ctx context.Context, req threadly.RegisterRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockProfileFetcher implements threadly.ProfileFetcher
type MockProfileFetcher struct {
	mock.Mock
}

func (m *MockProfileFetcher) GetUserProfile(ctx context.Context, username string) (threadly.Profile, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(threadly.Profile), args.Error(1)
}

// manualTimer records Stop calls; it only fires when the test invokes the
// function captured by its timerRecorder.
type manualTimer struct {
	mu      sync.Mutex
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return true
}

func (t *manualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type scheduledTimer struct {
	Duration time.Duration
	Fire     func()
	Timer    *manualTimer
}

// timerRecorder captures every timer the session manager schedules so tests
// can fire or inspect them deterministically.
type timerRecorder struct {
	mu        sync.Mutex
	scheduled []scheduledTimer
}

func (r *timerRecorder) Factory(d time.Duration, fn func()) threadly.SessionTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	timer := &manualTimer{}
	r.scheduled = append(r.scheduled, scheduledTimer{Duration: d, Fire: fn, Timer: timer})
	return timer
}

func (r *timerRecorder) Scheduled() []scheduledTimer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]scheduledTimer, len(r.scheduled))
	copy(out, r.scheduled)
	return out
}

// sinkRecorder collects activity events in order.
type sinkRecorder struct {
	mu     sync.Mutex
	events []threadly.ActivityEvent
}

func (s *sinkRecorder) Record(_ context.Context, event threadly.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *sinkRecorder) Events() []threadly.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]threadly.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *sinkRecorder) Types() []threadly.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]threadly.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.EventType)
	}
	return types
}

// makeToken builds an unsigned JWT carrying the given claims. The session
// layer never verifies signatures, so a fixed placeholder segment is enough.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".c2lnbmVk"
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(format string, args ...any) { l.t.Logf("DBG "+format, args...) }
func (l testLogger) Info(format string, args ...any)  { l.t.Logf("INF "+format, args...) }
func (l testLogger) Warn(format string, args ...any)  { l.t.Logf("WRN "+format, args...) }
func (l testLogger) Error(format string, args ...any) { l.t.Logf("ERR "+format, args...) }
