package threadly

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

const defaultEnrichTimeout = 10 * time.Second

// SessionTimer is the cancellable handle behind the expiry schedule.
// *time.Timer satisfies it; tests inject manual timers.
type SessionTimer interface {
	Stop() bool
}

// TimerFactory creates a timer that fires fn after d.
type TimerFactory func(d time.Duration, fn func()) SessionTimer

func defaultTimerFactory(d time.Duration, fn func()) SessionTimer {
	return time.AfterFunc(d, fn)
}

// SessionManager owns the client session: current token and identity, the
// credential store, the expiry schedule, and the login/register/logout
// operations. All other components read session state through it.
type SessionManager struct {
	mu       sync.Mutex
	state    SessionState
	token    string
	identity Identity

	store    CredentialStore
	auth     AuthAPI
	profiles ProfileFetcher

	navigator Navigator
	sink      ActivitySink
	logger    Logger

	now      func() time.Time
	newTimer TimerFactory

	logoutTimer   SessionTimer
	enrichTimeout time.Duration
	enrichWG      sync.WaitGroup
}

// ManagerOption customizes SessionManager construction.
type ManagerOption func(*SessionManager)

// WithManagerLogger overrides the default printf logger.
func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerClock injects a custom clock (useful for tests).
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithManagerTimerFactory injects the factory behind the expiry timer.
func WithManagerTimerFactory(factory TimerFactory) ManagerOption {
	return func(m *SessionManager) {
		if factory != nil {
			m.newTimer = factory
		}
	}
}

// WithNavigator sets the surface asked to redirect on expiry or forced logout.
func WithNavigator(nav Navigator) ManagerOption {
	return func(m *SessionManager) {
		if nav != nil {
			m.navigator = nav
		}
	}
}

// WithManagerActivitySink sets the ActivitySink receiving session events.
func WithManagerActivitySink(sink ActivitySink) ManagerOption {
	return func(m *SessionManager) {
		m.sink = normalizeActivitySink(sink)
	}
}

// WithEnrichTimeout bounds the async profile enrichment request.
func WithEnrichTimeout(d time.Duration) ManagerOption {
	return func(m *SessionManager) {
		if d > 0 {
			m.enrichTimeout = d
		}
	}
}

// NewSessionManager returns a manager in the Anonymous state. Call Start to
// rehydrate persisted credentials and Close to tear the manager down.
func NewSessionManager(store CredentialStore, auth AuthAPI, profiles ProfileFetcher, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		state:         StateAnonymous,
		store:         store,
		auth:          auth,
		profiles:      profiles,
		sink:          noopActivitySink{},
		logger:        defLogger{},
		now:           time.Now,
		newTimer:      defaultTimerFactory,
		enrichTimeout: defaultEnrichTimeout,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Start rehydrates a persisted session. An expired token is cleared and the
// manager stays Anonymous; a live one becomes the current session, gets an
// expiry timer, and triggers enrichment when the cached identity is missing
// or was never enriched.
func (m *SessionManager) Start(ctx context.Context) error {
	creds, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load stored credentials")
	}

	if IsTokenExpired(creds.Token, m.now()) {
		m.logger.Info("stored session token is expired, clearing credentials")
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Error("failed to clear expired credentials: %v", err)
		}
		return nil
	}

	identity := creds.Identity
	if identity.IsZero() {
		identity = DecodeIdentity(creds.Token)
		if err := m.store.Save(ctx, Credentials{Token: creds.Token, Identity: identity}); err != nil {
			m.logger.Error("failed to persist decoded identity: %v", err)
		}
	}

	m.mu.Lock()
	if err := m.transitionLocked(StateAuthenticated); err != nil {
		m.mu.Unlock()
		return err
	}
	m.token = creds.Token
	m.identity = identity
	m.scheduleExpiryLocked(creds.Token)
	m.mu.Unlock()

	if !identity.Enriched {
		m.enrichAsync(identity.Username)
	}

	return nil
}

// Login authenticates with the backend and installs the resulting session.
// Enrichment runs in the background; its failures are logged, never returned.
func (m *SessionManager) Login(ctx context.Context, username, password string) (Identity, error) {
	req := LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return Identity{}, errors.Wrap(err, ErrInvalidPayload.Category, ErrInvalidPayload.Message).
			WithTextCode(ErrInvalidPayload.TextCode)
	}

	if err := m.setState(StateAuthenticating); err != nil {
		return Identity{}, err
	}

	raw, err := m.auth.Login(ctx, username, password)
	if err != nil {
		if stateErr := m.setState(StateAnonymous); stateErr != nil {
			m.logger.Error("failed to reset session state after login failure: %v", stateErr)
		}
		m.emit(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Username:  username,
			Metadata:  map[string]any{"error": err.Error()},
		})
		return Identity{}, err
	}

	identity, err := m.installToken(ctx, raw, StateAuthenticated)
	if err != nil {
		return Identity{}, err
	}

	m.emit(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Username:  identity.Username,
	})

	return identity, nil
}

// Register creates an account. It does not log the user in; registration
// never yields a token and the caller is expected to call Login afterwards.
func (m *SessionManager) Register(ctx context.Context, req RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return errors.Wrap(err, ErrInvalidPayload.Category, ErrInvalidPayload.Message).
			WithTextCode(ErrInvalidPayload.TextCode)
	}

	if err := m.auth.Register(ctx, req); err != nil {
		return err
	}

	m.emit(ctx, ActivityEvent{
		EventType: ActivityEventRegistration,
		Username:  req.Username,
	})

	return nil
}

// SetAuthFromOAuth installs a token handed back by an external identity
// provider. The token is consumed once; the flow after normalization is the
// same as a password login.
func (m *SessionManager) SetAuthFromOAuth(ctx context.Context, raw string) (Identity, error) {
	identity, err := m.installToken(ctx, raw, StateAuthenticated)
	if err != nil {
		return Identity{}, err
	}

	m.emit(ctx, ActivityEvent{
		EventType: ActivityEventExternalLogin,
		Username:  identity.Username,
	})

	return identity, nil
}

// Logout clears credentials and returns to Anonymous. Safe from any state.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	username := m.identity.Username
	m.stopTimerLocked()
	m.token = ""
	m.identity = Identity{}
	m.state = StateAnonymous
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear credentials on logout: %v", err)
	}

	m.emit(ctx, ActivityEvent{
		EventType: ActivityEventLogout,
		Username:  username,
	})
}

// HandleUnauthorized is the global 401 reaction: clear everything, go
// Anonymous, and ask the navigation layer to redirect. Wire it to the API
// client's unauthorized hook. Independent of the expiry timer.
func (m *SessionManager) HandleUnauthorized() {
	ctx := context.Background()

	m.mu.Lock()
	if m.state == StateAnonymous {
		m.mu.Unlock()
		return
	}
	username := m.identity.Username
	from := m.state
	m.stopTimerLocked()
	m.token = ""
	m.identity = Identity{}
	m.state = StateAnonymous
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear credentials after 401: %v", err)
	}

	m.emit(ctx, ActivityEvent{
		EventType: ActivityEventForcedLogout,
		Username:  username,
		FromState: from,
		ToState:   StateAnonymous,
	})

	if m.navigator != nil {
		m.navigator.NavigateToLogin()
	}
}

// RefreshProfile re-runs identity enrichment synchronously, e.g. after the
// user edits their profile.
func (m *SessionManager) RefreshProfile(ctx context.Context) error {
	m.mu.Lock()
	username := m.identity.Username
	authenticated := m.state == StateAuthenticated
	m.mu.Unlock()

	if !authenticated || username == "" {
		return ErrNoCredentials
	}

	return m.enrich(ctx, username)
}

// Close cancels the expiry timer and waits for background enrichment.
func (m *SessionManager) Close() {
	m.mu.Lock()
	m.stopTimerLocked()
	m.mu.Unlock()
	m.enrichWG.Wait()
}

func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *SessionManager) Identity() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Token returns the current session token, empty when anonymous. Exposed as a
// token source for the API client's Authorization header.
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.Token() != ""
}

// installToken normalizes, decodes, persists, and schedules a token becoming
// current, then fires enrichment. Shared by Login and SetAuthFromOAuth.
func (m *SessionManager) installToken(ctx context.Context, raw string, target SessionState) (Identity, error) {
	token := NormalizeToken(raw)
	identity := DecodeIdentity(token)

	if err := m.store.Save(ctx, Credentials{Token: token, Identity: identity}); err != nil {
		if stateErr := m.setState(StateAnonymous); stateErr != nil {
			m.logger.Error("failed to reset session state: %v", stateErr)
		}
		return Identity{}, errors.Wrap(err, errors.CategoryInternal, "failed to persist credentials")
	}

	m.mu.Lock()
	if err := m.transitionLocked(target); err != nil {
		m.mu.Unlock()
		// saved above; a rejected transition must not leave them behind
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.Error("failed to clear credentials after rejected transition: %v", clearErr)
		}
		return Identity{}, err
	}
	m.token = token
	m.identity = identity
	m.scheduleExpiryLocked(token)
	m.mu.Unlock()

	m.enrichAsync(identity.Username)

	return identity, nil
}

// scheduleExpiryLocked cancels any outstanding timer and schedules one for
// expiry-now. At most one timer is ever outstanding. Tokens without a
// readable exp claim get no timer; the session then persists until the
// server rejects a request.
func (m *SessionManager) scheduleExpiryLocked(token string) {
	m.stopTimerLocked()

	expiry, ok := TokenExpiry(token)
	if !ok {
		return
	}

	d := expiry.Sub(m.now())
	if d <= 0 {
		return
	}

	// bind the callback to this token: Stop cannot cancel a callback that
	// already started, and a stale one must not wipe a replacement session
	m.logoutTimer = m.newTimer(d, func() { m.expire(token) })
}

func (m *SessionManager) stopTimerLocked() {
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
		m.logoutTimer = nil
	}
}

// expire runs when the expiry timer fires: Authenticated -> Expired ->
// Anonymous, credentials cleared, user sent to the login entry point. token
// is the one the timer was scheduled for; a session installed since then is
// left alone.
func (m *SessionManager) expire(token string) {
	ctx := context.Background()

	m.mu.Lock()
	if m.state != StateAuthenticated || m.token != token {
		m.mu.Unlock()
		return
	}
	username := m.identity.Username
	m.state = StateExpired
	m.token = ""
	m.identity = Identity{}
	m.logoutTimer = nil
	m.mu.Unlock()

	m.logger.Info("session token expired, logging out")

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear credentials on expiry: %v", err)
	}

	m.emit(ctx, ActivityEvent{
		EventType: ActivityEventSessionExpired,
		Username:  username,
		FromState: StateAuthenticated,
		ToState:   StateExpired,
	})

	m.mu.Lock()
	m.state = StateAnonymous
	m.mu.Unlock()

	if m.navigator != nil {
		m.navigator.NavigateToLogin()
	}
}

func (m *SessionManager) enrichAsync(username string) {
	if username == "" {
		return
	}

	m.enrichWG.Add(1)
	go func() {
		defer m.enrichWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.enrichTimeout)
		defer cancel()
		if err := m.enrich(ctx, username); err != nil {
			m.logger.Error("profile enrichment failed for %s: %v", username, err)
		}
	}()
}

// enrich merges profile fields into the current identity and re-persists the
// pair. A failure leaves the identity usable without the enriched fields.
func (m *SessionManager) enrich(ctx context.Context, username string) error {
	profile, err := m.profiles.GetUserProfile(ctx, username)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.state != StateAuthenticated || m.identity.Username != username {
		m.mu.Unlock()
		return nil
	}
	m.identity.ProfileImageURL = profile.ProfileImageURL
	m.identity.Bio = profile.Bio
	if m.identity.ID == "" {
		m.identity.ID = profile.ID
	}
	m.identity.Enriched = true
	creds := Credentials{Token: m.token, Identity: m.identity}
	m.mu.Unlock()

	if err := m.store.Save(ctx, creds); err != nil {
		m.logger.Error("failed to persist enriched identity: %v", err)
	}

	return nil
}

func (m *SessionManager) setState(to SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

func (m *SessionManager) transitionLocked(to SessionState) error {
	if m.state == to {
		return nil
	}
	if !canTransition(m.state, to) {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": m.state,
			"to":   to,
		})
	}
	m.state = to
	return nil
}

func (m *SessionManager) emit(ctx context.Context, event ActivityEvent) {
	stampActivityEvent(&event, m.now)

	sink := normalizeActivitySink(m.sink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error: %v", err)
	}
}
