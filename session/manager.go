package session

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"

	webauth "github.com/caldris/go-webauth"
)

// ErrAttemptInFlight is returned when a login or register is requested
// while another one is still pending, or before the startup check has
// resolved. Overlapping attempts are rejected rather than deduplicated.
var ErrAttemptInFlight = errors.New("authentication attempt already in flight", errors.CategoryConflict).
	WithCode(errors.CodeConflict)

// API is the server surface the manager drives; Client implements it.
type API interface {
	Register(ctx context.Context, name, email, password string) (*webauth.AccountSummary, error)
	Login(ctx context.Context, email, password string) (string, *webauth.AccountSummary, error)
	WhoAmI(ctx context.Context, token string) (*webauth.AccountSummary, error)
}

// TokenStore persists the bearer token between sessions, the
// localStorage analog. The client owns the token after issuance.
type TokenStore interface {
	Get() (string, bool)
	Set(token string) error
	Clear() error
}

// Manager owns the client session snapshot. Every mutation goes through
// its single-writer reducer, so no two transitions apply concurrently;
// the network call is the only suspension point.
type Manager struct {
	api    API
	tokens TokenStore
	logger webauth.Logger

	mu   sync.Mutex
	snap Snapshot
}

type ManagerOption func(*Manager)

func WithLogger(logger webauth.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(api API, tokens TokenStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		api:    api,
		tokens: tokens,
		logger: noopLogger{},
		snap:   Snapshot{State: StateUnknown},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Snapshot returns the current session value.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Start runs the startup check: with no stored token the session is
// anonymous; any who-am-i failure discards the token and lands
// anonymous as well. A stale token is an expected condition, so nothing
// reaches the error slot.
func (m *Manager) Start(ctx context.Context) {
	token, ok := m.tokens.Get()
	if !ok || token == "" {
		m.dispatch(Event{Type: EventSetUser})
		return
	}

	user, err := m.api.WhoAmI(ctx, token)
	if err != nil {
		if cerr := m.tokens.Clear(); cerr != nil {
			m.logger.Error("failed to clear stored token", "error", cerr)
		}
		m.dispatch(Event{Type: EventSetUser})
		return
	}

	m.dispatch(Event{Type: EventSetUser, User: user})
}

// Login authenticates against the server, stores the returned token,
// and moves to Authenticated. On failure the error slot is set and the
// base state is kept; Pending never stays true past the outcome.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}

	token, user, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.dispatch(Event{Type: EventAuthError, Err: publicErrorMessage(err, "Login failed")})
		return err
	}

	if serr := m.tokens.Set(token); serr != nil {
		m.logger.Error("failed to persist token", "error", serr)
	}

	m.dispatch(Event{Type: EventAuthSuccess, User: user})
	return nil
}

// Register creates the account and reflects the returned summary. No
// token is issued at registration, so nothing is stored.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}

	user, err := m.api.Register(ctx, name, email, password)
	if err != nil {
		m.dispatch(Event{Type: EventAuthError, Err: publicErrorMessage(err, "Registration failed")})
		return err
	}

	m.dispatch(Event{Type: EventAuthSuccess, User: user})
	return nil
}

// Logout discards the stored token unconditionally and moves to
// Anonymous, independent of any in-flight request.
func (m *Manager) Logout() {
	if err := m.tokens.Clear(); err != nil {
		m.logger.Error("failed to clear stored token", "error", err)
	}
	m.dispatch(Event{Type: EventLogout})
}

// ClearError clears the error slot without touching user or Pending.
func (m *Manager) ClearError() {
	m.dispatch(Event{Type: EventClearError})
}

// begin atomically enters Pending, rejecting overlap.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap.Pending || m.snap.State == StateUnknown {
		return ErrAttemptInFlight
	}

	next, ok := Reduce(m.snap, Event{Type: EventAuthStart})
	if !ok {
		return ErrAttemptInFlight
	}

	m.snap = next
	return nil
}

func (m *Manager) dispatch(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := Reduce(m.snap, ev)
	if !ok {
		m.logger.Debug("rejected session event", "state", m.snap.State.String(), "event", ev.Type)
		return false
	}

	m.snap = next
	return true
}

// publicErrorMessage picks the display string captured into the error
// slot. Rich errors already carry a client-safe message.
func publicErrorMessage(err error, fallback string) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
