package authclient

import (
	"context"
	"log/slog"
	"sync"
)

// State is the authentication state visible to the application.
type State string

// States.
const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateError           State = "error"
)

// AuthStateMachine is the application-facing state container for the session.
// It owns no transport logic; everything network-bound goes through the
// injected SessionClient. Always constructed explicitly so tests can run
// isolated instances.
type AuthStateMachine struct {
	client *SessionClient
	store  TokenStore
	logger *slog.Logger

	mu         sync.Mutex
	state      State
	priorState State
	user       *User
	lastErr    *AuthError
	lastAction func(ctx context.Context) *AuthError
}

// StateOption customizes an AuthStateMachine.
type StateOption func(*AuthStateMachine)

// NewAuthState creates a state machine. It starts Authenticated when the
// store holds a non-expired pair from a previous session, otherwise
// Unauthenticated.
func NewAuthState(client *SessionClient, store TokenStore, logger *slog.Logger, opts ...StateOption) *AuthStateMachine {
	machine := &AuthStateMachine{
		client:     client,
		store:      store,
		logger:     logger,
		state:      StateUnauthenticated,
		priorState: StateUnauthenticated,
	}

	if pair, ok := store.GetTokens(); ok && !IsTokenExpired(pair.AccessToken, 0) {
		machine.state = StateAuthenticated
		machine.priorState = StateAuthenticated
	}

	for _, opt := range opts {
		opt(machine)
	}

	return machine
}

// State returns the current state.
func (m *AuthStateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the identity snapshot of the authenticated session, or
// nil outside the Authenticated state.
func (m *AuthStateMachine) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Err returns the pending categorized error, or nil outside the Error state.
func (m *AuthStateMachine) Err() *AuthError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Login authenticates with the given credentials. On success the session
// moves to Authenticated with tokens stored; on failure to Error with a
// categorized AuthError and nothing stored. The credentials are retained as
// the retryable last action, so a missing_2fa failure can be resubmitted with
// a code without re-entering email and password.
func (m *AuthStateMachine) Login(ctx context.Context, input *LoginInput) error {
	action := func(ctx context.Context) *AuthError {
		output, authErr := m.client.Login(ctx, input)
		if authErr != nil {
			return authErr
		}

		m.mu.Lock()
		m.user = &output.User
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	m.state = StateAuthenticating
	m.lastAction = action
	m.mu.Unlock()

	return m.run(ctx, action, StateAuthenticated)
}

// Logout moves to Unauthenticated from any state. Local teardown is
// unconditional; the server notification inside SessionClient.Logout is
// best-effort.
func (m *AuthStateMachine) Logout(ctx context.Context) {
	m.client.Logout(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateUnauthenticated
	m.priorState = StateUnauthenticated
	m.user = nil
	m.lastErr = nil
	m.lastAction = nil
}

// RefreshToken rotates the stored pair. An irrecoverable failure tears the
// session down to Unauthenticated; SessionClient has already cleared tokens
// and published the failure event by then.
func (m *AuthStateMachine) RefreshToken(ctx context.Context) error {
	if authErr := m.client.RefreshToken(ctx); authErr != nil {
		m.mu.Lock()
		m.state = StateUnauthenticated
		m.priorState = StateUnauthenticated
		m.user = nil
		m.mu.Unlock()
		return authErr
	}
	return nil
}

// Setup2FA starts two-factor enrollment for the authenticated session. The
// enrollment does not move the state machine; the session stays Authenticated
// throughout.
func (m *AuthStateMachine) Setup2FA(ctx context.Context) (*TwoFactorSetup, error) {
	setup, authErr := m.client.Setup2FA(ctx)
	if authErr != nil {
		return nil, authErr
	}
	return setup, nil
}

// Enable2FA confirms the pending secret with an authenticator code.
func (m *AuthStateMachine) Enable2FA(ctx context.Context, code string) error {
	if authErr := m.client.Enable2FA(ctx, code); authErr != nil {
		return authErr
	}
	return nil
}

// Disable2FA verifies a current code and turns two-factor off.
func (m *AuthStateMachine) Disable2FA(ctx context.Context, code string) error {
	if authErr := m.client.Disable2FA(ctx, code); authErr != nil {
		return authErr
	}
	return nil
}

// Retry re-issues the most recently failed action without the caller
// reconstructing its input. A no-op outside the Error state.
func (m *AuthStateMachine) Retry(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateError || m.lastAction == nil {
		m.mu.Unlock()
		return nil
	}
	action := m.lastAction
	m.state = StateAuthenticating
	m.mu.Unlock()

	return m.run(ctx, action, StateAuthenticated)
}

// ClearError leaves the Error state back to the prior non-error state without
// re-attempting anything.
func (m *AuthStateMachine) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateError {
		return
	}
	m.state = m.priorState
	m.lastErr = nil
}

// run executes a user action and settles the state machine on its outcome.
func (m *AuthStateMachine) run(ctx context.Context, action func(ctx context.Context) *AuthError, success State) error {
	authErr := action(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if authErr != nil {
		if m.state != StateError {
			m.priorState = stateBeforeAttempt(m.state)
		}
		m.state = StateError
		m.lastErr = authErr
		m.logger.Warn("auth action failed",
			slog.String("category", string(authErr.Category)),
			slog.Bool("retryable", authErr.Retryable),
		)
		return authErr
	}

	m.state = success
	m.priorState = success
	m.lastErr = nil
	return nil
}

// stateBeforeAttempt collapses the transient Authenticating state to the
// stable state ClearError should return to.
func stateBeforeAttempt(s State) State {
	if s == StateAuthenticating {
		return StateUnauthenticated
	}
	return s
}
