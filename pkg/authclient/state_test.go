package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authBackend drives the state machine tests: login succeeds only for the
// known password, and demands a TOTP code when twoFactor is set.
type authBackend struct {
	password   string
	twoFactor  bool
	totpCode   string
	loginCalls atomic.Int32
}

func (b *authBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls.Add(1)

		var input LoginInput
		_ = json.NewDecoder(r.Body).Decode(&input)

		if input.Password != b.password {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}

		if b.twoFactor && input.TOTPCode != b.totpCode {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "totp_required"})
			return
		}

		writeJSON(w, http.StatusOK, LoginOutput{
			Tokens: TokenPair{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				TokenType:    "Bearer",
				ExpiresIn:    900,
				IssuedAt:     time.Now().UTC(),
			},
			User: User{ID: "0191e2c8-0000-7000-8000-000000000003", Email: "admin@example.com", Role: "admin"},
		})
	})

	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /v1/auth/setup-2fa", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, TwoFactorSetup{
			Secret:          "JBSWY3DPEHPK3PXP",
			ProvisioningURI: "otpauth://totp/test:admin@example.com?secret=JBSWY3DPEHPK3PXP",
		})
	})

	verify := func(w http.ResponseWriter, r *http.Request, enable bool) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["totp_code"] != b.totpCode {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "totp_required"})
			return
		}
		b.twoFactor = enable
		w.WriteHeader(http.StatusNoContent)
	}

	mux.HandleFunc("POST /v1/auth/enable-2fa", func(w http.ResponseWriter, r *http.Request) {
		verify(w, r, true)
	})
	mux.HandleFunc("POST /v1/auth/disable-2fa", func(w http.ResponseWriter, r *http.Request) {
		verify(w, r, false)
	})

	return mux
}

func newStateMachine(t *testing.T, backend *authBackend) (*AuthStateMachine, *EncryptedFileStore) {
	t.Helper()

	server := httptest.NewServer(backend.handler())
	store := newFileStore(t)
	client := newTestClient(t, server, store)
	return NewAuthState(client, store, testLogger()), store
}

func TestAuthStateMachineLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		machine, store := newStateMachine(t, &authBackend{password: "secret"})
		require.Equal(t, StateUnauthenticated, machine.State())

		err := machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "secret"})

		require.NoError(t, err)
		assert.Equal(t, StateAuthenticated, machine.State())
		require.NotNil(t, machine.CurrentUser())
		assert.Equal(t, "admin@example.com", machine.CurrentUser().Email)
		assert.Nil(t, machine.Err())

		_, ok := store.GetTokens()
		assert.True(t, ok)
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		backend := &authBackend{password: "secret"}
		machine, store := newStateMachine(t, backend)

		err := machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "wrong"})

		require.Error(t, err)
		assert.Equal(t, StateError, machine.State())
		require.NotNil(t, machine.Err())
		assert.Equal(t, CategoryInvalidCredentials, machine.Err().Category)
		assert.False(t, machine.Err().Retryable)
		assert.Equal(t, int32(1), backend.loginCalls.Load())

		_, ok := store.GetTokens()
		assert.False(t, ok)
	})

	t.Run("Error_SecondFactorRequired", func(t *testing.T) {
		backend := &authBackend{password: "secret", twoFactor: true, totpCode: "123456"}
		machine, _ := newStateMachine(t, backend)

		err := machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "secret"})

		require.Error(t, err)
		assert.Equal(t, StateError, machine.State())
		assert.Equal(t, CategoryMissing2FA, machine.Err().Category)
		assert.True(t, machine.Err().Retryable)
	})
}

func TestAuthStateMachineRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReplaysLastLogin", func(t *testing.T) {
		// First attempt fails against the wrong password, the backend then
		// starts accepting it, and Retry replays the stored credentials.
		backend := &authBackend{password: "other"}
		machine, _ := newStateMachine(t, backend)

		require.Error(t, machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "secret"}))
		require.Equal(t, StateError, machine.State())

		backend.password = "secret"
		err := machine.Retry(ctx)

		require.NoError(t, err)
		assert.Equal(t, StateAuthenticated, machine.State())
		assert.Equal(t, int32(2), backend.loginCalls.Load())
	})

	t.Run("Success_NoOpWithoutPendingError", func(t *testing.T) {
		backend := &authBackend{password: "secret"}
		machine, _ := newStateMachine(t, backend)

		require.NoError(t, machine.Retry(ctx))
		assert.Equal(t, StateUnauthenticated, machine.State())
		assert.Equal(t, int32(0), backend.loginCalls.Load())
	})
}

func TestAuthStateMachineClearError(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ReturnsToPriorState", func(t *testing.T) {
		machine, _ := newStateMachine(t, &authBackend{password: "secret"})

		require.Error(t, machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "wrong"}))
		require.Equal(t, StateError, machine.State())

		machine.ClearError()

		assert.Equal(t, StateUnauthenticated, machine.State())
		assert.Nil(t, machine.Err())
	})

	t.Run("Success_NoOpOutsideErrorState", func(t *testing.T) {
		machine, _ := newStateMachine(t, &authBackend{password: "secret"})

		machine.ClearError()
		assert.Equal(t, StateUnauthenticated, machine.State())
	})
}

func TestAuthStateMachineLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_FromAuthenticated", func(t *testing.T) {
		machine, store := newStateMachine(t, &authBackend{password: "secret"})
		require.NoError(t, machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "secret"}))

		machine.Logout(ctx)

		assert.Equal(t, StateUnauthenticated, machine.State())
		assert.Nil(t, machine.CurrentUser())

		_, ok := store.GetTokens()
		assert.False(t, ok)
	})

	t.Run("Success_FromErrorState", func(t *testing.T) {
		machine, _ := newStateMachine(t, &authBackend{password: "secret"})
		require.Error(t, machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "wrong"}))

		machine.Logout(ctx)

		assert.Equal(t, StateUnauthenticated, machine.State())
		assert.Nil(t, machine.Err())
	})
}

func TestAuthStateMachineRefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		backend, client, store := newRefreshBackend(t)
		machine := NewAuthState(client, store, testLogger())

		err := machine.RefreshToken(ctx)

		require.NoError(t, err)
		assert.Equal(t, int32(1), backend.refreshCalls.Load())

		stored, ok := store.GetTokens()
		require.True(t, ok)
		assert.Equal(t, "refresh-1", stored.RefreshToken)
	})

	t.Run("Error_IrrecoverableFailureTearsDown", func(t *testing.T) {
		backend, client, store := newRefreshBackend(t)
		backend.failRefresh = true
		machine := NewAuthState(client, store, testLogger())

		err := machine.RefreshToken(ctx)

		require.Error(t, err)
		assert.Equal(t, StateUnauthenticated, machine.State())
		assert.Nil(t, machine.CurrentUser())

		_, ok := store.GetTokens()
		assert.False(t, ok)
	})
}

func TestAuthStateMachine2FA(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EnrollmentKeepsSessionAuthenticated", func(t *testing.T) {
		backend := &authBackend{password: "secret", totpCode: "123456"}
		machine, _ := newStateMachine(t, backend)
		require.NoError(t, machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "secret"}))

		setup, err := machine.Setup2FA(ctx)
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", setup.Secret)
		assert.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
		assert.Equal(t, StateAuthenticated, machine.State())

		require.NoError(t, machine.Enable2FA(ctx, "123456"))
		assert.True(t, backend.twoFactor)
		assert.Equal(t, StateAuthenticated, machine.State())

		require.NoError(t, machine.Disable2FA(ctx, "123456"))
		assert.False(t, backend.twoFactor)
		assert.Equal(t, StateAuthenticated, machine.State())
	})

	t.Run("Error_WrongCodeLeavesStateAlone", func(t *testing.T) {
		backend := &authBackend{password: "secret", totpCode: "123456"}
		machine, _ := newStateMachine(t, backend)
		require.NoError(t, machine.Login(ctx, &LoginInput{Email: "admin@example.com", Password: "secret"}))

		err := machine.Enable2FA(ctx, "000000")

		require.Error(t, err)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, CategoryMissing2FA, authErr.Category)
		assert.False(t, backend.twoFactor)
		assert.Equal(t, StateAuthenticated, machine.State())
		assert.Nil(t, machine.Err())
	})
}

func TestAuthStateMachineSessionRestore(t *testing.T) {
	t.Run("Success_ValidStoredPair", func(t *testing.T) {
		server := httptest.NewServer((&authBackend{password: "secret"}).handler())
		store := newFileStore(t)
		require.NoError(t, store.SetTokens(&TokenPair{
			AccessToken:  signedToken(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()}),
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			ExpiresIn:    900,
			IssuedAt:     time.Now().UTC(),
		}))
		client := newTestClient(t, server, store)

		machine := NewAuthState(client, store, testLogger())

		assert.Equal(t, StateAuthenticated, machine.State())
	})

	t.Run("Success_ExpiredPairIgnored", func(t *testing.T) {
		server := httptest.NewServer((&authBackend{password: "secret"}).handler())
		store := newFileStore(t)
		require.NoError(t, store.SetTokens(&TokenPair{
			AccessToken:  signedToken(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()}),
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			ExpiresIn:    900,
			IssuedAt:     time.Now().UTC(),
		}))
		client := newTestClient(t, server, store)

		machine := NewAuthState(client, store, testLogger())

		assert.Equal(t, StateUnauthenticated, machine.State())
	})
}
