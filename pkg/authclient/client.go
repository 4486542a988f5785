package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoginInput carries login credentials. TOTPCode is required once the account
// has two-factor authentication enabled.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// LoginOutput is the result of a successful login.
type LoginOutput struct {
	Tokens TokenPair `json:"tokens"`
	User   User      `json:"user"`
}

// errorBody is the server's structured error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// retriedHeader marks a request that has already been replayed after a
// refresh. Stripped before sending; never reaches the wire twice.
const retriedHeader = "X-Authclient-Retried"

// SessionClient is the sole HTTP boundary of the client side. It attaches
// credentials to outbound requests, detects authorization failures and
// coordinates deduplicated token refresh: however many concurrent requests
// hit a 401, exactly one refresh call reaches the backend.
type SessionClient struct {
	httpClient   *http.Client
	baseURL      string
	store        TokenStore
	logger       *slog.Logger
	expiryBuffer time.Duration

	refreshGroup singleflight.Group
	failures     *failureBroadcaster
}

// ClientOption customizes a SessionClient.
type ClientOption func(*SessionClient)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *SessionClient) {
		c.httpClient = httpClient
	}
}

// WithExpiryBuffer sets how long before the access token's expiry a refresh
// is triggered proactively, overriding the store's default.
func WithExpiryBuffer(buffer time.Duration) ClientOption {
	return func(c *SessionClient) {
		c.expiryBuffer = buffer
	}
}

// NewSessionClient creates a SessionClient talking to baseURL with tokens
// from store. The proactive refresh margin defaults to the store's
// ExpiryBuffer.
func NewSessionClient(baseURL string, store TokenStore, logger *slog.Logger, opts ...ClientOption) *SessionClient {
	client := &SessionClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		store:        store,
		logger:       logger,
		expiryBuffer: store.ExpiryBuffer(),
		failures:     newFailureBroadcaster(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// OnAuthFailure subscribes fn to session-wide authentication failure events.
// The returned function unsubscribes.
func (c *SessionClient) OnAuthFailure(fn func(AuthFailureEvent)) func() {
	return c.failures.subscribe(fn)
}

// Do sends req with the stored access token attached as a bearer credential.
// A token already inside the expiry buffer triggers the shared refresh before
// the request is sent. On a 401 for a request not yet retried it joins the
// shared refresh, then replays the request exactly once with the new token. A
// request that 401s after its retry is returned as-is, never refreshed again.
//
// The request body, if any, must be rewindable via req.GetBody for the replay
// to carry it; requests built with http.NewRequestWithContext from a
// *bytes.Buffer or *bytes.Reader satisfy this.
func (c *SessionClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	retried := req.Header.Get(retriedHeader) != ""
	req.Header.Del(retriedHeader)

	if pair, ok := c.store.GetTokens(); ok {
		// An access token inside the expiry buffer is refreshed before the
		// request goes out rather than after it bounces. If the proactive
		// refresh fails the old token is sent anyway; the reactive 401 path
		// settles it.
		if !retried && expiresWithin(pair.AccessToken, c.expiryBuffer) {
			if refreshErr := c.refresh(ctx); refreshErr == nil {
				if rotated, ok := c.store.GetTokens(); ok {
					pair = rotated
				}
			}
		}
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, categorizeTransport(err)
	}

	if resp.StatusCode != http.StatusUnauthorized || retried {
		return resp, nil
	}

	// Drain the 401 before replaying so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if refreshErr := c.refresh(ctx); refreshErr != nil {
		// The refresh outcome is session-wide; the original request's
		// failure is what the caller sees.
		return nil, categorizeStatus(http.StatusUnauthorized, "", "", false)
	}

	replay, err := cloneRequest(ctx, req)
	if err != nil {
		return nil, invalidResponseError("failed to replay request after refresh")
	}
	replay.Header.Set(retriedHeader, "1")

	return c.Do(ctx, replay)
}

// refresh redeems the stored refresh token for a rotated pair. Concurrent
// callers share a single in-flight attempt through the singleflight group;
// the ownership slot is taken synchronously before any network suspension and
// released when the attempt settles, success or failure.
func (c *SessionClient) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		pair, ok := c.store.GetTokens()
		if !ok {
			return nil, invalidResponseError("no refresh token stored")
		}

		body := map[string]string{"refresh_token": pair.RefreshToken}
		var rotated TokenPair
		if authErr := c.postJSON(ctx, "/v1/auth/refresh", body, &rotated, false); authErr != nil {
			c.store.RemoveTokens()
			c.failures.publish(AuthFailureEvent{Reason: ReasonTokenRefreshFailed})
			c.logger.Warn("token refresh failed", slog.Any("error", authErr))
			return nil, authErr
		}

		if rotated.AccessToken == "" || rotated.RefreshToken == "" {
			c.store.RemoveTokens()
			c.failures.publish(AuthFailureEvent{Reason: ReasonTokenRefreshFailed})
			return nil, invalidResponseError("refresh response missing tokens")
		}

		if err := c.store.SetTokens(&rotated); err != nil {
			return nil, invalidResponseError("failed to store rotated tokens")
		}

		return nil, nil
	})
	return err
}

// Login authenticates with the given credentials and stores the issued pair.
// A response without a user id is treated as invalid and stores nothing.
func (c *SessionClient) Login(ctx context.Context, input *LoginInput) (*LoginOutput, *AuthError) {
	var output LoginOutput
	if authErr := c.postJSON(ctx, "/v1/auth/login", input, &output, true); authErr != nil {
		return nil, authErr
	}

	if output.User.ID == "" || output.Tokens.AccessToken == "" {
		return nil, invalidResponseError("login response missing identity")
	}

	if err := c.store.SetTokens(&output.Tokens); err != nil {
		return nil, invalidResponseError("failed to store tokens")
	}

	return &output, nil
}

// RefreshToken forces a refresh of the stored pair, sharing any refresh
// already in flight.
func (c *SessionClient) RefreshToken(ctx context.Context) *AuthError {
	if err := c.refresh(ctx); err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return categorizeTransport(err)
	}
	return nil
}

// Logout notifies the server and clears the stored pair. The local teardown
// is unconditional; a failing server notification is logged and swallowed.
func (c *SessionClient) Logout(ctx context.Context) {
	defer c.store.RemoveTokens()

	pair, ok := c.store.GetTokens()
	if !ok {
		return
	}

	body := map[string]string{"refresh_token": pair.RefreshToken}
	if authErr := c.postJSON(ctx, "/v1/auth/logout", body, nil, false); authErr != nil {
		c.logger.Warn("logout notification failed", slog.Any("error", authErr))
	}
}

// Me fetches the current identity snapshot through the authenticated path,
// including the automatic refresh-and-retry.
func (c *SessionClient) Me(ctx context.Context) (*User, *AuthError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/auth/me", nil)
	if err != nil {
		return nil, invalidResponseError("failed to build request")
	}

	resp, doErr := c.Do(ctx, req)
	if doErr != nil {
		var authErr *AuthError
		if errors.As(doErr, &authErr) {
			return nil, authErr
		}
		return nil, categorizeTransport(doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, false)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil || user.ID == "" {
		return nil, invalidResponseError("identity response missing user id")
	}

	return &user, nil
}

// TwoFactorSetup is the pending enrollment material returned by Setup2FA.
// The secret appears exactly once; callers must present it to the user
// immediately.
type TwoFactorSetup struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

// Setup2FA starts two-factor enrollment for the authenticated session and
// returns the pending secret with its provisioning URI. The secret stays
// pending until Enable2FA confirms it with a code.
func (c *SessionClient) Setup2FA(ctx context.Context) (*TwoFactorSetup, *AuthError) {
	var setup TwoFactorSetup
	if authErr := c.doJSON(ctx, "/v1/auth/setup-2fa", nil, &setup); authErr != nil {
		return nil, authErr
	}

	if setup.Secret == "" || setup.ProvisioningURI == "" {
		return nil, invalidResponseError("setup response missing enrollment material")
	}

	return &setup, nil
}

// Enable2FA confirms the pending secret with a code from the authenticator
// and turns two-factor on for the session's account.
func (c *SessionClient) Enable2FA(ctx context.Context, code string) *AuthError {
	return c.doJSON(ctx, "/v1/auth/enable-2fa", map[string]string{"totp_code": code}, nil)
}

// Disable2FA verifies a current code and turns two-factor off.
func (c *SessionClient) Disable2FA(ctx context.Context, code string) *AuthError {
	return c.doJSON(ctx, "/v1/auth/disable-2fa", map[string]string{"totp_code": code}, nil)
}

// doJSON posts body to path through the authenticated Do path, refresh and
// retry included, and decodes a 2xx response into out when out is non-nil.
func (c *SessionClient) doJSON(ctx context.Context, path string, body any, out any) *AuthError {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return invalidResponseError("failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return invalidResponseError("failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, doErr := c.Do(ctx, req)
	if doErr != nil {
		var authErr *AuthError
		if errors.As(doErr, &authErr) {
			return authErr
		}
		return categorizeTransport(doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, false)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return invalidResponseError("failed to decode response body")
	}

	return nil
}

// postJSON posts body to path and decodes a 2xx response into out. Non-2xx
// responses are mapped onto the error taxonomy using the server's structured
// error code.
func (c *SessionClient) postJSON(ctx context.Context, path string, body any, out any, login bool) *AuthError {
	payload, err := json.Marshal(body)
	if err != nil {
		return invalidResponseError("failed to encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return invalidResponseError("failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	if pair, ok := c.store.GetTokens(); ok {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return categorizeTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, login)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return invalidResponseError("failed to decode response body")
	}

	return nil
}

// statusError reads the server's error envelope and maps it onto the taxonomy.
func (c *SessionClient) statusError(resp *http.Response, login bool) *AuthError {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return categorizeStatus(resp.StatusCode, body.Error, body.Message, login)
}

// cloneRequest rebuilds req for a single replay, rewinding the body through
// GetBody when present.
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	replay := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		replay.Body = body
	}
	return replay, nil
}

