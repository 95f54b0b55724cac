package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// Fixed user-facing messages for the sign-in error taxonomy. No raw transport
// errors reach the user.
const (
	msgNetwork        = "Cannot reach the server. Check your connection and try again."
	msgBadCredentials = "Invalid username or password."
	msgNotFound       = "Login endpoint not found. Check the API base URL."
	msgServerFault    = "The server encountered an error. Please try again later."
	msgSessionExpired = "Your session has expired. Please sign in again."
)

// Manager orchestrates login, logout, refresh, and opportunistic validation
// of the session. All operations catch their own failures and signal them via
// boolean returns plus a stored error string; none of them return an error.
type Manager struct {
	api    *api.Client
	store  Store
	notify Notifier
	logger *slog.Logger
	now    func() time.Time

	// refreshGroup collapses concurrent refresh attempts into a single
	// in-flight exchange shared by all callers.
	refreshGroup singleflight.Group

	mu      sync.RWMutex
	user    *User
	lastErr string
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	API      *api.Client
	Store    Store
	Notifier Notifier
	Logger   *slog.Logger
	// Now overrides the clock, used in tests.
	Now func() time.Time
}

// authResponse is the shape shared by the login and refresh endpoints.
type authResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	UserID       string   `json:"userId"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

// NewManager creates a Manager and restores the persisted session user, if
// any, so IsLoggedIn survives process restarts.
func NewManager(opts ManagerOptions) *Manager {
	notify := opts.Notifier
	if notify == nil {
		notify = nopNotifier{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Manager{
		api:    opts.API,
		store:  opts.Store,
		notify: notify,
		logger: logger,
		now:    now,
	}

	if raw, ok := m.store.Get(keyUser); ok && raw != "" {
		var u User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			m.user = &u
		}
	}
	return m
}

// SignIn exchanges credentials for a token pair. On success the tokens and
// the synthesized user are persisted before the in-memory user becomes
// visible, so a reader never observes a user without tokens.
func (m *Manager) SignIn(ctx context.Context, username, password string) bool {
	var resp authResponse
	err := m.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   loginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		msg := signInMessage(err)
		m.setError(msg)
		m.logger.Debug("sign-in failed", "username", username, "error", err)
		m.notify.Warning("%s", msg)
		return false
	}

	user := m.synthesizeUser(resp)
	if err := m.persistSession(Credentials{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, user); err != nil {
		m.logger.Error("persisting session failed", "error", err)
		// A partial write may have left tokens behind; a failed sign-in must
		// end fully logged out.
		m.clearSession()
		m.setError(msgServerFault)
		m.notify.Warning("%s", msgServerFault)
		return false
	}

	m.mu.Lock()
	m.user = user
	m.lastErr = ""
	m.mu.Unlock()

	m.touchValidation()
	m.notify.Success("Signed in as %s.", user.Username)
	return true
}

// SignOut performs a best-effort server-side logout and unconditionally
// clears all local session state. A failed logout call is logged and
// swallowed: local cleanup must proceed regardless.
func (m *Manager) SignOut(ctx context.Context) {
	err := m.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/logout",
		Auth:   true,
	}, nil)
	if err != nil {
		m.logger.Debug("server-side logout failed", "error", err)
	}

	m.clearSession()
	m.notify.Success("Signed out.")
}

// RefreshToken exchanges the stored refresh token for a new pair. Concurrent
// callers share a single in-flight exchange. A failed refresh immediately
// downgrades to logged-out: stale sessions must not linger silently.
func (m *Manager) RefreshToken(ctx context.Context) bool {
	refresh, ok := m.store.Get(keyRefreshToken)
	if !ok || refresh == "" {
		return false
	}

	result, _, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		return m.doRefresh(ctx), nil
	})
	ok, _ = result.(bool)
	return ok
}

func (m *Manager) doRefresh(ctx context.Context) bool {
	refresh, ok := m.store.Get(keyRefreshToken)
	if !ok || refresh == "" {
		return false
	}

	header := http.Header{}
	header.Set("Refresh-Token", refresh)

	var resp authResponse
	err := m.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/refresh-token",
		Header: header,
	}, &resp)
	if err != nil {
		m.logger.Debug("token refresh failed", "error", err)
		m.clearSession()
		m.setError(msgSessionExpired)
		m.notify.Warning("%s", msgSessionExpired)
		return false
	}

	// Tokens are always replaced. The user is rebuilt only when the response
	// carries a user id; otherwise the previous user stays in place.
	var user *User
	if resp.UserID != "" {
		user = m.synthesizeUser(resp)
	}
	if err := m.persistSession(Credentials{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, user); err != nil {
		m.logger.Error("persisting refreshed session failed", "error", err)
		m.clearSession()
		m.setError(msgSessionExpired)
		m.notify.Warning("%s", msgSessionExpired)
		return false
	}
	if user != nil {
		m.mu.Lock()
		m.user = user
		m.mu.Unlock()
	}
	// A successful refresh is a server-side confirmation, so the validation
	// watermark moves forward too.
	m.touchValidation()
	return true
}

// EnsureValidSession is called opportunistically before authenticated
// operations. It refreshes an expired or nearly-expired token, asks the
// server to confirm validity at most once per validateEvery, and otherwise
// answers from local state without a network call.
func (m *Manager) EnsureValidSession(ctx context.Context) bool {
	token, ok := m.store.Get(keyAccessToken)
	if !ok || token == "" {
		return false
	}

	exp, err := tokenExpiry(token)
	if err != nil {
		// Undecodable tokens are treated as expired.
		m.logger.Debug("access token decode failed", "error", err)
		return m.RefreshToken(ctx)
	}
	if !m.now().Add(refreshWindow).Before(exp) {
		return m.RefreshToken(ctx)
	}

	if m.validationDue() {
		if !m.validateWithServer(ctx) {
			return m.RefreshToken(ctx)
		}
	}
	return true
}

// IsLoggedIn reports whether an access token is stored and a session user is
// held. Synchronous, no I/O.
func (m *Manager) IsLoggedIn() bool {
	token, ok := m.store.Get(keyAccessToken)
	if !ok || token == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// CurrentUser returns a copy of the session user, or nil when anonymous.
func (m *Manager) CurrentUser() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// State computes the derived session state from the stored token and clock.
func (m *Manager) State() State {
	token, ok := m.store.Get(keyAccessToken)
	if !ok || token == "" {
		return StateAnonymous
	}
	exp, err := tokenExpiry(token)
	if err != nil || !m.now().Before(exp) {
		return StateExpired
	}
	if !m.now().Add(refreshWindow).Before(exp) {
		return StateExpiringSoon
	}
	return StateAuthenticated
}

// Err returns the current user-facing error message, if any.
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// ClearError clears the stored error string only.
func (m *Manager) ClearError() {
	m.setError("")
}

// validateWithServer asks the backend to confirm token validity. The
// watermark is updated regardless of outcome so a failing endpoint is not
// hammered on every navigation.
func (m *Manager) validateWithServer(ctx context.Context) bool {
	var resp validateResponse
	err := m.api.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   "/api/auth/validate",
		Auth:   true,
	}, &resp)

	m.touchValidation()
	if err != nil {
		m.logger.Debug("token validation call failed", "error", err)
		return false
	}
	return resp.Valid
}

func (m *Manager) validationDue() bool {
	raw, ok := m.store.Get(keyLastValidation)
	if !ok || raw == "" {
		return true
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	last := time.UnixMilli(millis)
	return m.now().Sub(last) > validateEvery
}

func (m *Manager) touchValidation() {
	millis := strconv.FormatInt(m.now().UnixMilli(), 10)
	if err := m.store.Set(keyLastValidation, millis); err != nil {
		m.logger.Debug("updating validation watermark failed", "error", err)
	}
}

// synthesizeUser builds the session user from an auth exchange response. The
// backend does not supply real names, so FirstName falls back to the username
// and LastName stays empty.
func (m *Manager) synthesizeUser(resp authResponse) *User {
	now := m.now()
	return &User{
		ID:        resp.UserID,
		Username:  resp.Username,
		FirstName: resp.Username,
		LastName:  "",
		Email:     resp.Email,
		Roles:     resp.Roles,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// persistSession writes tokens (and, when non-nil, the user) to the durable
// store. Called before the in-memory user update so storage is never behind
// what callers observe.
func (m *Manager) persistSession(creds Credentials, user *User) error {
	if err := m.store.Set(keyAccessToken, creds.AccessToken); err != nil {
		return err
	}
	if err := m.store.Set(keyRefreshToken, creds.RefreshToken); err != nil {
		return err
	}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := m.store.Set(keyUser, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// clearSession removes every piece of persisted credential material and the
// in-memory user.
func (m *Manager) clearSession() {
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyLastValidation, keyUser} {
		if err := m.store.Delete(key); err != nil {
			m.logger.Debug("clearing session key failed", "key", key, "error", err)
		}
	}
	m.mu.Lock()
	m.user = nil
	m.lastErr = ""
	m.mu.Unlock()
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}

// signInMessage maps a classified API error onto one fixed sentence.
func signInMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrNetwork):
		return msgNetwork
	case errors.Is(err, api.ErrUnauthorized):
		return msgBadCredentials
	case errors.Is(err, api.ErrNotFound):
		return msgNotFound
	case errors.Is(err, api.ErrServer):
		return msgServerFault
	default:
		return err.Error()
	}
}
