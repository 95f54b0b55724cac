package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// memStore implements Store for testing.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (m *memStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// failingStore wraps memStore and fails writes to one key.
type failingStore struct {
	*memStore
	failKey string
}

func (f *failingStore) Set(key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.memStore.Set(key, value)
}

// recordingNotifier implements Notifier and captures formatted messages.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	warnings  []string
}

func (r *recordingNotifier) Success(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, fmt.Sprintf(format, args...))
}

func (r *recordingNotifier) Warning(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// fakeAuth is an httptest-backed auth backend with per-endpoint call counters
// and configurable responses.
type fakeAuth struct {
	srv *httptest.Server

	mu            sync.Mutex
	loginCalls    int
	logoutCalls   int
	refreshCalls  int
	validateCalls int
	refreshHeader string
	bearer        string

	loginStatus    int
	refreshStatus  int
	logoutStatus   int
	validateStatus int
	valid          bool
	refreshDelay   time.Duration

	accessToken  string
	refreshToken string
	userID       string
	username     string
	email        string
	roles        []string
}

func newFakeAuth(t *testing.T) *fakeAuth {
	t.Helper()
	f := &fakeAuth{
		valid:        true,
		accessToken:  "access-1",
		refreshToken: "refresh-1",
		username:     "admin",
		email:        "admin@example.com",
		roles:        []string{"ROLE_ADMIN"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.loginCalls++
		status := f.loginStatus
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		f.writeTokens(w)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logoutCalls++
		status := f.logoutStatus
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.refreshCalls++
		f.refreshHeader = r.Header.Get("Refresh-Token")
		status := f.refreshStatus
		delay := f.refreshDelay
		f.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		f.writeTokens(w)
	})
	mux.HandleFunc("GET /api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.validateCalls++
		f.bearer = r.Header.Get("Authorization")
		status := f.validateStatus
		valid := f.valid
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"valid": valid})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAuth) writeTokens(w http.ResponseWriter) {
	f.mu.Lock()
	resp := map[string]interface{}{
		"accessToken":  f.accessToken,
		"refreshToken": f.refreshToken,
		"userId":       f.userID,
		"username":     f.username,
		"email":        f.email,
		"roles":        f.roles,
	}
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeAuth) counts() (login, logout, refresh, validate int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.logoutCalls, f.refreshCalls, f.validateCalls
}

func (f *fakeAuth) lastRefreshHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshHeader
}

func (f *fakeAuth) lastBearer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bearer
}

// signedToken mints an unverified HS256 token whose exp claim is the given
// time. The manager never checks the signature, only the claim.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	assert.NoError(t, err)
	return signed
}

func newTestManager(t *testing.T, baseURL string, store Store, notify Notifier, now time.Time) *Manager {
	t.Helper()
	client, err := api.New(api.Options{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Tokens:  TokenSource(store),
		Logger:  slog.Default(),
	})
	assert.NoError(t, err)
	return NewManager(ManagerOptions{
		API:      client,
		Store:    store,
		Notifier: notify,
		Logger:   slog.Default(),
		Now:      func() time.Time { return now },
	})
}

func TestSignIn_Success(t *testing.T) {
	backend := newFakeAuth(t)
	backend.userID = "user-1"
	store := newMemStore()
	notify := &recordingNotifier{}
	now := time.Now()

	m := newTestManager(t, backend.srv.URL, store, notify, now)
	ok := m.SignIn(context.Background(), "admin", "secret123")

	assert.True(t, ok)
	assert.True(t, m.IsLoggedIn())
	assert.Empty(t, m.Err())

	access, found := store.Get(keyAccessToken)
	assert.True(t, found)
	assert.Equal(t, "access-1", access)
	refresh, found := store.Get(keyRefreshToken)
	assert.True(t, found)
	assert.Equal(t, "refresh-1", refresh)
	_, found = store.Get(keyUser)
	assert.True(t, found)

	user := m.CurrentUser()
	assert.NotNil(t, user)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "admin", user.FirstName, "first name falls back to the username")
	assert.Equal(t, "", user.LastName)
	assert.True(t, user.Active)
	assert.Equal(t, []string{"ROLE_ADMIN"}, user.Roles)

	assert.Len(t, notify.successes, 1)
	assert.Contains(t, notify.successes[0], "Signed in as admin")
}

func TestSignIn_BadCredentials(t *testing.T) {
	backend := newFakeAuth(t)
	backend.loginStatus = http.StatusUnauthorized
	store := newMemStore()
	notify := &recordingNotifier{}

	m := newTestManager(t, backend.srv.URL, store, notify, time.Now())
	ok := m.SignIn(context.Background(), "admin", "wrong")

	assert.False(t, ok)
	assert.False(t, m.IsLoggedIn())
	assert.Equal(t, msgBadCredentials, m.Err())
	_, found := store.Get(keyAccessToken)
	assert.False(t, found)
	assert.Len(t, notify.warnings, 1)
}

func TestSignIn_ServerError(t *testing.T) {
	backend := newFakeAuth(t)
	backend.loginStatus = http.StatusInternalServerError

	m := newTestManager(t, backend.srv.URL, newMemStore(), &recordingNotifier{}, time.Now())
	ok := m.SignIn(context.Background(), "admin", "secret123")

	assert.False(t, ok)
	assert.Equal(t, msgServerFault, m.Err())
}

func TestSignIn_NetworkError(t *testing.T) {
	backend := newFakeAuth(t)
	backend.srv.Close() // unreachable

	m := newTestManager(t, backend.srv.URL, newMemStore(), &recordingNotifier{}, time.Now())
	ok := m.SignIn(context.Background(), "admin", "secret123")

	assert.False(t, ok)
	assert.Equal(t, msgNetwork, m.Err())
}

func TestSignIn_PersistFailureLeavesNoResidue(t *testing.T) {
	backend := newFakeAuth(t)
	store := &failingStore{memStore: newMemStore(), failKey: keyUser}
	notify := &recordingNotifier{}

	m := newTestManager(t, backend.srv.URL, store, notify, time.Now())
	ok := m.SignIn(context.Background(), "admin", "secret123")

	assert.False(t, ok)
	assert.False(t, m.IsLoggedIn())
	assert.Equal(t, 0, store.memStore.len(), "a failed sign-in must not leave tokens behind")
	_, found := store.Get(keyAccessToken)
	assert.False(t, found)
	assert.Equal(t, msgServerFault, m.Err())
	assert.Len(t, notify.warnings, 1)
}

func TestSignIn_ClearErrorResetsMessage(t *testing.T) {
	backend := newFakeAuth(t)
	backend.loginStatus = http.StatusUnauthorized

	m := newTestManager(t, backend.srv.URL, newMemStore(), &recordingNotifier{}, time.Now())
	m.SignIn(context.Background(), "admin", "wrong")
	assert.NotEmpty(t, m.Err())

	m.ClearError()
	assert.Empty(t, m.Err())
}

func TestSignOut_ClearsStateEvenWhenServerFails(t *testing.T) {
	backend := newFakeAuth(t)
	backend.logoutStatus = http.StatusInternalServerError
	store := newMemStore()
	seedSession(t, store, "access-1", "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	assert.True(t, m.IsLoggedIn())

	m.SignOut(context.Background())

	assert.False(t, m.IsLoggedIn())
	assert.Nil(t, m.CurrentUser())
	assert.Equal(t, 0, store.len(), "no credential residue may remain")
	_, logout, _, _ := backend.counts()
	assert.Equal(t, 1, logout, "the server call is still attempted")
}

func TestSignInSignOut_RoundTripLeavesStoreEmpty(t *testing.T) {
	backend := newFakeAuth(t)
	store := newMemStore()

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	assert.True(t, m.SignIn(context.Background(), "admin", "secret123"))
	m.SignOut(context.Background())

	assert.Equal(t, 0, store.len())
	assert.False(t, m.IsLoggedIn())
}

func TestRefreshToken_MissingRefreshToken(t *testing.T) {
	backend := newFakeAuth(t)
	store := newMemStore()

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	ok := m.RefreshToken(context.Background())

	assert.False(t, ok)
	_, _, refresh, _ := backend.counts()
	assert.Equal(t, 0, refresh, "no network call without a refresh token")
}

func TestRefreshToken_Success(t *testing.T) {
	backend := newFakeAuth(t)
	backend.accessToken = "access-2"
	backend.refreshToken = "refresh-2"
	store := newMemStore()
	seedSession(t, store, "access-1", "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	before := m.CurrentUser()
	ok := m.RefreshToken(context.Background())

	assert.True(t, ok)
	access, _ := store.Get(keyAccessToken)
	assert.Equal(t, "access-2", access)
	refresh, _ := store.Get(keyRefreshToken)
	assert.Equal(t, "refresh-2", refresh)
	assert.Equal(t, "refresh-1", backend.lastRefreshHeader(), "old refresh token travels in the Refresh-Token header")

	// The response carried no user id, so the previous user stays in place.
	after := m.CurrentUser()
	assert.NotNil(t, after)
	assert.Equal(t, before.Username, after.Username)
}

func TestRefreshToken_RebuildsUserWhenResponseCarriesID(t *testing.T) {
	backend := newFakeAuth(t)
	backend.userID = "user-9"
	backend.username = "rotated"
	store := newMemStore()
	seedSession(t, store, "access-1", "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	ok := m.RefreshToken(context.Background())

	assert.True(t, ok)
	user := m.CurrentUser()
	assert.NotNil(t, user)
	assert.Equal(t, "user-9", user.ID)
	assert.Equal(t, "rotated", user.Username)
}

func TestRefreshToken_FailureClearsEverything(t *testing.T) {
	backend := newFakeAuth(t)
	backend.refreshStatus = http.StatusUnauthorized
	store := newMemStore()
	seedSession(t, store, "access-1", "refresh-1")
	notify := &recordingNotifier{}

	m := newTestManager(t, backend.srv.URL, store, notify, time.Now())
	ok := m.RefreshToken(context.Background())

	assert.False(t, ok)
	assert.False(t, m.IsLoggedIn())
	assert.Nil(t, m.CurrentUser())
	assert.Equal(t, 0, store.len())
	assert.Equal(t, msgSessionExpired, m.Err())
	assert.Len(t, notify.warnings, 1)
}

func TestRefreshToken_PersistFailureClearsAndWarns(t *testing.T) {
	backend := newFakeAuth(t)
	inner := newMemStore()
	seedSession(t, inner, "access-1", "refresh-1")
	store := &failingStore{memStore: inner, failKey: keyAccessToken}
	notify := &recordingNotifier{}

	m := newTestManager(t, backend.srv.URL, store, notify, time.Now())
	ok := m.RefreshToken(context.Background())

	assert.False(t, ok)
	assert.False(t, m.IsLoggedIn())
	assert.Equal(t, 0, inner.len())
	assert.Equal(t, msgSessionExpired, m.Err())
	assert.Len(t, notify.warnings, 1)
}

func TestRefreshToken_ConcurrentCallersShareOneExchange(t *testing.T) {
	backend := newFakeAuth(t)
	backend.refreshDelay = 100 * time.Millisecond
	store := newMemStore()
	seedSession(t, store, "access-1", "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())

	const callers = 8
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.RefreshToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "caller %d", i)
	}
	_, _, refresh, _ := backend.counts()
	assert.Equal(t, 1, refresh, "concurrent refreshes must collapse into one exchange")
}

func TestEnsureValidSession_NoToken(t *testing.T) {
	backend := newFakeAuth(t)

	m := newTestManager(t, backend.srv.URL, newMemStore(), &recordingNotifier{}, time.Now())
	assert.False(t, m.EnsureValidSession(context.Background()))

	login, logout, refresh, validate := backend.counts()
	assert.Equal(t, 0, login+logout+refresh+validate)
}

func TestEnsureValidSession_FreshTokenNoNetwork(t *testing.T) {
	backend := newFakeAuth(t)
	now := time.Now()
	store := newMemStore()
	seedSession(t, store, signedToken(t, now.Add(time.Hour)), "refresh-1")
	touchWatermark(t, store, now)

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	assert.True(t, m.EnsureValidSession(context.Background()))

	login, logout, refresh, validate := backend.counts()
	assert.Equal(t, 0, login+logout+refresh+validate, "fresh token and recent validation must not touch the network")
}

func TestEnsureValidSession_ExpiringSoonRefreshes(t *testing.T) {
	backend := newFakeAuth(t)
	now := time.Now()
	backend.accessToken = signedToken(t, now.Add(time.Hour))
	store := newMemStore()
	seedSession(t, store, signedToken(t, now.Add(2*time.Minute)), "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	assert.True(t, m.EnsureValidSession(context.Background()))
	_, _, refresh, _ := backend.counts()
	assert.Equal(t, 1, refresh)

	// The refreshed token is fresh and the refresh confirmed the session, so
	// the immediate second call answers locally.
	assert.True(t, m.EnsureValidSession(context.Background()))
	_, _, refresh, validate := backend.counts()
	assert.Equal(t, 1, refresh)
	assert.Equal(t, 0, validate)
}

func TestEnsureValidSession_ExpiredTokenRefreshes(t *testing.T) {
	backend := newFakeAuth(t)
	now := time.Now()
	backend.accessToken = signedToken(t, now.Add(time.Hour))
	store := newMemStore()
	seedSession(t, store, signedToken(t, now.Add(-time.Minute)), "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	assert.True(t, m.EnsureValidSession(context.Background()))
	_, _, refresh, _ := backend.counts()
	assert.Equal(t, 1, refresh)
}

func TestEnsureValidSession_MalformedTokenRefreshes(t *testing.T) {
	backend := newFakeAuth(t)
	now := time.Now()
	backend.accessToken = signedToken(t, now.Add(time.Hour))
	store := newMemStore()
	seedSession(t, store, "not-a-jwt", "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	assert.True(t, m.EnsureValidSession(context.Background()))
	_, _, refresh, _ := backend.counts()
	assert.Equal(t, 1, refresh)
}

func TestEnsureValidSession_StaleWatermarkValidates(t *testing.T) {
	backend := newFakeAuth(t)
	now := time.Now()
	store := newMemStore()
	seedSession(t, store, signedToken(t, now.Add(time.Hour)), "refresh-1")
	touchWatermark(t, store, now.Add(-25*time.Minute))

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	assert.True(t, m.EnsureValidSession(context.Background()))

	_, _, refresh, validate := backend.counts()
	assert.Equal(t, 1, validate)
	assert.Equal(t, 0, refresh, "a valid confirmation needs no refresh")
	assert.Contains(t, backend.lastBearer(), "Bearer ")

	raw, found := store.Get(keyLastValidation)
	assert.True(t, found)
	millis, err := strconv.ParseInt(raw, 10, 64)
	assert.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), millis, "watermark moves to the validation time")
}

func TestEnsureValidSession_ServerRejectsValidation(t *testing.T) {
	backend := newFakeAuth(t)
	backend.valid = false
	now := time.Now()
	backend.accessToken = signedToken(t, now.Add(time.Hour))
	store := newMemStore()
	seedSession(t, store, signedToken(t, now.Add(time.Hour)), "refresh-1")
	touchWatermark(t, store, now.Add(-25*time.Minute))

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	assert.True(t, m.EnsureValidSession(context.Background()))

	_, _, refresh, validate := backend.counts()
	assert.Equal(t, 1, validate)
	assert.Equal(t, 1, refresh, "a rejected token falls back to refresh")
}

func TestEnsureValidSession_ValidationErrorStillMovesWatermark(t *testing.T) {
	backend := newFakeAuth(t)
	backend.validateStatus = http.StatusInternalServerError
	now := time.Now()
	backend.accessToken = signedToken(t, now.Add(time.Hour))
	store := newMemStore()
	seedSession(t, store, signedToken(t, now.Add(time.Hour)), "refresh-1")
	touchWatermark(t, store, now.Add(-25*time.Minute))

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
	m.EnsureValidSession(context.Background())

	raw, found := store.Get(keyLastValidation)
	assert.True(t, found)
	millis, err := strconv.ParseInt(raw, 10, 64)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, millis, now.UnixMilli(), "a failing validate endpoint must not be retried on every call")
}

func TestState(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  State
	}{
		{"no token", "", StateAnonymous},
		{"expired", signedToken(t, now.Add(-time.Minute)), StateExpired},
		{"malformed", "garbage", StateExpired},
		{"expiring soon", signedToken(t, now.Add(2*time.Minute)), StateExpiringSoon},
		{"fresh", signedToken(t, now.Add(time.Hour)), StateAuthenticated},
	}

	backend := newFakeAuth(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.token != "" {
				_ = store.Set(keyAccessToken, tt.token)
			}
			m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, now)
			assert.Equal(t, tt.want, m.State())
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "expiring-soon", StateExpiringSoon.String())
	assert.Equal(t, "expired", StateExpired.String())
}

func TestNewManager_RestoresPersistedUser(t *testing.T) {
	backend := newFakeAuth(t)
	store := newMemStore()
	seedSession(t, store, "access-1", "refresh-1")

	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	assert.True(t, m.IsLoggedIn())
	user := m.CurrentUser()
	assert.NotNil(t, user)
	assert.Equal(t, "admin", user.Username)
}

func TestIsLoggedIn_RequiresBothTokenAndUser(t *testing.T) {
	backend := newFakeAuth(t)
	store := newMemStore()
	_ = store.Set(keyAccessToken, "access-1")

	// Token present, no persisted user.
	m := newTestManager(t, backend.srv.URL, store, &recordingNotifier{}, time.Now())
	assert.False(t, m.IsLoggedIn())
}

// seedSession writes a complete persisted session into store.
func seedSession(t *testing.T, store Store, access, refresh string) {
	t.Helper()
	assert.NoError(t, store.Set(keyAccessToken, access))
	assert.NoError(t, store.Set(keyRefreshToken, refresh))
	data, err := json.Marshal(User{ID: "user-1", Username: "admin", FirstName: "admin", Active: true})
	assert.NoError(t, err)
	assert.NoError(t, store.Set(keyUser, string(data)))
}

func touchWatermark(t *testing.T, store Store, at time.Time) {
	t.Helper()
	assert.NoError(t, store.Set(keyLastValidation, strconv.FormatInt(at.UnixMilli(), 10)))
}

