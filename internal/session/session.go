// Package session maintains the authenticated session across invocations and
// time: it persists the credential pair, transparently renews the access token
// before it expires, and degrades to a logged-out state on irrecoverable
// failure. Refresh tokens never leave this package.
package session

import (
	"time"

	"github.com/feedback-platform/feedbackctl/internal/fms"
)

// Storage keys. The durable store is owned exclusively by the Manager; other
// components read session data through its accessors only.
const (
	keyAccessToken    = "accessToken"
	keyRefreshToken   = "refreshToken"
	keyLastValidation = "lastValidation"
	keyUser           = "user"
)

const (
	// refreshWindow is how close to expiry the access token may get before a
	// refresh is forced.
	refreshWindow = 5 * time.Minute
	// validateEvery rate-limits the server-side validation round trip.
	validateEvery = 10 * time.Minute
)

// Credentials is the opaque bearer pair returned by the auth exchange.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// User is the session user synthesized from the login/refresh response. It is
// reconstructed on each successful authentication exchange, never fetched
// again from the API.
type User struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	Email       string           `json:"email"`
	Roles       []string         `json:"roles"`
	Active      bool             `json:"active"`
	Departments []fms.Department `json:"departments"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// State is the derived session state. It is computed on demand from the
// access token's expiry claim and the clock, never persisted.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateExpiringSoon
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateExpiringSoon:
		return "expiring-soon"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Notifier is the side channel for user-visible session notifications
// (sign-in banners, expiry warnings). It is independent of the boolean
// results the Manager's operations return.
type Notifier interface {
	Success(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

type nopNotifier struct{}

func (nopNotifier) Success(string, ...interface{}) {}
func (nopNotifier) Warning(string, ...interface{}) {}
