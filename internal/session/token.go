package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

var errNoExpiry = errors.New("token has no expiry claim")

// tokenExpiry extracts the exp claim from the access token without verifying
// the signature. The decoded expiry is advisory, used only to decide when to
// refresh; the server re-validates every request independently.
func tokenExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

// storeTokenSource adapts a Store into the api.TokenSource the HTTP client
// attaches bearer tokens from.
type storeTokenSource struct {
	store Store
}

// TokenSource exposes the access token held in store to the HTTP client.
func TokenSource(store Store) api.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) AccessToken() string {
	tok, _ := s.store.Get(keyAccessToken)
	return tok
}
