package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Classified request failures. StatusError unwraps to one of these so callers
// can branch with errors.Is without inspecting status codes.
var (
	ErrNetwork      = errors.New("server unreachable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("endpoint not found")
	ErrServer       = errors.New("server error")
)

// StatusError carries a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api returned status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("api returned status %d", e.Code)
}

// Unwrap maps the status code onto the error taxonomy.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Code == http.StatusNotFound:
		return ErrNotFound
	case e.Code >= http.StatusInternalServerError:
		return ErrServer
	default:
		return nil
	}
}
