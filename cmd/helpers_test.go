package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fakeBackend serves the auth exchange plus a handful of resource routes so
// commands can run end to end against it.
type fakeBackend struct {
	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	accessToken := mintToken(t, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]any{
			"accessToken":  accessToken,
			"refreshToken": "refresh-1",
			"userId":       "u-1",
			"username":     creds["username"],
			"email":        creds["username"] + "@example.com",
			"roles":        []string{"ROLE_ADMIN"},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]bool{"valid": true})
	})
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []map[string]any{
			{"id": "u-1", "username": "admin", "email": "admin@example.com", "active": true},
		})
	})
	mux.HandleFunc("GET /api/departments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{"id": "d-1", "name": "Engineering", "active": true},
		})
	})

	b := &fakeBackend{srv: httptest.NewServer(mux)}
	t.Cleanup(b.srv.Close)
	return b
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// execute runs a feedbackctl invocation against the given backend and state
// directory.
func execute(t *testing.T, backend *fakeBackend, stateDir string, args ...string) error {
	t.Helper()
	full := append(args, "--api-url", backend.srv.URL, "--state-dir", stateDir)
	rootCmd.SetArgs(full)
	return rootCmd.Execute()
}
