package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// mockSessionProvider はSessionProviderのテスト用モック。
type mockSessionProvider struct {
	currentUserFn      func(ctx context.Context) (*Principal, error)
	fetchAuthSessionFn func(ctx context.Context) (*AuthSession, error)
}

func (m *mockSessionProvider) CurrentUser(ctx context.Context) (*Principal, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx)
	}
	return &Principal{UserID: "7", Username: "alice"}, nil
}

func (m *mockSessionProvider) FetchAuthSession(ctx context.Context) (*AuthSession, error) {
	if m.fetchAuthSessionFn != nil {
		return m.fetchAuthSessionFn(ctx)
	}
	return &AuthSession{AccessToken: "token-123", UserSub: "sub-abc"}, nil
}

// fakeBackend はリクエスト数を記録するテスト用バックエンド。
type fakeBackend struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	lastAuth string
	bodies   map[string][]byte
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		t:      t,
		mux:    http.NewServeMux(),
		hits:   make(map[string]int),
		bodies: make(map[string][]byte),
	}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, pattern := fb.mux.Handler(r)

		fb.mu.Lock()
		fb.hits[pattern]++
		fb.lastAuth = r.Header.Get("Authorization")
		fb.bodies[pattern] = body
		fb.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		fb.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) handleJSON(pattern string, fn func() any) {
	fb.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fn())
	})
}

func (fb *fakeBackend) count(pattern string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[pattern]
}

func (fb *fakeBackend) auth() string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.lastAuth
}

func (fb *fakeBackend) body(pattern string) []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.bodies[pattern]
}

func (fb *fakeBackend) client(sessions SessionProvider) *Client {
	return NewClient(Options{
		BaseURL:  fb.srv.URL,
		Sessions: sessions,
		Logger:   newTestLogger(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
