package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// newTestRouter はテスト用の完全なルーターを構築する。
// "valid-session" のCookieを持つリクエストだけが認証済みになる。
func newTestRouter(t *testing.T, checker HealthChecker) (http.Handler, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	env.backend.withAlice()

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(limiter.Stop)

	session := testSession()
	session.ID = "valid-session"
	finder := &mockSessionFinder{
		findFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == session.ID {
				return session, nil
			}
			return nil, nil
		},
	}

	router := NewRouter(&RouterDeps{
		Logger:        env.logger,
		HealthChecker: checker,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("planit_metrics 1\n"))
		}),
		SessionFinder:     finder,
		CORSAllowedOrigin: "http://localhost:3000",
		CSRF:              middleware.CSRFConfig{},
		RateLimiter:       limiter,
		AuthService: &mockAuthService{
			getLoginURLFn: func(state string) string {
				return "https://idp.example.com/oauth2/authorize?state=" + state
			},
		},
		AuthConfig: testAuthConfig(),
		Clients:    env.pool,
		StateStore: env.store,
		Views:      env.views,
		Reconciler: env.rec,
	})
	return router, env
}

func withCSRF(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "test-token"})
	r.Header.Set("X-CSRF-Token", "test-token")
	return r
}

func withSessionCookie(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"})
	return r
}

func TestNewRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		checker    HealthChecker
		wantStatus int
	}{
		{"no checker", nil, http.StatusOK},
		{"database reachable", pingFunc(func(context.Context) error { return nil }), http.StatusOK},
		{"database down", pingFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, tt.checker)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("GET /health status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestNewRouter_PublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"about", "/api/about", http.StatusOK},
		{"csrf token", "/api/csrf-token", http.StatusOK},
		{"metrics", "/metrics", http.StatusOK},
		{"login", "/auth/login", http.StatusTemporaryRedirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestNewRouter_ProtectedRoutes_RequireSession(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	paths := []string{"/api/navbar", "/api/groups", "/api/events", "/api/calendars", "/api/notifications", "/api/templates", "/api/saving-plans", "/api/stream"}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			if w.Code != http.StatusUnauthorized {
				t.Errorf("GET %s status = %d, want %d", path, w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestNewRouter_SessionCheckedBeforeCSRF(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/groups", strings.NewReader(`{"title":"Trip"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestNewRouter_MutationRequiresCSRF(t *testing.T) {
	router, env := newTestRouter(t, nil)
	env.backend.handleJSON("POST /group", func() any {
		return model.Group{ID: 1, Title: "Trip", UserID: 7}
	})

	t.Run("without token", func(t *testing.T) {
		req := withSessionCookie(httptest.NewRequest(http.MethodPost, "/api/groups", strings.NewReader(`{"title":"Trip"}`)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
		if n := env.backend.count("POST /group"); n != 0 {
			t.Errorf("backend called %d times, want 0", n)
		}
	})

	t.Run("with token", func(t *testing.T) {
		req := withCSRF(withSessionCookie(httptest.NewRequest(http.MethodPost, "/api/groups", strings.NewReader(`{"title":"Trip"}`))))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
		}
	})
}

func TestNewRouter_AuthenticatedRead(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/navbar", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Alice") {
		t.Errorf("body = %s, want it to contain the signed-in user", w.Body.String())
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
