package handler

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
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/eventform"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/security"
	"github.com/planit-app/planit/internal/uistate"
	"github.com/planit-app/planit/internal/view"
)

// --- モック定義 ---

// contextSessions はリクエストコンテキストのセッションをAPIクライアントに渡す。
type contextSessions struct{}

func (contextSessions) CurrentUser(ctx context.Context) (*api.Principal, error) {
	session, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return &api.Principal{UserID: session.UserSub, Username: session.Username}, nil
}

func (contextSessions) FetchAuthSession(ctx context.Context) (*api.AuthSession, error) {
	session, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil, nil
	}
	return &api.AuthSession{AccessToken: session.AccessToken, UserSub: session.UserSub}, nil
}

// mockStateStore は保存されたUI状態を記録する。
type mockStateStore struct {
	mu     sync.Mutex
	saveFn func(ctx context.Context, sessionID string, data []byte) error
	saved  map[string][]byte
}

func (m *mockStateStore) SaveData(ctx context.Context, sessionID string, data []byte) error {
	if m.saveFn != nil {
		if err := m.saveFn(ctx, sessionID, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[sessionID] = data
	return nil
}

func (m *mockStateStore) state(t *testing.T, sessionID string) uistate.State {
	t.Helper()
	m.mu.Lock()
	data := m.saved[sessionID]
	m.mu.Unlock()
	state, err := uistate.Decode(data)
	if err != nil {
		t.Fatalf("saved state is not decodable: %v", err)
	}
	return state
}

// mockSessionFinder はSessionFinderのテスト用モック。
type mockSessionFinder struct {
	findFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, nil
}

// fakeBackend はPlan ItバックエンドAPIのテスト用実装。
type fakeBackend struct {
	mux *http.ServeMux
	srv *httptest.Server

	mu     sync.Mutex
	hits   map[string]int
	bodies map[string][]byte
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		mux:    http.NewServeMux(),
		hits:   make(map[string]int),
		bodies: make(map[string][]byte),
	}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, pattern := fb.mux.Handler(r)

		fb.mu.Lock()
		fb.hits[pattern]++
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
		backendJSON(w, http.StatusOK, fn())
	})
}

func (fb *fakeBackend) handleStatus(pattern string, status int) {
	fb.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		backendJSON(w, status, map[string]string{"error": http.StatusText(status)})
	})
}

func (fb *fakeBackend) count(pattern string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[pattern]
}

func (fb *fakeBackend) body(pattern string) []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.bodies[pattern]
}

func backendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// withAlice はサインイン中ユーザー(sub-alice, ID 7)の基本レコードを登録する。
func (fb *fakeBackend) withAlice() *fakeBackend {
	alice := model.User{ID: 7, Name: "Alice", Email: "alice@example.com", CognitoID: "sub-alice"}
	fb.handleJSON("GET /users/sub-alice", func() any { return alice })
	fb.handleJSON("GET /user/sub-alice", func() any { return alice })
	return fb
}

// testEnv はハンドラーテストの依存一式。
type testEnv struct {
	backend *fakeBackend
	pool    *api.Pool
	store   *mockStateStore
	views   *view.Builder
	rec     *eventform.Reconciler
	logger  *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := newFakeBackend(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := api.NewClient(api.Options{
		BaseURL:  backend.srv.URL,
		Sessions: contextSessions{},
		Logger:   logger,
	})
	return &testEnv{
		backend: backend,
		pool:    api.NewPool(base, time.Hour),
		store:   &mockStateStore{},
		views:   view.NewBuilder(security.NewSanitizer(), logger),
		rec:     eventform.NewReconciler(time.UTC),
		logger:  logger,
	}
}

// --- ヘルパー関数 ---

func testSession() *model.Session {
	return &model.Session{
		ID:          "session-1",
		UserSub:     "sub-alice",
		Username:    "alice",
		AccessToken: "token-abc",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func sessionWithState(t *testing.T, state uistate.State) *model.Session {
	t.Helper()
	s := testSession()
	data, err := state.Encode()
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	s.Data = data
	return s
}

func withSession(r *http.Request, session *model.Session) *http.Request {
	return r.WithContext(middleware.ContextWithSession(r.Context(), session))
}

// withChiURLParam はchiのURLパラメータをリクエストに設定する。
func withChiURLParam(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

// parseAPIErrorResponse はレスポンスボディを統一エラーフォーマットとしてパースする。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	for _, field := range []string{"code", "message", "category", "action"} {
		if _, ok := body[field]; !ok {
			t.Errorf("error response missing %q field", field)
		}
	}
	return body
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}
