package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/planit-app/planit/internal/model"
)

type mockSessionRepository struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// sessionFor は指定ユーザーの有効なセッションを返す。
func sessionFor(userSub string) *model.Session {
	return &model.Session{
		ID:        "session-" + userSub,
		UserSub:   userSub,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// withUser はユーザーのセッションを注入したリクエストを返す。
func withUser(r *http.Request, userSub string) *http.Request {
	return r.WithContext(ContextWithSession(r.Context(), sessionFor(userSub)))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})
