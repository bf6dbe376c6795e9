// Package view は画面ごとのビューモデルを組み立てる。
// データはセッションのAPIクライアントから取得し、
// ユーザー入力由来の文字列はサニタイズしてから載せる。
package view

import (
	"context"
	"errors"
	"log/slog"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/optional"
	"github.com/planit-app/planit/internal/security"
)

// Queries はビューが利用するクエリ。*api.Client が満たす。
type Queries interface {
	GetAuthUser(ctx context.Context) (*api.AuthUser, error)
	GetUser(ctx context.Context, id optional.Value[string]) api.Result[model.User]
	GetUsers(ctx context.Context) ([]model.User, error)
	GetGroups(ctx context.Context) ([]model.Group, error)
	GetGroupMembers(ctx context.Context) ([]model.GroupMember, error)
}

var _ Queries = (*api.Client)(nil)

// Builder はビューモデルを組み立てる。
type Builder struct {
	sanitizer security.Sanitizer
	logger    *slog.Logger
}

// NewBuilder はBuilderを生成する。
func NewBuilder(sanitizer security.Sanitizer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{sanitizer: sanitizer, logger: logger}
}

// currentUser は認証済みユーザーのバックエンドレコードを解決する。
// 識別子が未解決の間はユーザー取得をスキップし nil を返す。
func (b *Builder) currentUser(ctx context.Context, q Queries) *model.User {
	id := optional.None[string]()
	auth, err := q.GetAuthUser(ctx)
	switch {
	case err == nil && auth.User.UserID != "":
		id = optional.Some(auth.User.UserID)
	case err != nil && !errors.Is(err, api.ErrNoSession):
		b.logger.Warn("failed to resolve auth user", slog.String("error", err.Error()))
	}

	res := q.GetUser(ctx, id)
	switch res.Status {
	case api.StatusSuccess:
		u := res.Data
		return &u
	case api.StatusError:
		b.logger.Warn("failed to load current user", slog.String("error", res.Err.Error()))
	}
	return nil
}
