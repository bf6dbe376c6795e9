// Package repository はBFFが自前で保持するデータの永続化層を提供する。
// ユーザー・グループ・予定などの業務データはバックエンドAPIが保持するため、
// ここで扱うのはログインセッションのみ。
package repository

import (
	"context"
	"time"

	"github.com/planit-app/planit/internal/model"
)

// TokenUpdate はリフレッシュで更新されたトークン群を表す。
type TokenUpdate struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenExpiry  time.Time
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// UpdateTokens はセッションのトークンを更新する。
	UpdateTokens(ctx context.Context, id string, tokens TokenUpdate) error
	// UpdateData はセッションに保存するUI状態を更新する。
	UpdateData(ctx context.Context, id string, data []byte) error
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
