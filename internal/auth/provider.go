package auth

import (
	"context"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/model"
)

// SessionLookup はリクエストコンテキストからセッションを取り出す。
type SessionLookup func(ctx context.Context) (*model.Session, bool)

// SessionProvider はリクエストに紐づくセッションをAPIクライアントへ提供する。
type SessionProvider struct {
	lookup  SessionLookup
	service *Service
}

// NewSessionProvider はSessionProviderを生成する。
func NewSessionProvider(lookup SessionLookup, service *Service) *SessionProvider {
	return &SessionProvider{lookup: lookup, service: service}
}

// CurrentUser はセッションのユーザーを返す。セッションが無ければ nil を返す。
func (p *SessionProvider) CurrentUser(ctx context.Context) (*api.Principal, error) {
	session, ok := p.lookup(ctx)
	if !ok || session == nil {
		return nil, nil
	}
	return &api.Principal{UserID: session.UserSub, Username: session.Username}, nil
}

// FetchAuthSession はアクセストークンを返す。期限切れの場合は更新してから返す。
func (p *SessionProvider) FetchAuthSession(ctx context.Context) (*api.AuthSession, error) {
	session, ok := p.lookup(ctx)
	if !ok || session == nil {
		return nil, nil
	}

	fresh, err := p.service.EnsureFresh(ctx, session)
	if err != nil {
		return nil, err
	}
	return &api.AuthSession{AccessToken: fresh.AccessToken, UserSub: fresh.UserSub}, nil
}

// compile-time interface check
var _ api.SessionProvider = (*SessionProvider)(nil)
