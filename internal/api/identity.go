package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/planit-app/planit/internal/model"
)

// AuthUser は認証済みユーザーの合成結果。
// IdPのプリンシパル、セッションの subject、バックエンドのユーザーレコードを含む。
type AuthUser struct {
	User        Principal  `json:"user"`
	UserSub     string     `json:"userSub"`
	UserDetails model.User `json:"userDetails"`
}

// GetAuthUser は現在の認証済みユーザーを解決する。
// 1. IdPからプリンシパルを取得
// 2. セッションを取得（無ければ ErrNoSession）
// 3. users/{sub} からユーザーレコードを取得
// いずれかが失敗した場合は部分的な結果を返さずエラーとする。
func (c *Client) GetAuthUser(ctx context.Context) (*AuthUser, error) {
	v, err := c.cache.load(ctx, KeyAuthUser, KeyAuthUser, nil, c.resolveAuthUser)
	if err != nil {
		return nil, err
	}
	return v.(*AuthUser), nil
}

func (c *Client) resolveAuthUser(ctx context.Context) (any, error) {
	sessions := c.transport.sessions
	if sessions == nil {
		return nil, ErrNoSession
	}

	// 1. プリンシパルを取得
	principal, err := sessions.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if principal == nil {
		return nil, ErrNoSession
	}

	// 2. セッションを取得
	session, err := sessions.FetchAuthSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auth session: %w", err)
	}
	if session == nil {
		return nil, ErrNoSession
	}

	// 3. バックエンドのユーザーレコードを取得
	var details model.User
	err = c.transport.do(ctx, KeyAuthUser, request{
		method: http.MethodGet,
		path:   "users/" + url.PathEscape(session.UserSub),
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("failed to get user details: %w", err)
	}

	return &AuthUser{
		User:        *principal,
		UserSub:     session.UserSub,
		UserDetails: details,
	}, nil
}
