package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var defaultScopes = []string{"openid", "email", "profile"}

// ErrNoRefreshToken はリフレッシュトークンを持たないセッションを更新しようとした場合のエラー。
var ErrNoRefreshToken = errors.New("no refresh token")

// OIDCConfig はIdP(OAuth 2.0 / OpenID Connect)の設定。
type OIDCConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scopes       []string

	// テスト用に差し替え可能なHTTPクライアント
	HTTPClient *http.Client
}

// TokenSet はIdPから取得したトークン群とクレームを表す。
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
	Claims       Claims
}

// OIDCProvider は認可コードフローとトークン更新を提供する。
type OIDCProvider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOIDCProvider はOIDCProviderを生成する。
func NewOIDCProvider(cfg OIDCConfig) *OIDCProvider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	return &OIDCProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient: cfg.HTTPClient,
	}
}

// GetLoginURL は認可エンドポイントのURLを生成する。
func (p *OIDCProvider) GetLoginURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode は認可コードをトークンに交換し、クレームを読み取る。
func (p *OIDCProvider) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	token, err := p.config.Exchange(p.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	set, err := newTokenSet(token)
	if err != nil {
		return nil, err
	}
	if set.Claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject claim")
	}
	return set, nil
}

// Refresh はリフレッシュトークンでアクセストークンを更新する。
// IdPが新しいリフレッシュトークンを返さない場合は元のトークンを引き継ぐ。
func (p *OIDCProvider) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	// 期限切れのトークンを渡してTokenSourceに更新させる
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	token, err := p.config.TokenSource(p.withClient(ctx), expired).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	return newTokenSet(token)
}

func (p *OIDCProvider) withClient(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// newTokenSet はoauth2.Tokenからクレームを読み取ってTokenSetを組み立てる。
// IDトークンがあればそちらを優先し、無ければアクセストークンから読む。
func newTokenSet(token *oauth2.Token) (*TokenSet, error) {
	set := &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		set.IDToken = idToken
	}

	source := set.IDToken
	if source == "" {
		source = set.AccessToken
	}
	claims, err := ParseClaims(source)
	if err != nil {
		return nil, err
	}
	set.Claims = claims
	return set, nil
}
