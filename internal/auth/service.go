// Package auth はIdPによる認証フロー、セッション管理、トークン更新を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/planit-app/planit/internal/model"
	"github.com/planit-app/planit/internal/repository"
)

// OAuthProvider はIdPのインターフェース。
type OAuthProvider interface {
	// GetLoginURL は認可エンドポイントのURLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換する。
	ExchangeCode(ctx context.Context, code string) (*TokenSet, error)
	// Refresh はリフレッシュトークンでトークンを更新する。
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
}

// ClientEvictor はサインアウト時にセッション用APIクライアントを破棄する。
type ClientEvictor interface {
	Evict(sessionID string)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	sessionRepo repository.SessionRepository
	clients     ClientEvictor
	config      ServiceConfig
	now         func() time.Time

	flight    singleflight.Group
	refreshed sync.Map // sessionID -> *model.Session
}

// NewService はServiceを生成する。clients は nil でもよい。
func NewService(
	oauth OAuthProvider,
	sessionRepo repository.SessionRepository,
	clients ClientEvictor,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		sessionRepo: sessionRepo,
		clients:     clients,
		config:      config,
		now:         time.Now,
	}
}

// GetLoginURL は認可エンドポイントのURLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback は認可コードをトークンに交換し、セッションを発行する。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	// 1. 認可コードをトークンに交換
	tokens, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. セッションを発行
	session, err := s.createSession(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user signed in",
		slog.String("user_sub", session.UserSub),
		slog.String("username", session.Username),
	)
	return session, nil
}

// Logout はセッションを破棄し、セッションのキャッシュを捨てる。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.refreshed.Delete(sessionID)
	if s.clients != nil {
		s.clients.Evict(sessionID)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// EnsureFresh はアクセストークンが期限切れであれば更新したセッションを返す。
// 同じセッションの同時更新は1回にまとめる。
// リフレッシュトークンが無い場合は期限切れのまま返し、バックエンドの判定に任せる。
func (s *Service) EnsureFresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	now := s.now()
	if !session.TokenExpired(now) {
		// DBに更新が反映済みなので保持していた結果は不要
		s.refreshed.Delete(session.ID)
		return session, nil
	}
	if v, ok := s.refreshed.Load(session.ID); ok {
		if r := v.(*model.Session); !r.TokenExpired(now) {
			return r, nil
		}
	}
	if session.RefreshToken == "" {
		return session, nil
	}

	v, err, _ := s.flight.Do(session.ID, func() (any, error) {
		return s.refresh(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Session), nil
}

func (s *Service) refresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	tokens, err := s.oauth.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh tokens: %w", err)
	}

	updated := *session
	updated.AccessToken = tokens.AccessToken
	updated.TokenExpiry = tokens.Expiry
	if tokens.RefreshToken != "" {
		updated.RefreshToken = tokens.RefreshToken
	}
	if tokens.IDToken != "" {
		updated.IDToken = tokens.IDToken
	}

	err = s.sessionRepo.UpdateTokens(ctx, session.ID, repository.TokenUpdate{
		AccessToken:  updated.AccessToken,
		RefreshToken: updated.RefreshToken,
		IDToken:      updated.IDToken,
		TokenExpiry:  updated.TokenExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	s.refreshed.Store(session.ID, &updated)
	slog.Info("session tokens refreshed", slog.String("user_sub", session.UserSub))
	return &updated, nil
}

// SaveData はセッションに保存するUI状態を更新する。
func (s *Service) SaveData(ctx context.Context, sessionID string, data []byte) error {
	if err := s.sessionRepo.UpdateData(ctx, sessionID, data); err != nil {
		return fmt.Errorf("failed to save session data: %w", err)
	}
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, tokens *TokenSet) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:           sessionID,
		UserSub:      tokens.Claims.Subject,
		Username:     tokens.Claims.Username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		TokenExpiry:  tokens.Expiry,
		Data:         []byte("{}"),
		ExpiresAt:    now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:    now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
