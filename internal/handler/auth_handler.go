package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/model"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthReturnToCookie = "oauth_return_to"
	oauthFlowMaxAge     = 10 * time.Minute
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string // フロントエンドのURL。サインイン・サインアウト後の戻り先
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はIdPとのサインインフローを扱うHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{service: service, config: config}
}

// cookie はフロー共通の属性を持つCookieを組み立てる。maxAge が負なら削除用。
// domain はセッションCookieのみに付け、フロー用Cookieはホスト限定とする。
func (h *AuthHandler) cookie(name, value string, maxAge int, withDomain bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if withDomain {
		c.Domain = h.config.CookieDomain
	}
	return c
}

// Login は認可コードフローを開始する。
// GET /auth/login?returnTo=/groups
// returnTo はフロントエンド内のパスのみ受け付け、それ以外は無視する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	flowAge := int(oauthFlowMaxAge.Seconds())
	http.SetCookie(w, h.cookie(oauthStateCookie, state, flowAge, false))
	if returnTo := r.URL.Query().Get("returnTo"); isLocalPath(returnTo) {
		http.SetCookie(w, h.cookie(oauthReturnToCookie, returnTo, flowAge, false))
	}

	http.Redirect(w, r, h.service.GetLoginURL(state), http.StatusTemporaryRedirect)
}

// Callback はIdPからのコールバックを処理し、セッションCookieを発行する。
// GET /auth/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := query.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("query_state", state))
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("state parameter does not match"))
		return
	}

	// フロー用Cookieは結果にかかわらず使い捨てる
	target := h.config.BaseURL
	if c, err := r.Cookie(oauthReturnToCookie); err == nil && isLocalPath(c.Value) {
		target = strings.TrimRight(h.config.BaseURL, "/") + c.Value
	}
	http.SetCookie(w, h.cookie(oauthStateCookie, "", -1, false))
	http.SetCookie(w, h.cookie(oauthReturnToCookie, "", -1, false))

	code := query.Get("code")
	if code == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("missing authorization code"))
		return
	}

	session, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	http.SetCookie(w, h.cookie(middleware.SessionCookieName, session.ID, h.config.SessionMaxAge, true))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// Logout はセッションを破棄してフロントエンドに戻す。
// サービス側の削除に失敗してもCookieは必ずクリアする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.service.Logout(r.Context(), c.Value); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, h.cookie(middleware.SessionCookieName, "", -1, true))
	http.Redirect(w, r, h.config.BaseURL, http.StatusSeeOther)
}

// isLocalPath はフロントエンド内の絶対パスかどうかを判定する。
// "//host" や "/\\host" のようなスキーム相対URLは拒否する。
func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || len(p) > 512 {
		return false
	}
	if len(p) > 1 && (p[1] == '/' || p[1] == '\\') {
		return false
	}
	return !strings.ContainsAny(p, "\r\n")
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
