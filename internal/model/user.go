// Package model はドメインモデルを定義する。
package model

import "time"

// User はバックエンドが管理するユーザーレコードを表す。
type User struct {
	ID             ID      `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	CognitoID      string  `json:"cognitoId"`
	MembershipID   ID      `json:"membershipId"`
	CalendarID     *ID     `json:"calendarId,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// Session はBFFが保持するログインセッションを表す。
// IdPから取得したトークンとUI状態をまとめてPostgreSQLに永続化する。
type Session struct {
	ID           string
	UserSub      string // IdP上の subject (バックエンドの users/{sub} のキー)
	Username     string
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenExpiry  time.Time
	Data         []byte // UI状態(JSON)
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// TokenExpired はアクセストークンの有効期限が切れているかを返す。
// 有効期限が未設定の場合は期限切れとみなさない。
func (s *Session) TokenExpired(now time.Time) bool {
	if s.TokenExpiry.IsZero() {
		return false
	}
	return !now.Before(s.TokenExpiry)
}
