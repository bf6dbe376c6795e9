package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims はトークンから読み取るユーザー識別情報。
type Claims struct {
	Subject  string
	Username string
	Email    string
}

// usernameClaims はユーザー名として参照するクレーム名(優先順)。
var usernameClaims = []string{"cognito:username", "username", "preferred_username"}

// ParseClaims はJWTのクレームを署名検証せずに読み取る。
// 署名はトークンを受け取るバックエンドが検証する。
func ParseClaims(raw string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return Claims{}, fmt.Errorf("failed to parse token claims: %w", err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Email, _ = mc["email"].(string)
	for _, name := range usernameClaims {
		if v, ok := mc[name].(string); ok && v != "" {
			c.Username = v
			break
		}
	}
	if c.Username == "" {
		c.Username = c.Email
	}
	return c, nil
}
