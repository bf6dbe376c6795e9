package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// signToken はテスト用のJWTを生成する。署名鍵は読み取り側で検証されない。
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestParseClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   Claims
	}{
		{
			name:   "cognito username",
			claims: jwt.MapClaims{"sub": "sub-1", "cognito:username": "alice", "email": "alice@example.com"},
			want:   Claims{Subject: "sub-1", Username: "alice", Email: "alice@example.com"},
		},
		{
			name:   "plain username",
			claims: jwt.MapClaims{"sub": "sub-2", "username": "bob"},
			want:   Claims{Subject: "sub-2", Username: "bob"},
		},
		{
			name:   "preferred username",
			claims: jwt.MapClaims{"sub": "sub-3", "preferred_username": "carol"},
			want:   Claims{Subject: "sub-3", Username: "carol"},
		},
		{
			name:   "falls back to email",
			claims: jwt.MapClaims{"sub": "sub-4", "email": "dave@example.com"},
			want:   Claims{Subject: "sub-4", Username: "dave@example.com", Email: "dave@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClaims(signToken(t, tt.claims))
			if err != nil {
				t.Fatalf("ParseClaims() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseClaims() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseClaims_Malformed(t *testing.T) {
	if _, err := ParseClaims("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
