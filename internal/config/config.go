package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Backend API
	APIBaseURL string
	APITimeout time.Duration

	// OAuth (IdP)
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthRedirectURL  string
	OAuthScopes       []string

	// Session
	SessionMaxAge          int
	SessionCleanupInterval time.Duration

	// Query cache
	CacheIdleTTL time.Duration
	CacheMaxAge  time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitInvite  int

	// Event form
	DisplayTimezone *time.Location

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// LoadEnvFile は .env ファイルの内容を環境変数に読み込む。
// 既に設定済みの環境変数は上書きしない。ファイルが無い場合は何もしない。
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.APIBaseURL = required("API_BASE_URL")
	cfg.OAuthClientID = required("OAUTH_CLIENT_ID")
	cfg.OAuthAuthURL = required("OAUTH_AUTH_URL")
	cfg.OAuthTokenURL = required("OAUTH_TOKEN_URL")
	cfg.OAuthRedirectURL = required("OAUTH_REDIRECT_URL")
	cfg.BaseURL = required("BASE_URL")

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.OAuthClientSecret = getEnvString("OAUTH_CLIENT_SECRET", "")
	cfg.OAuthScopes = getEnvList("OAUTH_SCOPES", []string{"openid", "email", "profile"})
	cfg.APITimeout = getEnvDuration("API_TIMEOUT", 10*time.Second)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	cfg.CacheIdleTTL = getEnvDuration("CACHE_IDLE_TTL", 30*time.Minute)
	cfg.CacheMaxAge = getEnvDuration("CACHE_MAX_AGE", 60*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitInvite = getEnvInt("RATE_LIMIT_INVITE", 10)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "json")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	loc, err := time.LoadLocation(getEnvString("DISPLAY_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}
	cfg.DisplayTimezone = loc

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマまたは空白区切りの値をスライスとして返す。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return defaultVal
	}
	return fields
}
