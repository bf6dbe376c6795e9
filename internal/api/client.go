// Package api はバックエンドREST APIの型付きクライアントを提供する。
// クエリ結果はタグ付きでキャッシュされ、ミューテーション成功時に
// 該当タグのキャッシュを失効・再取得する。
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Principal はIdPで認証されたユーザーを表す。
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// AuthSession はIdPのセッション情報。AccessToken が空の場合は未認証として扱う。
type AuthSession struct {
	AccessToken string
	UserSub     string
}

// SessionProvider は現在のリクエストに紐づく認証情報を提供する。
// セッションが存在しない場合、FetchAuthSession は nil, nil を返す。
type SessionProvider interface {
	CurrentUser(ctx context.Context) (*Principal, error)
	FetchAuthSession(ctx context.Context) (*AuthSession, error)
}

// Recorder はクライアントの動作メトリクスを記録する。
type Recorder interface {
	RecordBackendRequest(endpoint string, status int, duration time.Duration)
	RecordCacheHit(endpoint string)
	RecordCacheMiss(endpoint string)
	RecordInvalidation(tag string)
}

type nopRecorder struct{}

func (nopRecorder) RecordBackendRequest(string, int, time.Duration) {}
func (nopRecorder) RecordCacheHit(string)                           {}
func (nopRecorder) RecordCacheMiss(string)                          {}
func (nopRecorder) RecordInvalidation(string)                       {}

// Options はClientの生成オプション。
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Sessions   SessionProvider
	Recorder   Recorder
	Logger     *slog.Logger
	HTTPClient *http.Client // テスト用に差し替え可能

	// CacheMaxAge は購読者のいないキャッシュ値を再利用する上限時間。0 なら無期限。
	CacheMaxAge time.Duration
}

// Client はキャッシュ付きのバックエンドAPIクライアント。
// 1つのClientが1つのキャッシュを持つ。セッションごとに Fork して使う。
type Client struct {
	transport *transport
	cache     *cache
	logger    *slog.Logger
	recorder  Recorder
	maxAge    time.Duration
}

// NewClient は新しいClientを生成する。
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Client{
		transport: newTransport(opts),
		cache:     newCache(opts.Recorder, opts.CacheMaxAge),
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		maxAge:    opts.CacheMaxAge,
	}
}

// Fork はHTTPトランスポートを共有し、空のキャッシュを持つClientを返す。
func (c *Client) Fork() *Client {
	return &Client{
		transport: c.transport,
		cache:     newCache(c.recorder, c.maxAge),
		logger:    c.logger,
		recorder:  c.recorder,
		maxAge:    c.maxAge,
	}
}

// Subscribe はクエリキーのキャッシュが再取得されるたびに fn を呼び出す。
// 戻り値の関数で購読を解除する。
func (c *Client) Subscribe(key string, fn func(any)) func() {
	return c.cache.subscribe(key, fn)
}

// Fresh はクエリキーに有効なキャッシュがあるかを返す。
func (c *Client) Fresh(key string) bool {
	return c.cache.fresh(key)
}

// request はバックエンドへの1リクエストを表す。
type request struct {
	method string
	path   string
	query  map[string]string
	body   any
}

// transport はrestyによるHTTP通信と応答の解釈を担う。
type transport struct {
	resty    *resty.Client
	sessions SessionProvider
	recorder Recorder
	logger   *slog.Logger
}

func newTransport(opts Options) *transport {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(opts.BaseURL).
		SetLogger(restyLogger{opts.Logger}).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	t := &transport{
		resty:    rc,
		sessions: opts.Sessions,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
	rc.OnBeforeRequest(t.prepareHeaders)
	return t
}

// prepareHeaders は各リクエストの前にアクセストークンを付与する。
// トークンが無い場合は認証ヘッダー無しで送信する。
func (t *transport) prepareHeaders(_ *resty.Client, r *resty.Request) error {
	r.SetHeader("X-Request-ID", uuid.NewString())

	if t.sessions == nil {
		return nil
	}
	session, err := t.sessions.FetchAuthSession(r.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch auth session: %w", err)
	}
	if session != nil && session.AccessToken != "" {
		r.SetAuthToken(session.AccessToken)
	}
	return nil
}

// do はリクエストを送信し、JSON応答を out にデコードする。
func (t *transport) do(ctx context.Context, endpoint string, req request, out any) error {
	start := time.Now()

	r := t.resty.R().SetContext(ctx)
	if req.body != nil {
		r.SetBody(req.body)
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}

	resp, err := r.Execute(req.method, req.path)
	if err != nil {
		t.recorder.RecordBackendRequest(endpoint, 0, time.Since(start))
		t.logger.Error("バックエンドへのリクエストに失敗しました",
			slog.String("endpoint", endpoint),
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("error", err.Error()),
		)
		return &RequestError{Method: req.method, Path: req.path, Err: err}
	}
	t.recorder.RecordBackendRequest(endpoint, resp.StatusCode(), time.Since(start))

	if !resp.IsSuccess() {
		t.logger.Warn("バックエンドがエラーステータスを返しました",
			slog.String("endpoint", endpoint),
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("http_status", resp.StatusCode()),
		)
		return &RequestError{
			Method: req.method,
			Path:   req.path,
			Status: resp.StatusCode(),
			Body:   resp.String(),
		}
	}

	if !strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		return unexpectedResponse(resp.String())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// restyLogger はrestyの内部ログをslogに流す。
type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error(fmt.Sprintf(format, v...), slog.String("component", "resty"))
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn(fmt.Sprintf(format, v...), slog.String("component", "resty"))
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug(fmt.Sprintf(format, v...), slog.String("component", "resty"))
}
