package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/planit-app/planit/internal/api"
	"github.com/planit-app/planit/internal/auth"
	"github.com/planit-app/planit/internal/config"
	"github.com/planit-app/planit/internal/database"
	"github.com/planit-app/planit/internal/eventform"
	"github.com/planit-app/planit/internal/handler"
	"github.com/planit-app/planit/internal/logger"
	"github.com/planit-app/planit/internal/metrics"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/repository"
	"github.com/planit-app/planit/internal/security"
	"github.com/planit-app/planit/internal/view"
	"github.com/planit-app/planit/internal/worker/cleanup"
)

const (
	dbPingTimeout     = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	poolSweepInterval = time.Minute
)

// Init はアプリケーションの初期化を行う。
// .env と環境変数からConfigを読み込み、設定に従って構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	if w == nil {
		w = os.Stdout
	}

	// 1. 設定読み込み前でもログを使えるようにする
	logger.SetupDefault(w)

	// 2. .env と環境変数から設定を読み込む
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定の書式とレベルでロガーを作り直す
	slog.SetDefault(logger.New(w, cfg.LogFormat, cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。w が nil の場合は標準出力を使う。
func Run(w io.Writer, args []string) error {
	if w == nil {
		w = os.Stdout
	}

	cmd, err := ParseCommand(args)
	if err != nil {
		Usage(w)
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// openDatabase はセッションストアへ接続し、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established")
	return db, nil
}

// clientRef はプールの生成前に認証サービスへ渡す参照。
// 認証サービスとAPIクライアントが互いを必要とするため、生成後に pool を設定する。
type clientRef struct {
	pool *api.Pool
}

func (r *clientRef) Evict(sessionID string) {
	if r.pool != nil {
		r.pool.Evict(sessionID)
	}
}

// serveDeps はHTTPサーバーの依存関係の組み立て結果。
type serveDeps struct {
	router  http.Handler
	pool    *api.Pool
	limiter *middleware.RateLimiter
}

// buildServeDeps はセッションストア以外の全依存関係をワイヤリングする。
func buildServeDeps(cfg *config.Config, sessions repository.SessionRepository, health handler.HealthChecker) *serveDeps {
	log := slog.Default()

	// 1. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 2. 認証サービスとセッション単位のAPIクライアント
	oauthProvider := auth.NewOIDCProvider(auth.OIDCConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		RedirectURL:  cfg.OAuthRedirectURL,
		Scopes:       cfg.OAuthScopes,
	})
	clients := &clientRef{}
	authService := auth.NewService(oauthProvider, sessions, clients,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)

	base := api.NewClient(api.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Sessions: auth.NewSessionProvider(middleware.SessionFromContext, authService),
		Recorder: collector,
		Logger:   log,

		CacheMaxAge: cfg.CacheMaxAge,
	})
	pool := api.NewPool(base, cfg.CacheIdleTTL)
	clients.pool = pool

	// 3. ルーター
	limiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitInvite),
	)
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		HealthChecker:     health,
		Metrics:           metrics.Handler(registry),
		SessionFinder:     sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: limiter,
		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		Clients:    pool,
		StateStore: authService,
		Views:      view.NewBuilder(security.NewSanitizer(), log),
		Reconciler: eventform.NewReconciler(cfg.DisplayTimezone),
	})

	return &serveDeps{router: router, pool: pool, limiter: limiter}
}

// runServe はAPIサーバーモードで起動する。
// ctx がキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	deps := buildServeDeps(cfg, repository.NewPostgresSessionRepo(db), db)
	defer deps.limiter.Stop()
	go deps.pool.Run(ctx, poolSweepInterval)

	// ストリーム接続はシャットダウン開始時に打ち切る
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      deps.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	server.RegisterOnShutdown(cancelBase)

	return serve(ctx, server)
}

// serve はサーバーを起動し、ctx の終了でシャットダウンする。
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションの定期削除を行い、/health と /metrics を公開する。
func runWorker(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	job := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), collector, slog.Default())

	mux := http.NewServeMux()
	mux.Handle("GET /health", handler.NewHealthHandler(db))
	mux.Handle("GET /metrics", metrics.Handler(registry))
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	go job.Start(ctx, cfg.SessionCleanupInterval)
	if err := serve(ctx, server); err != nil {
		return err
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用し、適用後のバージョンを記録する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, applied, err := database.Version(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("applied", applied),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
