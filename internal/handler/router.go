package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/planit-app/planit/internal/eventform"
	"github.com/planit-app/planit/internal/middleware"
	"github.com/planit-app/planit/internal/view"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger        *slog.Logger
	HealthChecker HealthChecker
	Metrics       http.Handler

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRF              middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// バックエンドアクセスと画面
	Clients         ClientSource
	StateStore      StateStore
	Views           *view.Builder
	Reconciler      *eventform.Reconciler
	StreamHeartbeat time.Duration
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CORS
//	  → (/api 保護ルートのみ) Session → CSRF → RateLimit(General)
//
// 認証ルート（/auth/*）、/health、/metrics、/api/about はセッション不要。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	uiHandler := NewUIHandler(deps.Clients, deps.StateStore, deps.Views)
	groupHandler := NewGroupHandler(deps.Clients, deps.StateStore, deps.Views, logger)
	eventHandler := NewEventHandler(deps.Clients, deps.Reconciler)
	recordHandler := NewRecordHandler(deps.Clients)
	streamHandler := NewStreamHandler(deps.Clients, deps.SessionFinder, deps.Views, logger, deps.StreamHeartbeat)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
	})

	r.Get("/api/about", About)
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF))

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/navbar", uiHandler.Navbar)
		r.Put("/api/ui", uiHandler.UpdateUI)
		r.Get("/api/stream", streamHandler.Groups)

		r.Route("/api/groups", func(r chi.Router) {
			r.Get("/", groupHandler.Page)
			r.Post("/", groupHandler.CreateGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", groupHandler.DeleteGroup)
				r.Put("/expanded", groupHandler.ToggleExpanded)
				r.Put("/add-member", groupHandler.ToggleAddMember)
				r.Get("/members", groupHandler.Members)
				// メンバー追加は招待専用のレート制限を追加で適用する
				r.With(deps.RateLimiter.InviteMiddleware()).Post("/members", groupHandler.AddMember)
				r.Delete("/members/{memberId}", groupHandler.RemoveMember)
			})
		})

		r.Route("/api/calendars", func(r chi.Router) {
			r.Get("/", eventHandler.ListCalendars)
			r.Post("/", eventHandler.CreateCalendar)
		})

		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", eventHandler.ListEvents)
			r.Post("/", eventHandler.CreateEvent)
			r.Get("/form", eventHandler.Form)
			r.Put("/{id}", eventHandler.UpdateEvent)
			r.Delete("/{id}", eventHandler.DeleteEvent)
		})

		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", recordHandler.ListNotifications)
			r.Post("/", recordHandler.CreateNotification)
		})
		r.Route("/api/templates", func(r chi.Router) {
			r.Get("/", recordHandler.ListTemplates)
			r.Post("/", recordHandler.CreateTemplate)
		})
		r.Route("/api/saving-plans", func(r chi.Router) {
			r.Get("/", recordHandler.ListSavingPlans)
			r.Post("/", recordHandler.CreateSavingPlan)
		})
	})

	return r
}
