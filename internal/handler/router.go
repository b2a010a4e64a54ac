package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/contactman/internal/metrics"
	"github.com/hitoshi/contactman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス。nilの場合は/metricsと計測を無効化する。
	MetricsCollector *metrics.Collector
	MetricsGatherer  prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 連絡先
	ContactService ContactServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → [Session → RateLimit]
//
// 認証ルート（/register, /login, /logout, /auth/callback）と
// /health、/metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.MetricsCollector != nil {
		r.Use(deps.MetricsCollector.HTTPMiddleware(routePattern))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	contactHandler := NewContactHandler(deps.ContactService)

	// --- 認証不要のルート ---

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Get("/login", authHandler.OAuthLogin) // OAuthフロー開始
	r.Post("/logout", authHandler.Logout)
	r.Get("/auth/callback", authHandler.Callback)

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.Middleware())

		r.Get("/me", authHandler.Me)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)

			r.Route("/{contactID}", func(r chi.Router) {
				r.Get("/", contactHandler.Get)
				r.Put("/", contactHandler.Update)
				r.Delete("/", contactHandler.Delete)
			})
		})
	})

	return r
}

// newHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
			})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}

// routePattern はメトリクスのパスラベル用にルーティングパターンを返す。
// パターンが取得できない場合は生のパスを返す。
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
