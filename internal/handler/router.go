package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/skillboost/internal/metrics"
	"github.com/hitoshi/skillboost/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	GuardConfig       middleware.GuardConfig
	CORSAllowedOrigin string

	// メトリクス（nil許容）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 登録
	RegisterService RegisterServiceInterface

	// ヘルスチェック
	HealthChecker HealthChecker
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RouteGuard
//
// ルートガードは保護対象プレフィックス（既定では /dashboard 配下）のみを検査し、
// それ以外のパスは素通しする。後続ハンドラーの処理前に必ず完了する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewRouteGuardMiddleware(deps.TokenVerifier, deps.GuardConfig, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	registerHandler := NewRegisterHandler(deps.RegisterService, deps.Metrics)
	dashboardHandler := NewDashboardHandler()

	// 登録
	r.Post("/api/register", registerHandler.Register)

	// 認証（資格情報・OAuth両モード）
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		r.Get("/{provider}/login", authHandler.OAuthLogin)
		r.Get("/{provider}/callback", authHandler.OAuthCallback)
	})

	// 保護領域（ルートガードの保護対象プレフィックス配下）
	r.Get("/dashboard", dashboardHandler.Show)
	r.Get("/dashboard/*", dashboardHandler.Show)

	// 運用エンドポイント
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}
