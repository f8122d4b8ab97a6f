package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/storeapi/internal/metrics"
	"github.com/hitoshi/storeapi/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// サービス
	AccountService AccountServiceInterface
	CatalogService CatalogServiceInterface
	ContactService ContactServiceInterface

	// 商品画像の静的配信ディレクトリ
	ImagesDir string

	// 監視
	DB       *sql.DB
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → RateLimit(General)
//
// 認証ミドルウェアはclaims/profileにのみ、ログイン専用レート制限はloginにのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	accountHandler := NewAccountHandler(deps.AccountService)
	productHandler := NewProductHandler(deps.CatalogService)
	contactHandler := NewContactHandler(deps.ContactService)

	requireAuth := middleware.NewAuthMiddleware(deps.TokenVerifier)

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// 商品画像の静的配信
	if deps.ImagesDir != "" {
		fileServer := http.StripPrefix("/images/products/", http.FileServer(http.Dir(deps.ImagesDir)))
		r.Get("/images/products/*", fileServer.ServeHTTP)
	}

	// --- APIルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// アカウント管理
		r.Route("/account", func(r chi.Router) {
			r.Post("/register", accountHandler.Register)

			// POST /account/login - 総当たり緩和のためログイン専用レート制限を追加
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", accountHandler.Login)

			r.Post("/forgotpassword/{email}", accountHandler.ForgotPassword)
			r.Post("/resetpassword", accountHandler.ResetPassword)

			// 認証が必要なルート
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/claims", accountHandler.Claims)
				r.Get("/profile", accountHandler.Profile)
			})
		})

		// 商品カタログ
		r.Route("/api/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/categories", productHandler.Categories)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Put("/", productHandler.Update)
				r.Delete("/", productHandler.Delete)
			})
		})

		// 問い合わせ管理
		r.Route("/api/contacts", func(r chi.Router) {
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)
			r.Get("/subjects", contactHandler.Subjects)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", contactHandler.Get)
				r.Put("/", contactHandler.Update)
				r.Delete("/", contactHandler.Delete)
			})
		})
	})

	return r
}

// newHealthHandler はDB疎通込みのヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"reason": "database unreachable",
				})
				return
			}
		}
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
