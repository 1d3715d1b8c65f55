package router

import (
	"net/http"
	"time"

	"svcman/internal/app"
	authMiddleware "svcman/internal/middleware"
	"svcman/internal/pkg/config"
	"svcman/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New 创建新的路由器
func New(cfg *config.Config, a *app.App) *chi.Mux {
	r := chi.NewRouter()

	// 全局中间件
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customLogger)
	r.Use(middleware.Recoverer)
	r.Use(customCORS)
	r.Use(middleware.Timeout(60 * time.Second))

	// 认证中间件
	r.Use(authMiddleware.BearerTokenAuth(cfg.Security))

	setupRoutes(r, a, cfg.Security.EnableAuth)
	return r
}

// setupRoutes 设置所有路由; 未启用认证时只注册只读接口
func setupRoutes(r *chi.Mux, a *app.App, mutating bool) {
	r.Route("/services", func(r chi.Router) {
		r.Get("/", a.ListServices)

		r.Route("/{unit}", func(r chi.Router) {
			r.Get("/status", a.GetStatus)
			r.Get("/logs", a.GetLogs)
			if mutating {
				r.Post("/{action}", a.Act)
			}
		})
	})

	// 健康检查
	r.Get("/health", a.HealthCheck)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
}

// customLogger 自定义日志中间件
func customLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info(r.Context(), "HTTP Response",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
			"status_code", ww.Status(),
			"bytes_written", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// customCORS 自定义CORS中间件; 跨域只开放只读方法
func customCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
