package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"svcman/internal/pkg/config"
	"svcman/internal/pkg/logger"
)

// BearerTokenAuth Bearer Token 认证中间件; 未启用认证时直接放行
func BearerTokenAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 跳过健康检查和ping接口
			if !cfg.EnableAuth || r.URL.Path == "/health" || r.URL.Path == "/ping" {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.APIKey == "" {
				logger.Error(r.Context(), "API key is empty while auth is enabled")
				respondWithError(w, http.StatusInternalServerError, "Authentication not properly configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn(r.Context(), "Missing Authorization header", "path", r.URL.Path, "method", r.Method)
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			const bearerPrefix = "Bearer "
			token, found := strings.CutPrefix(authHeader, bearerPrefix)
			if !found || token == "" {
				logger.Warn(r.Context(), "Invalid Authorization header format", "path", r.URL.Path, "method", r.Method)
				respondWithError(w, http.StatusUnauthorized, "Authorization header must be Bearer token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.APIKey)) != 1 {
				logger.Warn(r.Context(), "Invalid Bearer token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				respondWithError(w, http.StatusUnauthorized, "Invalid Bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// respondWithError 返回错误响应
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"code": -1, "msg": "error", "data": "` + message + `"}`))
}
