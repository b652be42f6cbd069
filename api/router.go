// Package api 通过 HTTP 暴露推荐服务。
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/tastekit/logging"
	"github.com/rushteam/tastekit/metrics"
)

// NewRouter 注册路由与中间件。timeout 为每个请求的处理时限，<=0 表示不限。
//
//	POST /recommend
//	POST /recommend/{category}
//	PUT  /users/{userID}/ratings/{item}
//	GET  /healthz
//	GET  /metrics
func NewRouter(h *Handler, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(metrics.Middleware)
		if timeout > 0 {
			r.Use(requestTimeout(timeout))
		}
		r.Post("/recommend", h.Recommend)
		r.Post("/recommend/{category}", h.Recommend)
		r.Put("/users/{userID}/ratings/{item}", h.PutRating)
	})
	return r
}

// requestTimeout 为请求上下文设置处理时限；超时由处理函数按 TIMEOUT 错误响应。
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
