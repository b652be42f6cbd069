// Package metrics 定义推荐服务的 Prometheus 指标。
//
// 指标通过 promauto 注册到默认注册表，由 /metrics 路由暴露。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal 按路由模式、方法、状态码统计请求数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastekit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration 请求耗时分布
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastekit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// RecommendationsTotal 按策略与结果统计推荐次数
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tastekit_recommendations_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// CatalogLoadDuration 目录表格加载耗时
	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tastekit_catalog_load_duration_seconds",
			Help:    "Catalog table load duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"format", "outcome"},
	)

	// CatalogItems 最近一次成功加载的目录条目数
	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tastekit_catalog_items",
			Help: "Number of items in the most recently loaded catalog",
		},
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求。
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation 记录一次推荐结果，outcome 为 "ok" 或错误码。
func RecordRecommendation(strategy, outcome string) {
	RecommendationsTotal.WithLabelValues(strategy, outcome).Inc()
}

// RecordCatalogLoad 记录一次目录加载；只有成功时才更新条目数。
func RecordCatalogLoad(format, outcome string, duration time.Duration, items int) {
	CatalogLoadDuration.WithLabelValues(format, outcome).Observe(duration.Seconds())
	if outcome == "ok" {
		CatalogItems.Set(float64(items))
	}
}
