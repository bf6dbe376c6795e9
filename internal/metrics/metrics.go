// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/planit-app/planit/internal/api"
)

// compile-time interface check
var _ api.Recorder = (*Collector)(nil)

// Collector はPrometheusメトリクスを収集する実装。
// api.Recorder としてAPIクライアントに渡す。
type Collector struct {
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	invalidations   *prometheus.CounterVec
	sessionsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planit_backend_requests_total",
			Help: "バックエンドAPIへのリクエスト数（エンドポイント・ステータス別）",
		}, []string{"endpoint", "status_code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planit_backend_request_duration_seconds",
			Help:    "バックエンドAPIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planit_cache_hits_total",
			Help: "クエリキャッシュのヒット数",
		}, []string{"endpoint"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planit_cache_misses_total",
			Help: "クエリキャッシュのミス数",
		}, []string{"endpoint"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planit_cache_invalidations_total",
			Help: "タグ別のキャッシュ無効化数",
		}, []string{"tag"}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planit_sessions_cleaned_total",
			Help: "クリーンアップで削除された期限切れセッション数",
		}),
	}

	reg.MustRegister(
		c.backendRequests,
		c.backendLatency,
		c.cacheHits,
		c.cacheMisses,
		c.invalidations,
		c.sessionsCleaned,
	)

	return c
}

// RecordBackendRequest はバックエンドAPIへのリクエスト結果を記録する。
// 通信エラーの場合 status は0となる。
func (c *Collector) RecordBackendRequest(endpoint string, status int, duration time.Duration) {
	c.backendRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.backendLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(endpoint string) {
	c.cacheHits.WithLabelValues(endpoint).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(endpoint string) {
	c.cacheMisses.WithLabelValues(endpoint).Inc()
}

// RecordInvalidation はタグの無効化を記録する。
func (c *Collector) RecordInvalidation(tag string) {
	c.invalidations.WithLabelValues(tag).Inc()
}

// RecordSessionsCleaned は削除した期限切れセッション数を記録する。
func (c *Collector) RecordSessionsCleaned(count int64) {
	c.sessionsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
