// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, path string, statusCode int)
	RecordHTTPLatency(method, path string, duration time.Duration)
	RecordLogin(method string)
	RecordRegistration()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	logins        *prometheus.CounterVec
	registrations prometheus.Counter
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactman_http_requests_total",
			Help: "メソッド・パス・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "path", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactman_http_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contactman_logins_total",
			Help: "認証方式別のログイン成功数",
		}, []string{"method"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contactman_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.logins,
		c.registrations,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency はHTTPリクエストのレイテンシを記録する。
func (c *Collector) RecordHTTPLatency(method, path string, duration time.Duration) {
	c.httpLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordLogin はログイン成功を認証方式（password, google等）別に記録する。
func (c *Collector) RecordLogin(method string) {
	c.logins.WithLabelValues(method).Inc()
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// HTTPMiddleware はリクエスト数とレイテンシを記録するミドルウェアを返す。
// パスラベルのカーディナリティを抑えるため、normalizePathで
// ルーティングパターン（/contacts/{contactID}等）に正規化したパスを渡す。
func (c *Collector) HTTPMiddleware(normalizePath func(r *http.Request) string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if normalizePath != nil {
				path = normalizePath(r)
			}
			c.RecordHTTPRequest(r.Method, path, rec.status)
			c.RecordHTTPLatency(r.Method, path, time.Since(start))
		})
	}
}

// statusWriter はステータスコードを捕捉するResponseWriterラッパー。
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.status = code
		sw.written = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.status = http.StatusOK
		sw.written = true
	}
	return sw.ResponseWriter.Write(b)
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
