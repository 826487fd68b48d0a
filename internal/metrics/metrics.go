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
	RecordRegistration(result string)
	RecordLogin(mode string, result string)
	RecordGuardDecision(allowed bool)
	RecordHTTPStatus(statusCode int)
	RecordHashDuration(d time.Duration)
}

// 登録・ログイン結果のラベル値。
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultConflict   = "conflict"
	ResultAuthFailed = "auth_failed"
	ResultError      = "error"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	guard         *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	hashLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillboost_registrations_total",
			Help: "ユーザー登録の結果別の合計数",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillboost_logins_total",
			Help: "ログイン試行のモード・結果別の合計数",
		}, []string{"mode", "result"}),
		guard: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillboost_guard_decisions_total",
			Help: "ルートガードの判定結果別の合計数",
		}, []string{"decision"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillboost_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		hashLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillboost_password_hash_seconds",
			Help:    "bcryptハッシュ計算のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.guard,
		c.httpStatus,
		c.hashLatency,
	)

	return c
}

// RecordRegistration は登録結果を記録する。
func (c *Collector) RecordRegistration(result string) {
	c.registrations.WithLabelValues(result).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(mode string, result string) {
	c.logins.WithLabelValues(mode, result).Inc()
}

// RecordGuardDecision はルートガードの判定結果を記録する。
func (c *Collector) RecordGuardDecision(allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	c.guard.WithLabelValues(decision).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHashDuration はbcryptハッシュ計算のレイテンシを記録する。
func (c *Collector) RecordHashDuration(d time.Duration) {
	c.hashLatency.Observe(d.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
