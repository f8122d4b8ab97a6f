// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 認証イベントとHTTPレスポンスステータスを記録する。
type Collector struct {
	registrations  prometheus.Counter
	logins         *prometheus.CounterVec
	resetRequested prometheus.Counter
	resetConsumed  prometheus.Counter
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeapi_registrations_total",
			Help: "アカウント登録の合計数",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeapi_logins_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		resetRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeapi_password_resets_requested_total",
			Help: "発行されたパスワード再設定トークンの合計数",
		}),
		resetConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeapi_password_resets_consumed_total",
			Help: "消費されたパスワード再設定トークンの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeapi_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.resetRequested,
		c.resetConsumed,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はアカウント登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン試行を結果別に記録する。
func (c *Collector) RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.logins.WithLabelValues(result).Inc()
}

// RecordResetRequested は再設定トークン発行を記録する。
func (c *Collector) RecordResetRequested() {
	c.resetRequested.Inc()
}

// RecordResetConsumed は再設定トークン消費を記録する。
func (c *Collector) RecordResetConsumed() {
	c.resetConsumed.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
