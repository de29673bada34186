package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 予約作成結果のラベル
const (
	ResultSuccess   = "success"
	ResultReplayed  = "replayed"
	ResultExhausted = "exhausted"
	ResultInvalid   = "invalid"
	ResultError     = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の総数（result: success, replayed, exhausted, invalid, error）
	BookingsTotal *prometheus.CounterVec

	// 予約の状態遷移数（transition: confirmed, cancelled, expired）
	BookingTransitionsTotal *prometheus.CounterVec

	// セッション単位のクリティカルセクションの所要時間（operation: create, confirm, cancel, expire）
	CriticalSectionDuration *prometheus.HistogramVec

	// 期限切れスイープの実行回数（status: success, skipped, error）
	SweepRunsTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking creation attempts",
			},
			[]string{"result"},
		),
		BookingTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_transitions_total",
				Help: "Total number of booking lifecycle transitions",
			},
			[]string{"transition"},
		),
		CriticalSectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "session_critical_section_duration_seconds",
				Help:    "Time spent inside a session's critical section",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		SweepRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_sweep_runs_total",
				Help: "Total number of expired booking sweep runs",
			},
			[]string{"status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.BookingTransitionsTotal,
		m.CriticalSectionDuration,
		m.SweepRunsTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
