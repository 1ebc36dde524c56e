// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/creditsea/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 数据库查询计数
	DBQueriesTotal prometheus.Counter
	// 数据库查询耗时
	DBQueryDuration prometheus.Histogram

	// 业务指标
	ApplicationsSubmittedTotal prometheus.Counter
	StatusTransitionsTotal     *prometheus.CounterVec
	TransitionRejectionsTotal  prometheus.Counter
	ApplicationsPending        prometheus.Gauge
	ApplicationsVerified       prometheus.Gauge
	ApplicationsApproved       prometheus.Gauge
	ApplicationsRejected       prometheus.Gauge
	LoginsTotal                prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		DBQueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "db_queries_total",
			Help:      "Total database queries",
		}),
		DBQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ApplicationsSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "applications_submitted_total",
			Help:      "Total credit applications submitted",
		}),
		StatusTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "status_transitions_total",
			Help:      "Total successful application status transitions",
		}, []string{"from", "to"}),
		TransitionRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "transition_rejections_total",
			Help:      "Total status transition requests rejected by the lifecycle rules",
		}),
		ApplicationsPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "applications_pending",
			Help:      "Number of applications currently pending",
		}),
		ApplicationsVerified: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "applications_verified",
			Help:      "Number of applications currently verified",
		}),
		ApplicationsApproved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "applications_approved",
			Help:      "Number of applications approved",
		}),
		ApplicationsRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "applications_rejected",
			Help:      "Number of applications rejected",
		}),
		LoginsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "creditsea",
			Subsystem: serviceName,
			Name:      "logins_total",
			Help:      "Total successful logins",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueriesTotal,
		m.DBQueryDuration,
		m.ApplicationsSubmittedTotal,
		m.StatusTransitionsTotal,
		m.TransitionRejectionsTotal,
		m.ApplicationsPending,
		m.ApplicationsVerified,
		m.ApplicationsApproved,
		m.ApplicationsRejected,
		m.LoginsTotal,
	}

	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
