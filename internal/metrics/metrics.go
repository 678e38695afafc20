package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 拦截业务指标
type AppMetrics struct {
	ConnectionsOpen        prometheus.Gauge
	PacketsIntercepted     *prometheus.CounterVec // labels: direction
	PacketsCancelled       *prometheus.CounterVec // labels: direction
	CompressionCorrections prometheus.Counter
	BytesRelayed           *prometheus.CounterVec // labels: direction
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		ConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "proxy_connections_open",
			Help: "Current number of proxied connections.",
		}),
		PacketsIntercepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intercept_packets_total",
			Help: "Frames dispatched to packet listeners.",
		}, []string{"direction"}),
		PacketsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intercept_cancelled_total",
			Help: "Frames dropped because a listener cancelled the event.",
		}, []string{"direction"}),
		CompressionCorrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intercept_compression_corrections_total",
			Help: "One-time compression order corrections performed.",
		}),
		BytesRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_bytes_relayed_total",
			Help: "Frame body bytes relayed between client and backend.",
		}, []string{"direction"}),
	}
	reg.MustRegister(m.ConnectionsOpen, m.PacketsIntercepted, m.PacketsCancelled, m.CompressionCorrections, m.BytesRelayed)
	return m
}
