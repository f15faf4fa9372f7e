package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "figbridge_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "server"},
		},
		[]string{"date", "sha", "version"},
	)

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figbridge_rpc_requests_total",
			Help: "Number of JSON-RPC requests by method",
		},
		[]string{"method", "outcome"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "figbridge_rpc_duration_seconds",
			Help:    "JSON-RPC request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figbridge_tool_calls_total",
			Help: "Number of tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figbridge_upstream_requests_total",
			Help: "Figma API requests by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	upstreamRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "figbridge_upstream_retries_total",
			Help: "Figma API retries after rate limiting or timeout",
		},
		[]string{"endpoint"},
	)

	streamClients = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "figbridge_stream_clients",
			Help: "Connected keep-alive clients per transport",
		},
		[]string{"transport"},
	)

	savedDesigns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "figbridge_saved_designs_total",
			Help: "Design code bundles written to disk",
		},
	)
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, rpcRequests, rpcDuration, toolCalls, upstreamRequests, upstreamRetries, streamClients, savedDesigns)
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordRPCRequest increments the RPC request counter.
func RecordRPCRequest(method string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	rpcRequests.WithLabelValues(method, outcome).Inc()
}

// ObserveRPCDuration records the duration of one RPC request.
func ObserveRPCDuration(method string, d time.Duration) {
	rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordToolCall increments the tool invocation counter.
func RecordToolCall(tool, outcome string) {
	toolCalls.WithLabelValues(tool, outcome).Inc()
}

// RecordUpstreamRequest increments the upstream request counter.
func RecordUpstreamRequest(endpoint, status string) {
	upstreamRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordUpstreamRetry increments the upstream retry counter.
func RecordUpstreamRetry(endpoint string) {
	upstreamRetries.WithLabelValues(endpoint).Inc()
}

// StreamClientConnected tracks a new SSE or WebSocket client.
func StreamClientConnected(transport string) {
	streamClients.WithLabelValues(transport).Inc()
}

// StreamClientDisconnected removes a departed SSE or WebSocket client.
func StreamClientDisconnected(transport string) {
	streamClients.WithLabelValues(transport).Dec()
}

// RecordDesignSaved increments the saved design counter.
func RecordDesignSaved() {
	savedDesigns.Inc()
}
