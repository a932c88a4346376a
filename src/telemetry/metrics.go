// Package telemetry exposes the Prometheus metrics of a node.
//
// Each node owns its own Metrics and registry, so several nodes running in the
// same process, as in tests and simulations, never share counters.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rumor"

// Reasons for which an inbound message is dropped.
const (
	DropUnknownPeer = "unknown_peer"
	DropUnroutable  = "unroutable"
	DropUnexpected  = "unexpected"
)

// Metrics groups the collectors of one node.
type Metrics struct {
	Registry *prometheus.Registry

	Received         *prometheus.CounterVec
	GossipSent       prometheus.Counter
	GossipValuesSent prometheus.Counter
	Dropped          *prometheus.CounterVec
	StoreValues      prometheus.Gauge
	Neighbors        prometheus.Gauge
	HandleDuration   *prometheus.HistogramVec

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	buildInfo *prometheus.GaugeVec
	startTime time.Time
}

// NewMetrics creates the collectors and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry:  prometheus.NewRegistry(),
		startTime: time.Now(),

		Received: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_received_total",
				Help:      "Inbound messages, by body type.",
			},
			[]string{"type"},
		),

		GossipSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gossip_sent_total",
				Help:      "Gossip messages sent to neighbors.",
			},
		),

		GossipValuesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gossip_values_sent_total",
				Help:      "Values carried by the gossip messages sent to neighbors.",
			},
		),

		Dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_dropped_total",
				Help:      "Messages ignored or not delivered, by reason.",
			},
			[]string{"reason"},
		),

		StoreValues: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_values",
				Help:      "Number of distinct values held by the node.",
			},
		),

		Neighbors: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "neighbors",
				Help:      "Number of neighbors assigned to the node.",
			},
		),

		HandleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handle_duration_seconds",
				Help:      "Time spent processing one inbound message.",
				// 10µs .. ~160ms
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
			},
			[]string{"type"},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests to the service.",
			},
			[]string{"op", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests to the service.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 13),
			},
			[]string{"op"},
		),

		buildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build info (constant 1, labeled by version and git_sha).",
			},
			[]string{"version", "git_sha"},
		),
	}

	uptime := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Node uptime in seconds.",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	m.Registry.MustRegister(
		m.Received,
		m.GossipSent,
		m.GossipValuesSent,
		m.Dropped,
		m.StoreValues,
		m.Neighbors,
		m.HandleDuration,
		m.RequestsTotal,
		m.RequestDuration,
		m.buildInfo,
		uptime,
	)

	return m
}

// ObserveHandle records a message of type t, processed since start.
func (m *Metrics) ObserveHandle(t string, start time.Time) {
	m.Received.WithLabelValues(t).Inc()
	m.HandleDuration.WithLabelValues(t).Observe(time.Since(start).Seconds())
}

// ObserveGossip records a gossip message carrying n values.
func (m *Metrics) ObserveGossip(n int) {
	m.GossipSent.Inc()
	m.GossipValuesSent.Add(float64(n))
}

// Drop records a message dropped for reason.
func (m *Metrics) Drop(reason string) {
	m.Dropped.WithLabelValues(reason).Inc()
}

// SetBuildInfo should be called once at startup.
func (m *Metrics) SetBuildInfo(version, gitSHA string) {
	m.buildInfo.WithLabelValues(version, gitSHA).Set(1)
}

// Handler exposes the registry. Mount it with mux.Handle("/metrics", m.Handler()).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record metrics under the provided "op" label.
func (m *Metrics) Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		m.RequestsTotal.WithLabelValues(op, class).Inc()
		m.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
