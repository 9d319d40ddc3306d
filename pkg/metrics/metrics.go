// Package metrics exports session and synthesis counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "liveslides"

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	analysisRequests  *prometheus.CounterVec
	replies           *prometheus.CounterVec
	replyLatency      prometheus.Histogram
	events            *prometheus.CounterVec
	accumulatorErrors *prometheus.CounterVec
	sessions          *prometheus.CounterVec
	slides            prometheus.Gauge
	transcriptBytes   prometheus.Gauge
	viewers           prometheus.Gauge
	exports           *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		analysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "analysis_requests_total",
			Help:      "Synthesis checks by result (sent, insufficient, throttled, error).",
		}, []string{"result"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "replies_total",
			Help:      "Model replies by outcome.",
		}, []string{"outcome"}),
		replyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "reply_latency_seconds",
			Help:      "Time from analysis request to final reply text.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "events_total",
			Help:      "Server events received by kind.",
		}, []string{"kind"}),
		accumulatorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "accumulator_errors_total",
			Help:      "Events that referenced unknown responses, items or parts.",
		}, []string{"event"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Recording session state transitions.",
		}, []string{"to"}),
		slides: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "slides",
			Help:      "Slides in the current session.",
		}),
		transcriptBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "transcript_bytes",
			Help:      "Length of the accumulated transcript.",
		}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "viewer",
			Name:      "attached",
			Help:      "Presentation windows currently attached.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "documents_total",
			Help:      "Exported documents by format.",
		}, []string{"format"}),
	}

	reg.MustRegister(
		m.analysisRequests, m.replies, m.replyLatency, m.events, m.accumulatorErrors,
		m.sessions, m.slides, m.transcriptBytes, m.viewers, m.exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry for /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AnalysisRequest(result string) {
	if m == nil {
		return
	}
	m.analysisRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) Reply(outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.replies.WithLabelValues(outcome).Inc()
	if latency > 0 {
		m.replyLatency.Observe(latency.Seconds())
	}
}

func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) AccumulatorError(event string) {
	if m == nil {
		return
	}
	m.accumulatorErrors.WithLabelValues(event).Inc()
}

func (m *Metrics) Transition(to string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(to).Inc()
}

func (m *Metrics) SessionSize(slides, transcriptBytes int) {
	if m == nil {
		return
	}
	m.slides.Set(float64(slides))
	m.transcriptBytes.Set(float64(transcriptBytes))
}

func (m *Metrics) Viewers(n int) {
	if m == nil {
		return
	}
	m.viewers.Set(float64(n))
}

func (m *Metrics) Export(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}
