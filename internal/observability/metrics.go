package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
// All recording methods are nil-safe so tests can run without a registry.
type Metrics struct {
	ChatsCreated     *prometheus.CounterVec
	MessagesAppended *prometheus.CounterVec
	ChatsDeleted     prometheus.Counter
	Exports          *prometheus.CounterVec
	ResponderLatency prometheus.Histogram
	ResponderErrors  *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ChatsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chats_created_total",
			Help:      "Chats created, by mode.",
		}, []string{"mode"}),
		MessagesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_appended_total",
			Help:      "Messages appended to chats, by role.",
		}, []string{"role"}),
		ChatsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chats_deleted_total",
			Help:      "Chats hard-deleted by their owner.",
		}),
		Exports: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_exports_total",
			Help:      "Chat exports, by format.",
		}, []string{"format"}),
		ResponderLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "responder_request_seconds",
			Help:      "Latency of AI responder completion calls in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
		}),
		ResponderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responder_errors_total",
			Help:      "AI responder failures, by operation.",
		}, []string{"op"}),
	}
}

func (m *Metrics) ObserveChatCreated(mode string) {
	if m == nil {
		return
	}
	m.ChatsCreated.WithLabelValues(mode).Inc()
	m.MessagesAppended.WithLabelValues("user").Inc()
	m.MessagesAppended.WithLabelValues("assistant").Inc()
}

func (m *Metrics) ObserveMessagePair() {
	if m == nil {
		return
	}
	m.MessagesAppended.WithLabelValues("user").Inc()
	m.MessagesAppended.WithLabelValues("assistant").Inc()
}

func (m *Metrics) ObserveChatDeleted() {
	if m == nil {
		return
	}
	m.ChatsDeleted.Inc()
}

func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format).Inc()
}

func (m *Metrics) ObserveResponderLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.ResponderLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveResponderError(op string) {
	if m == nil {
		return
	}
	m.ResponderErrors.WithLabelValues(op).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
