package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for dialogue turns.
// All observe methods are safe on a nil receiver so callers can skip wiring
// metrics entirely.
type ConversationMetrics struct {
	turnsTotal      *prometheus.CounterVec
	extractionTotal *prometheus.CounterVec
	commitTotal     *prometheus.CounterVec
	emailTotal      *prometheus.CounterVec
	turnLatency     prometheus.Histogram
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total processed dialogue turns",
		}, []string{"kind"}),
		extractionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "conversation",
			Name:      "extraction_total",
			Help:      "Slot extraction passes by path (llm or heuristic)",
		}, []string{"path"}),
		commitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "conversation",
			Name:      "commit_total",
			Help:      "Commit workflow runs by save outcome",
		}, []string{"outcome"}),
		emailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "conversation",
			Name:      "confirmation_email_total",
			Help:      "Confirmation email attempts by status",
		}, []string{"status"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of full turn processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.extractionTotal, m.commitTotal, m.emailTotal, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(kind string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(kind).Inc()
}

func (m *ConversationMetrics) ObserveExtraction(path string) {
	if m == nil {
		return
	}
	m.extractionTotal.WithLabelValues(path).Inc()
}

func (m *ConversationMetrics) ObserveCommit(outcome string) {
	if m == nil {
		return
	}
	m.commitTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveEmail(sent bool) {
	if m == nil {
		return
	}
	status := "failed"
	if sent {
		status = "sent"
	}
	m.emailTotal.WithLabelValues(status).Inc()
}

func (m *ConversationMetrics) ObserveTurnLatency(seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.Observe(seconds)
}
