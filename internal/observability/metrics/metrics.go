package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "turbothrill"

// BotMetrics exposes counters/histograms for the WhatsApp bot flow. A nil
// *BotMetrics is valid and records nothing.
type BotMetrics struct {
	inboundTotal   *prometheus.CounterVec
	repliesTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	duplicateTotal *prometheus.CounterVec
	leadTotal      *prometheus.CounterVec
	taskTotal      *prometheus.CounterVec
	llmLatency     *prometheus.HistogramVec
	webhookLatency *prometheus.HistogramVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whatsapp",
			Name:      "inbound_messages_total",
			Help:      "Inbound WhatsApp messages by handling status",
		}, []string{"status"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "replies_total",
			Help:      "Reply outcomes by label",
		}, []string{"label"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whatsapp",
			Name:      "outbound_total",
			Help:      "Outbound WhatsApp sends by status",
		}, []string{"status"}),
		duplicateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "duplicates_total",
			Help:      "Suppressed duplicate messages by kind",
		}, []string{"kind"}),
		leadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "forward_total",
			Help:      "Lead forwards by sink and status",
		}, []string{"sink", "status"}),
		taskTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "completed_total",
			Help:      "Non-critical background tasks by name and status",
		}, []string{"task", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generative",
			Name:      "completion_latency_seconds",
			Help:      "Latency of generative completions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.inboundTotal,
		m.repliesTotal,
		m.outboundTotal,
		m.duplicateTotal,
		m.leadTotal,
		m.taskTotal,
		m.llmLatency,
		m.webhookLatency,
	)
	return m
}

func (m *BotMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveReply(label string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(label).Inc()
}

func (m *BotMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveDuplicate(kind string) {
	if m == nil {
		return
	}
	m.duplicateTotal.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) ObserveLead(sink string, err error) {
	if m == nil {
		return
	}
	m.leadTotal.WithLabelValues(sink, statusOf(err)).Inc()
}

func (m *BotMetrics) ObserveTask(name, status string) {
	if m == nil {
		return
	}
	m.taskTotal.WithLabelValues(name, status).Inc()
}

func (m *BotMetrics) ObserveCompletion(seconds float64, err error) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(statusOf(err)).Observe(seconds)
}

func (m *BotMetrics) ObserveWebhookLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(method).Observe(seconds)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
