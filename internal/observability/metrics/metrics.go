package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoiceMetrics exposes counters/histograms for the voice-agent flows.
type VoiceMetrics struct {
	statusLookups   *prometheus.CounterVec
	webhookTotal    *prometheus.CounterVec
	memosImported   *prometheus.CounterVec
	smsTotal        *prometheus.CounterVec
	lookupLatency   *prometheus.HistogramVec
	activeCallGauge prometheus.Gauge
}

func NewVoiceMetrics(reg prometheus.Registerer) *VoiceMetrics {
	m := &VoiceMetrics{
		statusLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelbucks",
			Subsystem: "status",
			Name:      "lookup_total",
			Help:      "Total customer status lookups",
		}, []string{"method", "outcome"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelbucks",
			Subsystem: "livecall",
			Name:      "webhook_total",
			Help:      "Total live-call webhook events",
		}, []string{"event_type", "status"}),
		memosImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelbucks",
			Subsystem: "memos",
			Name:      "imported_total",
			Help:      "Total call memos imported from the voice agent",
		}, []string{"status"}),
		smsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelbucks",
			Subsystem: "notify",
			Name:      "sms_total",
			Help:      "Total outbound SMS sends",
		}, []string{"status"}),
		lookupLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "travelbucks",
			Subsystem: "status",
			Name:      "lookup_latency_seconds",
			Help:      "Latency of customer status resolution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		activeCallGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "travelbucks",
			Subsystem: "livecall",
			Name:      "active_calls",
			Help:      "Live calls currently tracked",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.statusLookups, m.webhookTotal, m.memosImported, m.smsTotal, m.lookupLatency, m.activeCallGauge)
	return m
}

func (m *VoiceMetrics) ObserveLookup(method, outcome string) {
	if m == nil {
		return
	}
	m.statusLookups.WithLabelValues(method, outcome).Inc()
}

func (m *VoiceMetrics) ObserveWebhook(eventType, status string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(eventType, status).Inc()
}

func (m *VoiceMetrics) ObserveMemoImport(status string) {
	if m == nil {
		return
	}
	m.memosImported.WithLabelValues(status).Inc()
}

func (m *VoiceMetrics) ObserveSMS(status string) {
	if m == nil {
		return
	}
	m.smsTotal.WithLabelValues(status).Inc()
}

func (m *VoiceMetrics) ObserveLookupLatency(method string, seconds float64) {
	if m == nil {
		return
	}
	m.lookupLatency.WithLabelValues(method).Observe(seconds)
}

func (m *VoiceMetrics) SetActiveCalls(n int) {
	if m == nil {
		return
	}
	m.activeCallGauge.Set(float64(n))
}
