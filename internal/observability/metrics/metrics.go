package metrics

import "github.com/prometheus/client_golang/prometheus"

// ActionMetrics exposes counters/histograms for dialogue action turns.
type ActionMetrics struct {
	actionsTotal *prometheus.CounterVec
	turnLatency  *prometheus.HistogramVec
	bookings     *prometheus.CounterVec
}

func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	m := &ActionMetrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tramites",
			Subsystem: "actions",
			Name:      "invocations_total",
			Help:      "Total dialogue action invocations",
		}, []string{"action", "outcome"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tramites",
			Subsystem: "actions",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a dialogue turn end to end",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tramites",
			Subsystem: "actions",
			Name:      "bookings_total",
			Help:      "Booking submissions by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionsTotal, m.turnLatency, m.bookings)
	return m
}

func (m *ActionMetrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *ActionMetrics) ObserveTurnLatency(action string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(action).Observe(seconds)
}

func (m *ActionMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

// DirectoryMetrics tracks calls from the action layer to the Directory Service.
type DirectoryMetrics struct {
	callsTotal  *prometheus.CounterVec
	callLatency *prometheus.HistogramVec
}

func NewDirectoryMetrics(reg prometheus.Registerer) *DirectoryMetrics {
	m := &DirectoryMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tramites",
			Subsystem: "directory",
			Name:      "calls_total",
			Help:      "Total Directory Service calls",
		}, []string{"operation", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tramites",
			Subsystem: "directory",
			Name:      "call_latency_seconds",
			Help:      "Latency of Directory Service calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency)
	return m
}

func (m *DirectoryMetrics) ObserveCall(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(operation, status).Inc()
	m.callLatency.WithLabelValues(operation).Observe(seconds)
}
