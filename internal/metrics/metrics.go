package metrics

import "github.com/prometheus/client_golang/prometheus"

// ScheduleMetrics exposes counters/histograms for schedule data access and check-ins.
type ScheduleMetrics struct {
	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	fetchRetries prometheus.Counter
	cacheTotal   *prometheus.CounterVec
	checkInTotal *prometheus.CounterVec
	settledTotal *prometheus.CounterVec
}

func NewScheduleMetrics(reg prometheus.Registerer) *ScheduleMetrics {
	m := &ScheduleMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym",
			Subsystem: "schedule",
			Name:      "fetch_total",
			Help:      "Appointment fetches by data source and outcome",
		}, []string{"source", "status"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gym",
			Subsystem: "schedule",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of a single day fetch including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		fetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gym",
			Subsystem: "schedule",
			Name:      "fetch_retries_total",
			Help:      "Retried appointment fetch attempts",
		}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym",
			Subsystem: "schedule",
			Name:      "cache_total",
			Help:      "Day cache lookups by result",
		}, []string{"result"}),
		checkInTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym",
			Subsystem: "checkin",
			Name:      "total",
			Help:      "Check-in attempts by outcome",
		}, []string{"status"}),
		settledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gym",
			Subsystem: "schedule",
			Name:      "settled_total",
			Help:      "Past appointments moved out of SCHEDULED by the completion worker",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.fetchLatency, m.fetchRetries, m.cacheTotal, m.checkInTotal, m.settledTotal)
	return m
}

func (m *ScheduleMetrics) ObserveFetch(source, status string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(source, status).Inc()
	m.fetchLatency.WithLabelValues(source).Observe(seconds)
}

func (m *ScheduleMetrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.fetchRetries.Inc()
}

func (m *ScheduleMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

func (m *ScheduleMetrics) ObserveCheckIn(status string) {
	if m == nil {
		return
	}
	m.checkInTotal.WithLabelValues(status).Inc()
}

func (m *ScheduleMetrics) ObserveSettled(status string) {
	if m == nil {
		return
	}
	m.settledTotal.WithLabelValues(status).Inc()
}
