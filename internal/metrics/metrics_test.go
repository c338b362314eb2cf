package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestScheduleMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewScheduleMetrics(reg)

	m.ObserveFetch("memory", "ok", 0.5)
	m.ObserveFetch("memory", "error", 0.1)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveRetry()
	m.ObserveCheckIn("success")
	m.ObserveSettled("COMPLETED")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("memory", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchRetries))
}

func TestScheduleMetricsNilSafe(t *testing.T) {
	var m *ScheduleMetrics
	m.ObserveFetch("memory", "ok", 0.1)
	m.ObserveRetry()
	m.ObserveCache(true)
	m.ObserveCheckIn("error")
	m.ObserveSettled("CANCELLED")
}
