package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.IncCommands("success")
	m.IncCommands("success")
	m.IncCommands("failure")
	m.IncFailures("transport")
	m.AddSkipped(3)
	m.AddSkipped(0)
	m.SetPending(7)
	m.ObserveFetch(150 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("transport")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SkippedLinks))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.PendingCommand))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncCommands("success")
		m.IncFailures("transport")
		m.AddSkipped(1)
		m.SetPending(1)
		m.ObserveFetch(time.Second)
	})
}
