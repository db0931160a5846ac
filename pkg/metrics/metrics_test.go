package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistererRegistersAllCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)
	require.NotNil(t, m)

	m.OracleCalls.Inc()
	m.OracleAccepted.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestCountersAreIndependentInstances(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	m1 := NewWithRegisterer(reg1)
	m2 := NewWithRegisterer(reg2)

	m1.OracleCalls.Inc()
	m1.OracleCalls.Inc()

	assert.InDelta(t, 2, counterValue(t, m1.OracleCalls), 0.0001)
	assert.InDelta(t, 0, counterValue(t, m2.OracleCalls), 0.0001)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, c.Write(metric))
	return metric.GetCounter().GetValue()
}
