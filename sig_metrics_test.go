package sig

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums a gathered counter family, optionally filtered by a label.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels ...string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}

	metrics:
		for _, m := range mf.GetMetric() {
			for i := 0; i+1 < len(labels); i += 2 {
				matched := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == labels[i] && lp.GetValue() == labels[i+1] {
						matched = true
					}
				}
				if !matched {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue()
		}
	}

	return total
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := []MetricsOption{
		WithRegistry(reg),
		WithNamespace("tui"),
		WithSubsystem("reactive"),
		WithConstLabels(prometheus.Labels{"app": "test"}),
	}
	require.NoError(t, EnableMetrics(opts...))
	defer DisableMetrics()

	count := NewSignal(0)
	e := NewEffect(func() {
		if v := count.Read(); v < 3 {
			count.Write(v + 1)
		}
	})

	count.Write(0)
	e.Stop()
	e.Run()

	rt := NewRuntime(WithMaxFlushIterations(2))
	var loop func()
	loop = func() { rt.ScheduleEffect(loop) }
	rt.ScheduleEffect(loop)
	assert.ErrorIs(t, rt.Flush(), ErrFlushLimit)

	assert.Equal(t, 2.0, counterValue(t, reg, "tui_reactive_effect_runs_total"))
	assert.Equal(t, 3.0, counterValue(t, reg, "tui_reactive_signal_writes_total"))
	assert.Equal(t, 2.0, counterValue(t, reg, "tui_reactive_effect_skipped_total", "reason", "reentrant"))
	assert.Equal(t, 1.0, counterValue(t, reg, "tui_reactive_effect_skipped_total", "reason", "inactive"))
	assert.Equal(t, 1.0, counterValue(t, reg, "tui_reactive_flush_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "tui_reactive_flush_limit_exceeded_total"))
	assert.Equal(t, 2.0, counterValue(t, reg, "tui_reactive_flush_callbacks_total", "app", "test"))

	t.Run("registering twice on the same registry fails", func(t *testing.T) {
		assert.Error(t, EnableMetrics(opts...))
	})
}

func TestEnableMetricsRetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := []MetricsOption{WithRegistry(reg), WithNamespace("retry")}
	defer DisableMetrics()

	conflict := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "retry",
		Name:      "flush_total",
		Help:      "Conflicting collector",
	})
	require.NoError(t, reg.Register(conflict))

	require.Error(t, EnableMetrics(opts...))

	// nothing from the failed attempt stays registered
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "retry_flush_total", families[0].GetName())

	require.True(t, reg.Unregister(conflict))
	require.NoError(t, EnableMetrics(opts...))

	NewSignal(0).Write(1)
	assert.Equal(t, 1.0, counterValue(t, reg, "retry_signal_writes_total"))
}
