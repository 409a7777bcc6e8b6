package sig

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AnatoleLucet/tui/sig/internal"
)

// MetricsConfig configures the Prometheus collectors of the runtime.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sig").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type MetricsOption func(*MetricsConfig)

func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "sig",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// EnableMetrics registers the runtime collectors and starts reporting to them.
// Calling it again replaces the previous collectors; use a fresh registry each time.
// If any collector fails to register, the ones already registered are removed
// and reporting is left unchanged.
func EnableMetrics(opts ...MetricsOption) error {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	m := &internal.Metrics{
		EffectRuns: counter("effect_runs_total", "Total number of effect executions"),
		EffectSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_skipped_total",
			Help:        "Effect runs skipped because the effect was stopped or already running",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),
		SignalWrites:   counter("signal_writes_total", "Total number of signal writes"),
		Flushes:        counter("flush_total", "Total number of runtime flushes"),
		FlushLimits:    counter("flush_limit_exceeded_total", "Flushes aborted by the iteration limit"),
		FlushCallbacks: counter("flush_callbacks_total", "Callbacks executed by runtime flushes"),
	}

	collectors := []prometheus.Collector{
		m.EffectRuns,
		m.EffectSkipped,
		m.SignalWrites,
		m.Flushes,
		m.FlushLimits,
		m.FlushCallbacks,
	}
	for i, c := range collectors {
		if err := config.Registry.Register(c); err != nil {
			// leave the registry as it was so a retry can succeed
			for _, registered := range collectors[:i] {
				config.Registry.Unregister(registered)
			}
			return err
		}
	}

	internal.SetMetrics(m)
	return nil
}

// DisableMetrics stops reporting. Registered collectors keep their last values.
func DisableMetrics() {
	internal.SetMetrics(nil)
}
