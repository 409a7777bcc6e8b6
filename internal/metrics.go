package internal

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SkipReentrant = "reentrant"
	SkipInactive  = "inactive"
)

// Metrics are the collectors the runtime reports to. Nil until metrics are enabled.
type Metrics struct {
	EffectRuns     prometheus.Counter
	EffectSkipped  *prometheus.CounterVec // by reason
	SignalWrites   prometheus.Counter
	Flushes        prometheus.Counter
	FlushLimits    prometheus.Counter
	FlushCallbacks prometheus.Counter
}

var metrics atomic.Pointer[Metrics]

func SetMetrics(m *Metrics) {
	metrics.Store(m)
}

func observeEffectRun() {
	if m := metrics.Load(); m != nil {
		m.EffectRuns.Inc()
	}
}

func observeEffectSkipped(reason string) {
	if m := metrics.Load(); m != nil {
		m.EffectSkipped.WithLabelValues(reason).Inc()
	}
}

func observeSignalWrite() {
	if m := metrics.Load(); m != nil {
		m.SignalWrites.Inc()
	}
}

func observeFlush() {
	if m := metrics.Load(); m != nil {
		m.Flushes.Inc()
	}
}

func observeFlushLimit() {
	if m := metrics.Load(); m != nil {
		m.FlushLimits.Inc()
	}
}

func observeFlushCallback() {
	if m := metrics.Load(); m != nil {
		m.FlushCallbacks.Inc()
	}
}
