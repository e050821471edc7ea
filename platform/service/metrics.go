package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "livescript"

type metrics struct {
	compiles *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		compiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "compile_total",
				Help:      "Total number of script compile attempts by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "compile_duration_seconds",
				Help:      "Script compile attempt duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
}

// register adds the collectors to reg, reusing collectors another service already
// registered there.
func (m *metrics) register(reg prometheus.Registerer) error {
	if err := reg.Register(m.compiles); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		m.compiles = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(m.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		m.duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return nil
}

func (m *metrics) observe(kind Kind, elapsed time.Duration) {
	label := kind.String()
	m.compiles.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}
