// Package metrics exports engine transform counts and latencies to
// Prometheus.
package metrics

import (
	"time"

	"github.com/njchilds90/termwise"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer implements termwise.Observer with a transform counter labelled
// by op and result, and a duration histogram labelled by op.
type Observer struct {
	transforms *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

var _ termwise.Observer = (*Observer)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		transforms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termwise_transforms_total",
				Help: "Equation transforms applied, by operation and result",
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "termwise_transform_duration_seconds",
				Help:    "Duration of equation transforms",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"op"},
		),
	}
	for _, c := range []prometheus.Collector{o.transforms, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) ObserveTransform(op string, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.transforms.WithLabelValues(op, result).Inc()
	o.duration.WithLabelValues(op).Observe(dur.Seconds())
}
