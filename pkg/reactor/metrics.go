package reactor

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer records dispatch telemetry.
type Observer interface {
	ObserveReactor(name string, status Status, duration time.Duration)
	ObserveDispatch(kind string, duration time.Duration)
}

// PrometheusObserver exports dispatch metrics to Prometheus.
type PrometheusObserver struct {
	dispatchDuration *prometheus.HistogramVec
	reactorDuration  *prometheus.HistogramVec
	reactorOutcomes  *prometheus.CounterVec
}

// NewPrometheusObserver registers the dispatcher metrics on reg, reusing
// collectors that are already registered.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "reactorbot"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	dispatchDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_duration_seconds",
		Help:      "Latency of a full dispatch, from filtering to the last reactor settling.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event"}))
	if err != nil {
		return nil, err
	}
	reactorDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reactor_duration_seconds",
		Help:      "Latency of individual reactors.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"reactor"}))
	if err != nil {
		return nil, err
	}
	reactorOutcomes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reactor_outcomes_total",
		Help:      "Count of reactor outcomes by status.",
	}, []string{"reactor", "status"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusObserver{
		dispatchDuration: dispatchDuration,
		reactorDuration:  reactorDuration,
		reactorOutcomes:  reactorOutcomes,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register reactor metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) ObserveReactor(name string, status Status, duration time.Duration) {
	if o == nil {
		return
	}
	o.reactorOutcomes.WithLabelValues(name, string(status)).Inc()
	if status != StatusSkipped {
		o.reactorDuration.WithLabelValues(name).Observe(duration.Seconds())
	}
}

func (o *PrometheusObserver) ObserveDispatch(kind string, duration time.Duration) {
	if o == nil {
		return
	}
	o.dispatchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

type nopObserver struct{}

func (nopObserver) ObserveReactor(string, Status, time.Duration) {}

func (nopObserver) ObserveDispatch(string, time.Duration) {}
