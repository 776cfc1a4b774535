package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected      *prometheus.CounterVec
	StoreErrors   prometheus.Counter
	FallbackState prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passgate_ratelimit_rejected_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}, []string{"route"}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "passgate_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed against the primary bucket store",
		}),
		FallbackState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "passgate_ratelimit_fallback_active",
			Help: "1 while the limiter serves from the in-process fallback store",
		}),
	}
}

func (m *Metrics) IncrementRejected(route string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(route).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	if m == nil {
		return
	}
	m.StoreErrors.Inc()
}

func (m *Metrics) SetFallbackActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.FallbackState.Set(1)
		return
	}
	m.FallbackState.Set(0)
}
