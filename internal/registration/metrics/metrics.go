package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeValid    = "valid"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomePartial  = "partial"
)

// Metrics provides observability for passcode validation and registration.
type Metrics struct {
	PasscodeValidations  *prometheus.CounterVec
	Registrations        *prometheus.CounterVec
	PartialFailures      prometheus.Counter
	RegistrationDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PasscodeValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passgate_passcode_validations_total",
			Help: "Passcode validations by outcome",
		}, []string{"outcome"}),
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "passgate_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		PartialFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "passgate_registration_partial_failures_total",
			Help: "Accounts created whose profile could not be written",
		}),
		RegistrationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "passgate_registration_duration_seconds",
			Help:    "Duration of registration requests",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

func (m *Metrics) IncrementValidation(outcome string) {
	m.PasscodeValidations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRegistration(outcome string) {
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementPartialFailure() {
	m.PartialFailures.Inc()
}

// ObserveRegistration records time elapsed since start.
func (m *Metrics) ObserveRegistration(start time.Time) {
	m.RegistrationDuration.Observe(time.Since(start).Seconds())
}
