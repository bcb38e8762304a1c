package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutOutcomeTotal counts finished checkout attempts by terminal state.
	CheckoutOutcomeTotal *prometheus.CounterVec
	// CheckoutCompensationTotal counts payment cancellations issued after a failed stock debit.
	CheckoutCompensationTotal *prometheus.CounterVec
	// CheckoutAmount records the priced total of checkouts that reached payment.
	CheckoutAmount prometheus.Histogram
	// CheckoutStepDuration records collaborator call latency per checkout step in milliseconds.
	CheckoutStepDuration *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers checkout Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutOutcomeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_outcome_total",
			Help:      "Count of checkout attempts by terminal state.",
		}, []string{"state"})
		CheckoutCompensationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_compensation_total",
			Help:      "Count of compensating payment cancellations by result.",
		}, []string{"result"})
		CheckoutAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_amount",
			Help:      "Priced checkout totals sent for authorization.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		})
		CheckoutStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_step_duration_ms",
			Help:      "Latency of checkout collaborator calls in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"step"})

		CheckoutOutcomeTotal = register(reg, CheckoutOutcomeTotal)
		CheckoutCompensationTotal = register(reg, CheckoutCompensationTotal)
		CheckoutAmount = register(reg, CheckoutAmount)
		CheckoutStepDuration = register(reg, CheckoutStepDuration)
	})
}
