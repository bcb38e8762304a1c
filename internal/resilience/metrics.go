package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsSubsystem = "remote"

// Collaborator metrics are labelled by the breaker target, e.g. "stock" or "payment".
var (
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "checkout",
		Subsystem: metricsSubsystem,
		Name:      "breaker_state",
		Help:      "Breaker state per collaborator (0 closed, 1 open, 2 half-open).",
	}, []string{"target"})

	BreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: metricsSubsystem,
		Name:      "breaker_transitions_total",
		Help:      "Breaker state changes per collaborator.",
	}, []string{"target", "from", "to"})

	BreakerOpenedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: metricsSubsystem,
		Name:      "breaker_opened_total",
		Help:      "Times a collaborator breaker tripped open.",
	}, []string{"target"})

	OutboundRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: metricsSubsystem,
		Name:      "requests_total",
		Help:      "Calls to stock and payment collaborators by result.",
	}, []string{"target", "result"})
)
