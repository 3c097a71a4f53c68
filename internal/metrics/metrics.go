// Package metrics exposes Prometheus collectors for the bank.
//
// A nil *Collector is valid and records nothing, so the engine can run
// without a registry in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pokerbank"

// Collector holds every metric the server exports.
type Collector struct {
	requestsResolved    *prometheus.CounterVec
	checkoutTransitions *prometheus.CounterVec
	distributions       *prometheus.CounterVec
	invariantViolations *prometheus.CounterVec
	cashPool            *prometheus.GaugeVec
	creditPool          *prometheus.GaugeVec
	rpcDuration         *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		requestsResolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chip_requests_resolved_total",
			Help:      "Chip requests resolved, by outcome.",
		}, []string{"outcome"}),
		checkoutTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_transitions_total",
			Help:      "Checkout state transitions, by target state.",
		}, []string{"to"}),
		distributions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distributions_committed_total",
			Help:      "Committed player distributions, by source.",
		}, []string{"source"}),
		invariantViolations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Internal consistency faults. Any increase should page.",
		}, []string{"kind"}),
		cashPool: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cash_pool",
			Help:      "Cash held by the bank for a settling game.",
		}, []string{"game_id"}),
		creditPool: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "credit_pool",
			Help:      "Outstanding claimable credit for a settling game.",
		}, []string{"game_id"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

// RequestResolved counts a chip request resolution.
func (c *Collector) RequestResolved(outcome string) {
	if c == nil {
		return
	}
	c.requestsResolved.WithLabelValues(outcome).Inc()
}

// CheckoutTransition counts a move into state to.
func (c *Collector) CheckoutTransition(to string) {
	if c == nil {
		return
	}
	c.checkoutTransitions.WithLabelValues(to).Inc()
}

// DistributionCommitted counts committed player distributions.
func (c *Collector) DistributionCommitted(source string, players int) {
	if c == nil {
		return
	}
	c.distributions.WithLabelValues(source).Add(float64(players))
}

// InvariantViolation counts an internal consistency fault.
func (c *Collector) InvariantViolation(kind string) {
	if c == nil {
		return
	}
	c.invariantViolations.WithLabelValues(kind).Inc()
}

// SetPool publishes a game's pool counters.
func (c *Collector) SetPool(gameID string, cash, credit int64) {
	if c == nil {
		return
	}
	c.cashPool.WithLabelValues(gameID).Set(float64(cash))
	c.creditPool.WithLabelValues(gameID).Set(float64(credit))
}

// ForgetGame drops a closed game's gauges.
func (c *Collector) ForgetGame(gameID string) {
	if c == nil {
		return
	}
	c.cashPool.DeleteLabelValues(gameID)
	c.creditPool.DeleteLabelValues(gameID)
}

// ObserveRPC records one RPC's latency.
func (c *Collector) ObserveRPC(procedure, code string, seconds float64) {
	if c == nil {
		return
	}
	c.rpcDuration.WithLabelValues(procedure, code).Observe(seconds)
}
