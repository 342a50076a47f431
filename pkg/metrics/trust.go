package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Orders committed by the placement service
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders committed",
	})

	// Orders refused before any stock was touched, by reason
	OrdersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Orders rejected by validation, stock or blacklist gate",
	}, []string{"reason"})

	// Orders allowed through the gate with a WARNING or WATCH customer
	OrdersFlagged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_flagged_total",
		Help: "Orders placed by customers in WARNING or WATCH status",
	}, []string{"status"})

	ScoreMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trust_score_mutations_total",
		Help: "Trust score mutations by action",
	}, []string{"action"})

	// Award failures swallowed on order delivery
	ScoreAwardFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trust_score_award_failures_total",
		Help: "ORDER_COMPLETED awards that failed after the order was delivered",
	})

	ReturnsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_created_total",
		Help: "Return requests created by reason",
	}, []string{"reason"})

	ReturnTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "return_transitions_total",
		Help: "Return status transitions",
	}, []string{"from", "to"})
)

func Init() {
	prometheus.MustRegister(
		OrdersPlaced,
		OrdersRejected,
		OrdersFlagged,
		ScoreMutations,
		ScoreAwardFailures,
		ReturnsCreated,
		ReturnTransitions,
	)
}
