// Package metrics defines and registers all custom Prometheus metrics for the
// dispatch API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics self-register with the default Prometheus registry via promauto and
// are exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

// ── Estimation metrics ────────────────────────────────────────────────────────

// EstimatesTotal counts successful price quotes.
// Label:
//   - priority: the requested service tier (e.g. "STANDARD")
var EstimatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Total number of price estimates successfully computed.",
	},
	[]string{"priority"},
)

// EstimateErrorsTotal counts failed estimate attempts.
// Label:
//   - reason: short description of the failure (e.g. "no_zone_coverage", "routing_unavailable")
var EstimateErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimate_errors_total",
		Help:      "Total number of estimate requests that failed.",
	},
	[]string{"reason"},
)

// RouteCacheTotal counts route cache lookups.
// Label:
//   - result: "hit", "miss", or "error"
var RouteCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_cache_total",
		Help:      "Total number of route cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskTransitionsTotal counts successful task state transitions.
// Label:
//   - status: the new driver status entered (e.g. "ON_THE_WAY_TO_PICKUP")
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of task state transitions committed.",
	},
	[]string{"status"},
)

// TransitionErrorsTotal counts rejected transition attempts.
// Label:
//   - reason: short description (e.g. "invalid_transition", "unauthorized", "bad_confirmation_code")
var TransitionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transition_errors_total",
		Help:      "Total number of task transition attempts that were rejected.",
	},
	[]string{"reason"},
)

// OrdersCompletedTotal counts orders whose every task group reached DELIVERED.
var OrdersCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_completed_total",
		Help:      "Total number of orders completed via the delivery fan-in check.",
	},
)

// ── Payment queue metrics ─────────────────────────────────────────────────────

// PaymentEventsTotal counts processed payment-confirmation events.
// Label:
//   - result: "grouped", "duplicate", or "error"
var PaymentEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_events_total",
		Help:      "Total number of payment webhooks processed, by result.",
	},
	[]string{"result"},
)

// PaymentQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PaymentQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "payment_queue_depth",
		Help:      "Current number of payment events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
