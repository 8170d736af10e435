// Package observability defines the Prometheus metrics exported on /metrics.
// Collectors are registered at init via promauto; the tracker and daemon
// update them as a side effect of normal operation.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Account Metrics ────────────────────────────────────────────────────────

// Accounts tracks the number of accounts currently tracked.
var Accounts = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "alphatrack",
	Subsystem: "accounts",
	Name:      "tracked",
	Help:      "Number of accounts currently tracked.",
})

// AccountsCreated tracks total accounts created.
var AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "alphatrack",
	Subsystem: "accounts",
	Name:      "created_total",
	Help:      "Total accounts created.",
})

// AccountsDeleted tracks total accounts deleted.
var AccountsDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "alphatrack",
	Subsystem: "accounts",
	Name:      "deleted_total",
	Help:      "Total accounts deleted.",
})

// ─── Score Metrics ──────────────────────────────────────────────────────────

// AirdropsClaimed tracks airdrop deductions by flow.
var AirdropsClaimed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "alphatrack",
	Subsystem: "score",
	Name:      "airdrops_claimed_total",
	Help:      "Total airdrops claimed, by flow (quick or confirmed).",
}, []string{"flow"})

// Adjustments tracks custom score adjustments.
var Adjustments = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "alphatrack",
	Subsystem: "score",
	Name:      "adjustments_total",
	Help:      "Total custom score adjustments applied.",
})

// ─── Cycle Metrics ──────────────────────────────────────────────────────────

// CycleRollovers tracks cycle advances by mode.
var CycleRollovers = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "alphatrack",
	Subsystem: "cycle",
	Name:      "rollovers_total",
	Help:      "Total cycle rollovers, by mode (manual or auto).",
}, []string{"mode"})

// CycleDay tracks the current day within the 15-day cycle.
var CycleDay = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "alphatrack",
	Subsystem: "cycle",
	Name:      "day",
	Help:      "Current day within the cycle.",
})

// CycleDaysUntilReset tracks the global reset countdown.
var CycleDaysUntilReset = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "alphatrack",
	Subsystem: "cycle",
	Name:      "days_until_reset",
	Help:      "Days until the next cycle reset.",
})
