/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Prometheus counters for oracle and search activity. Registered once at
process start and updated synchronously from the search loop.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter the repair engine exposes.
type Metrics struct {
	OracleCalls      prometheus.Counter
	OracleAccepted   prometheus.Counter
	OracleRejected   prometheus.Counter
	OracleIncomplete prometheus.Counter
	OracleTimeouts   prometheus.Counter
	DuplicatesSkipped prometheus.Counter

	SelectionsGenerated prometheus.Counter
	SelectionsPruned    prometheus.Counter
}

// New creates and registers the metric set against the default Prometheus registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers the metric set against reg. Tests that need
// more than one Metrics instance in the same process should pass a fresh
// prometheus.NewRegistry() to avoid duplicate-registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OracleCalls: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_oracle_calls_total",
			Help: "Total number of oracle subprocess invocations.",
		}),
		OracleAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_oracle_accepted_total",
			Help: "Number of oracle calls that returned exit code 0.",
		}),
		OracleRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_oracle_rejected_total",
			Help: "Number of oracle calls classified as rejected.",
		}),
		OracleIncomplete: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_oracle_incomplete_total",
			Help: "Number of oracle calls that returned exit code 255.",
		}),
		OracleTimeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_oracle_timeouts_total",
			Help: "Number of oracle calls killed after exceeding the per-call timeout.",
		}),
		DuplicatesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_duplicates_skipped_total",
			Help: "Number of candidate strings resubmitted to the oracle and short-circuited to rejected.",
		}),
		SelectionsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_selections_generated_total",
			Help: "Number of edit-index combinations that passed the char-count pruning rule and went on to candidate generation.",
		}),
		SelectionsPruned: f.NewCounter(prometheus.CounterOpts{
			Name: "repair_selections_pruned_total",
			Help: "Number of edit-index combinations discarded for needing more than the allowed number of character-bearing edits.",
		}),
	}
}
