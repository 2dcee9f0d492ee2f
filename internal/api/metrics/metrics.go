// Package metrics defines and registers all custom Prometheus metrics for the
// vitality API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at import time; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vitality"

// ── Scan metrics ──────────────────────────────────────────────────────────────

// ScansStartedTotal counts scans that reached awaiting-choice.
// Label:
//   - input_type: "text" or "image"
var ScansStartedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_started_total",
		Help:      "Total number of scans that produced a verdict, by input type.",
	},
	[]string{"input_type"},
)

// ScanErrorsTotal counts scans that failed before awaiting-choice.
// Label:
//   - reason: short failure kind (e.g. "malformed_response", "unreachable", "identify")
var ScanErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_errors_total",
		Help:      "Total number of scans that failed, by reason.",
	},
	[]string{"reason"},
)

// ── Choice metrics ────────────────────────────────────────────────────────────

// ChoicesCommittedTotal counts committed choices.
// Label:
//   - tag: "A" (indulgent) or "B" (optimized)
var ChoicesCommittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "choices_committed_total",
		Help:      "Total number of committed choices, by outcome tag.",
	},
	[]string{"tag"},
)

// ChoiceConflictsTotal counts ledger writes rejected by the optimistic
// concurrency check. Conflicts are retryable and expected under concurrent use.
var ChoiceConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "choice_conflicts_total",
		Help:      "Total number of ledger writes rejected by a version conflict.",
	},
)
