// Package metrics provides Prometheus metrics for schedule generation runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory registers metrics to the custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// SCHEDULE METRICS
// =============================================================================

// SlotsTotal tracks the number of slots in the last generated schedule.
var SlotsTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "pibshift",
	Name:      "slots_total",
	Help:      "Number of slots in the last generated schedule",
})

// SlotsUnassigned tracks slots nobody could fill in the last schedule.
var SlotsUnassigned = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "pibshift",
	Name:      "slots_unassigned",
	Help:      "Number of slots left unassigned in the last generated schedule",
})

// UnassignedByRole breaks unassigned slots down by role key.
var UnassignedByRole = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "pibshift",
	Name:      "slots_unassigned_by_role",
	Help:      "Unassigned slots in the last generated schedule by role",
}, []string{"role"})

// ConflictsTotal tracks same-date double bookings found by conflict checks.
var ConflictsTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "pibshift",
	Name:      "conflicts_total",
	Help:      "Same-date double bookings found in the last checked schedule",
})

// PairPlacementsTotal counts slots filled by pair rules.
var PairPlacementsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "pibshift",
	Name:      "pair_placements_total",
	Help:      "Slots filled by pair rules",
})

// ValidationErrorsTotal counts validation findings by criterion.
var ValidationErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pibshift",
	Name:      "validation_errors_total",
	Help:      "Validation findings by criterion and severity",
}, []string{"criterion", "severity"})

// =============================================================================
// OPERATIONAL METRICS
// =============================================================================

// RunsTotal counts allocation runs by result.
var RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pibshift",
	Name:      "runs_total",
	Help:      "Allocation runs by result",
}, []string{"result"})

// AllocationDurationSeconds tracks time to allocate a schedule.
var AllocationDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "pibshift",
	Name:      "allocation_duration_seconds",
	Help:      "Time taken to allocate a schedule",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// InputErrorsTotal tracks availability input errors by type.
var InputErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Availability input errors by error type",
}, []string{"error_type"})

// RecordsTotal tracks availability rows read.
var RecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Availability rows read",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetScheduleGauges resets per-run gauges before a new allocation run.
func ResetScheduleGauges() {
	SlotsTotal.Set(0)
	SlotsUnassigned.Set(0)
	UnassignedByRole.Reset()
}

// Push sends the registry to a Prometheus Pushgateway
func Push(url, job string) error {
	if err := push.New(url, job).Gatherer(Registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
