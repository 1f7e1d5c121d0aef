// Package metrics exposes Prometheus counters for hostel operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsRecorded counts settled monthly payments by method.
	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostel_payments_recorded_total",
		Help: "Monthly payments recorded as paid.",
	}, []string{"method"})

	// PaymentsRejected counts RecordPayment calls refused with a domain error.
	PaymentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostel_payments_rejected_total",
		Help: "Payment attempts rejected, by error code.",
	}, []string{"code"})

	// PendingGenerated counts pending records created for a new period.
	PendingGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostel_pending_payments_generated_total",
		Help: "Pending payment records created by period generation.",
	})

	// OccupancyChanges counts room joins and leaves.
	OccupancyChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hostel_occupancy_changes_total",
		Help: "Users joining or leaving rooms.",
	}, []string{"direction"})
)

// Occupancy directions.
const (
	DirectionJoin  = "join"
	DirectionLeave = "leave"
)
