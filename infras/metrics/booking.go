package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics counts lifecycle transitions and lost quantity updates.
type BookingMetrics struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	conflicts   prometheus.Counter
	overdue     prometheus.Counter
}

func NewBookingMetrics(reg *Registry) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Committed booking lifecycle transitions.",
	}, []string{"operation"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_rejections_total",
		Help:      "Booking operations rejected by a domain rule.",
	}, []string{"operation", "kind"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_quantity_conflicts_total",
		Help:      "Tool quantity compare-and-swap attempts that lost to a concurrent writer.",
	})
	overdue := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_items_overdue_total",
		Help:      "Booking items moved to overdue by the scanner.",
	})

	reg.MustRegister(transitions, rejections, conflicts, overdue)

	return &BookingMetrics{
		transitions: transitions,
		rejections:  rejections,
		conflicts:   conflicts,
		overdue:     overdue,
	}
}

func (b *BookingMetrics) IncTransition(operation string) {
	if b == nil || b.transitions == nil {
		return
	}

	b.transitions.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (b *BookingMetrics) IncRejection(operation, kind string) {
	if b == nil || b.rejections == nil {
		return
	}

	b.rejections.WithLabelValues(normalizeLabel(operation), normalizeLabel(kind)).Inc()
}

func (b *BookingMetrics) IncQuantityConflict() {
	if b == nil || b.conflicts == nil {
		return
	}

	b.conflicts.Inc()
}

func (b *BookingMetrics) AddOverdue(count int64) {
	if b == nil || b.overdue == nil || count <= 0 {
		return
	}

	b.overdue.Add(float64(count))
}
