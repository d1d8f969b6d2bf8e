package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the billing counters exported on /metrics.
type Metrics struct {
	Registry *prometheus.Registry

	ChargesCreated   *prometheus.CounterVec
	PaymentsRecorded prometheus.Counter
	ChargesCancelled prometheus.Counter
	OverdueSwept     prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: registry,
		ChargesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "condovia_charges_created_total",
			Help: "Charges created, labeled by origin (batch or adhoc).",
		}, []string{"origin"}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "condovia_payments_recorded_total",
			Help: "Payments applied to charges.",
		}),
		ChargesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "condovia_charges_cancelled_total",
			Help: "Charges moved to the cancelled state.",
		}),
		OverdueSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "condovia_overdue_swept_total",
			Help: "Pending charges flipped to overdue by the sweep.",
		}),
	}

	registry.MustRegister(
		m.ChargesCreated,
		m.PaymentsRecorded,
		m.ChargesCancelled,
		m.OverdueSwept,
	)
	return m
}
