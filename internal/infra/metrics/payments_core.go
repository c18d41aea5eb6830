package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsRecordedTotal,
		paymentsRecordedCents,
	)
}

var (
	paymentsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Member payments recorded against events.",
		},
	)

	paymentsRecordedCents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_recorded_cents_total",
			Help: "Total value of recorded payments in cents.",
		},
	)
)

func IncPaymentRecorded(amountCents int64) {
	paymentsRecordedTotal.Inc()
	paymentsRecordedCents.Add(float64(amountCents))
}
