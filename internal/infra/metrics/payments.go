package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		purchasesTotal,
		webhookEventsTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (pending/succeeded/cancelled).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of successful payments in kopecks, labeled by currency.",
		},
		[]string{"currency"},
	)

	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchases materialized, labeled by origin (gateway/manual).",
		},
		[]string{"origin"},
	)

	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Gateway webhook deliveries by processing result.",
		},
		[]string{"result"}, // 'processed', 'duplicate', 'ignored', 'error'
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, amount int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}

func IncPurchase(origin string) {
	purchasesTotal.WithLabelValues(norm(origin)).Inc()
}

func IncWebhookEvent(result string) {
	webhookEventsTotal.WithLabelValues(norm(result)).Inc()
}
