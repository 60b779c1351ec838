package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Logins counts issued sessions by login method.
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "horologie",
		Name:      "logins_total",
		Help:      "Total number of successful logins.",
	}, []string{"method"})

	// OrdersCreated counts committed checkouts.
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "horologie",
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	})

	// OrdersCancelled counts user-initiated cancellations.
	OrdersCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "horologie",
		Name:      "orders_cancelled_total",
		Help:      "Total number of orders cancelled by their owners.",
	})

	// PasswordResets counts completed reset confirmations.
	PasswordResets = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "horologie",
		Name:      "password_resets_total",
		Help:      "Total number of completed password resets.",
	})
)

// MustRegister installs every collector on the default registry. Called
// once from main; handlers may increment unregistered collectors in tests.
func MustRegister() {
	prometheus.MustRegister(Logins, OrdersCreated, OrdersCancelled, PasswordResets)
}
