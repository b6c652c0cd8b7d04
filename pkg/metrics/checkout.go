package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics records checkout and sign-in outcomes.
type CheckoutMetrics struct {
	ordersConfirmed prometheus.Counter
	dismissed       prometheus.Counter
	signIns         *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Orders confirmed by a verified payment callback.",
	})
	dismissed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_dismissed_total",
		Help: "Checkout attempts dismissed before completion.",
	})
	signIns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sign_ins_total",
		Help: "Completed sign-ins by flow.",
	}, []string{"flow"})
	reg.MustRegister(ordersConfirmed, dismissed, signIns)
	return &CheckoutMetrics{
		ordersConfirmed: ordersConfirmed,
		dismissed:       dismissed,
		signIns:         signIns,
	}
}

// OrderConfirmed bumps the confirmed-order counter.
func (m *CheckoutMetrics) OrderConfirmed() {
	if m == nil || m.ordersConfirmed == nil {
		return
	}
	m.ordersConfirmed.Inc()
}

// CheckoutDismissed bumps the dismissed-checkout counter.
func (m *CheckoutMetrics) CheckoutDismissed() {
	if m == nil || m.dismissed == nil {
		return
	}
	m.dismissed.Inc()
}

// SignIn records one completed sign-in for the given flow (link/popup).
func (m *CheckoutMetrics) SignIn(flow string) {
	if m == nil || m.signIns == nil {
		return
	}
	m.signIns.WithLabelValues(flow).Inc()
}
