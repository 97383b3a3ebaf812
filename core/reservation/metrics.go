package reservation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reservationsTotal *prometheus.CounterVec
	waitlistDepth     *prometheus.GaugeVec
	expiredTotal      prometheus.Counter
	promotedTotal     prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.GaugeVec, prometheus.Counter, prometheus.Counter) {
	created := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_requests_total",
			Help: "Number of reservation requests by outcome",
		},
		[]string{"outcome"},
	)
	depth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reservation_waitlist_depth",
			Help: "Current waitlist size per vehicle type",
		},
		[]string{"vehicle_type"},
	)
	expired := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reservation_expired_total",
			Help: "Number of reservations expired by the grace-period sweep",
		},
	)
	promoted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reservation_promoted_total",
			Help: "Number of reservations promoted from a waitlist",
		},
	)
	return created, depth, expired, promoted
}

func init() {
	reservationsTotal, waitlistDepth, expiredTotal, promotedTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers reservation metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(reservationsTotal, waitlistDepth, expiredTotal, promotedTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	reservationsTotal, waitlistDepth, expiredTotal, promotedTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
