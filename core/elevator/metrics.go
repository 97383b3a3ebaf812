package elevator

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal   *prometheus.CounterVec
	completedTotal  *prometheus.CounterVec
	waitingRequests prometheus.Gauge
	requestWait     prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Gauge, prometheus.Histogram) {
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elevator_requests_total",
			Help: "Number of elevator movement requests received",
		},
		[]string{"vehicle_type"},
	)
	done := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elevator_requests_completed_total",
			Help: "Number of elevator movement requests completed",
		},
		[]string{"vehicle_type"},
	)
	waiting := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "elevator_requests_waiting",
			Help: "Number of requests currently without an assigned elevator",
		},
	)
	wait := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "elevator_request_wait_seconds",
			Help:    "Time from request creation to completion",
			Buckets: prometheus.DefBuckets,
		},
	)
	return req, done, waiting, wait
}

func init() {
	requestsTotal, completedTotal, waitingRequests, requestWait = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers elevator metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requestsTotal, completedTotal, waitingRequests, requestWait)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	requestsTotal, completedTotal, waitingRequests, requestWait = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
