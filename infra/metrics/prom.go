// Package metrics provides the Prometheus and InfluxDB implementations of
// the core metrics sink, plus the periodic sampler that feeds them.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/metrics"
)

// PromSink mirrors lot samples into Prometheus gauges.
type PromSink struct {
	occupancy *prometheus.GaugeVec
	available *prometheus.GaugeVec
	waiting   prometheus.Gauge
	active    prometheus.Gauge
}

// NewPromSink registers lot metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are
// already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	occupancy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lot_level_occupancy_rate",
		Help: "Occupancy rate per parking level",
	}, []string{"level", "level_type"})
	available := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lot_level_available_spaces",
		Help: "Free spaces per parking level",
	}, []string{"level", "level_type"})
	waiting := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lot_fleet_unassigned_requests",
		Help: "Movement requests currently without an elevator",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lot_fleet_active_elevators",
		Help: "Elevators not in maintenance",
	})

	for _, c := range []prometheus.Collector{occupancy, available, waiting, active} {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch existing := are.ExistingCollector.(type) {
			case *prometheus.GaugeVec:
				if c == occupancy {
					occupancy = existing
				} else {
					available = existing
				}
			case prometheus.Gauge:
				if c == waiting {
					waiting = existing
				} else {
					active = existing
				}
			}
		}
	}

	return &PromSink{occupancy: occupancy, available: available, waiting: waiting, active: active}, nil
}

// RecordOccupancy sets the per-level gauges.
func (s *PromSink) RecordOccupancy(points []metrics.OccupancyPoint) error {
	for _, p := range points {
		lvl := strconv.Itoa(p.LevelNumber)
		s.occupancy.WithLabelValues(lvl, p.LevelType).Set(p.OccupancyRate)
		s.available.WithLabelValues(lvl, p.LevelType).Set(float64(p.TotalSpaces - p.OccupiedSpaces))
	}
	return nil
}

// RecordFleet sets the fleet gauges.
func (s *PromSink) RecordFleet(point metrics.FleetPoint) error {
	s.waiting.Set(float64(point.Stats.UnassignedRequests))
	s.active.Set(float64(point.Stats.ActiveElevators))
	return nil
}

// ServeScrapes exposes the scrape endpoint on addr until ctx is cancelled.
// Shutdown failures are logged rather than returned; only a listen error
// surfaces to the caller.
func ServeScrapes(ctx context.Context, addr string, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("metrics endpoint shutdown: %v", err)
		}
		<-errc
		return nil
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
