package metrics

import (
	"context"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/elevator"
	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/lot"
	"github.com/sarkarn/parkinglotmgmt/core/metrics"
)

// LotSource exposes the occupancy snapshot the sampler reads.
type LotSource interface {
	Status() lot.Status
}

// FleetSource exposes the elevator system stats the sampler reads.
type FleetSource interface {
	SystemStats() elevator.SystemStats
}

// StartCollector samples the lot and fleet at the given interval and pushes
// the points into the sink until the context is canceled. Either source may
// be nil.
func StartCollector(ctx context.Context, interval time.Duration, lots LotSource, fleet FleetSource, sink metrics.Sink, log logger.Logger) {
	if sink == nil || (lots == nil && fleet == nil) {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if lots != nil {
					st := lots.Status()
					points := make([]metrics.OccupancyPoint, 0, len(st.Levels))
					for _, ls := range st.Levels {
						points = append(points, metrics.OccupancyPoint{
							LevelNumber:    ls.Number,
							LevelType:      ls.LevelType.String(),
							TotalSpaces:    ls.TotalSpaces,
							OccupiedSpaces: ls.OccupiedSpaces,
							OccupancyRate:  ls.OccupancyRate,
							Time:           now,
						})
					}
					if err := sink.RecordOccupancy(points); err != nil {
						log.Errorf("record occupancy: %v", err)
					}
				}
				if fleet != nil {
					if err := sink.RecordFleet(metrics.FleetPoint{Stats: fleet.SystemStats(), Time: now}); err != nil {
						log.Errorf("record fleet stats: %v", err)
					}
				}
			}
		}
	}()
}
