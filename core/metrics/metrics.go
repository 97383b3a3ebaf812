// Package metrics defines the observability sink for periodic lot samples.
// Implementations live under infra/metrics; the core only produces points.
package metrics

import (
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/elevator"
)

// OccupancyPoint is one level's occupancy at a sampling instant.
type OccupancyPoint struct {
	LevelNumber    int
	LevelType      string
	TotalSpaces    int
	OccupiedSpaces int
	OccupancyRate  float64
	Time           time.Time
}

// FleetPoint is the elevator system view at a sampling instant.
type FleetPoint struct {
	Stats elevator.SystemStats
	Time  time.Time
}

// Sink records lot samples for observability purposes.
type Sink interface {
	RecordOccupancy(points []OccupancyPoint) error
	RecordFleet(point FleetPoint) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordOccupancy([]OccupancyPoint) error { return nil }
func (NopSink) RecordFleet(FleetPoint) error           { return nil }

// MultiSink fans samples out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOccupancy forwards the points to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOccupancy(points []OccupancyPoint) error {
	for _, s := range m.Sinks {
		if err := s.RecordOccupancy(points); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleet forwards the point to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordFleet(point FleetPoint) error {
	for _, s := range m.Sinks {
		if err := s.RecordFleet(point); err != nil {
			return err
		}
	}
	return nil
}
