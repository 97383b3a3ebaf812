// Package strategy holds the per-vehicle-type space allocation strategies.
// Strategies only select candidate spaces; the owning level commits the
// occupancy mutation after a successful allocation.
package strategy

import (
	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// SpaceAllocator finds suitable free space(s) for a vehicle in a grid of
// rows. On success the returned ids are currently free; marking them
// occupied is the caller's responsibility.
type SpaceAllocator interface {
	Allocate(vehicleID string, rows [][]*model.ParkingSpace) model.ParkingResult
}

// Registry maps each vehicle type to its allocator. It is constructed at
// startup and passed by injection; there is no global registry.
type Registry map[model.VehicleType]SpaceAllocator

// NewRegistry builds the default registry covering all vehicle types.
func NewRegistry() Registry {
	return Registry{
		model.Motorcycle: MotorcycleAllocator{},
		model.Car:        CarAllocator{},
		model.Van:        VanAllocator{},
	}
}

// For returns the allocator for the vehicle type, or nil if unregistered.
func (r Registry) For(t model.VehicleType) SpaceAllocator { return r[t] }

// MotorcycleAllocator takes the first free space of any type.
type MotorcycleAllocator struct{}

func (MotorcycleAllocator) Allocate(vehicleID string, rows [][]*model.ParkingSpace) model.ParkingResult {
	for _, row := range rows {
		for _, sp := range row {
			if !sp.Occupied() {
				return model.ParkingSuccess(sp.ID())
			}
		}
	}
	return model.ParkingFailure("no available space for motorcycle")
}

// CarAllocator takes the first free regular or compact space.
type CarAllocator struct{}

func (CarAllocator) Allocate(vehicleID string, rows [][]*model.ParkingSpace) model.ParkingResult {
	for _, row := range rows {
		for _, sp := range row {
			if !sp.Occupied() && sp.SuitableFor(model.Car) {
				return model.ParkingSuccess(sp.ID())
			}
		}
	}
	return model.ParkingFailure("no available space for car")
}

// VanAllocator needs two contiguous regular spaces in the same row.
type VanAllocator struct{}

func (VanAllocator) Allocate(vehicleID string, rows [][]*model.ParkingSpace) model.ParkingResult {
	for _, row := range rows {
		for i := 0; i+1 < len(row); i++ {
			a, b := row[i], row[i+1]
			if !a.Occupied() && !b.Occupied() &&
				a.Type() == model.Regular && b.Type() == model.Regular {
				return model.ParkingSuccess(a.ID(), b.ID())
			}
		}
	}
	return model.ParkingFailure("no two contiguous regular spaces available for van")
}
