package model

import "fmt"

// SpaceType enumerates the physical space classes of the grid.
type SpaceType int

const (
	Compact SpaceType = iota
	Regular
)

func (t SpaceType) String() string {
	switch t {
	case Compact:
		return "COMPACT"
	case Regular:
		return "REGULAR"
	}
	return fmt.Sprintf("SpaceType(%d)", int(t))
}

// ParseSpaceType converts a string to a SpaceType.
func ParseSpaceType(s string) (SpaceType, error) {
	switch s {
	case "COMPACT":
		return Compact, nil
	case "REGULAR":
		return Regular, nil
	}
	return 0, fmt.Errorf("unknown space type %q", s)
}

// ParkingSpace is one slot of a level grid. Occupancy mutates in place; the
// identifier and type are fixed at construction.
type ParkingSpace struct {
	id         string
	spaceType  SpaceType
	occupiedBy string
}

// NewParkingSpace creates a free space.
func NewParkingSpace(id string, t SpaceType) *ParkingSpace {
	return &ParkingSpace{id: id, spaceType: t}
}

func (s *ParkingSpace) ID() string         { return s.id }
func (s *ParkingSpace) Type() SpaceType    { return s.spaceType }
func (s *ParkingSpace) Occupied() bool     { return s.occupiedBy != "" }
func (s *ParkingSpace) OccupiedBy() string { return s.occupiedBy }

// Occupy marks the space as held by vehicleID. Double occupancy is a broken
// caller contract and panics.
func (s *ParkingSpace) Occupy(vehicleID string) {
	if s.occupiedBy != "" {
		panic(fmt.Sprintf("space %s already occupied by %s", s.id, s.occupiedBy))
	}
	s.occupiedBy = vehicleID
}

// Vacate frees the space and reports whether it was occupied.
func (s *ParkingSpace) Vacate() bool {
	was := s.occupiedBy != ""
	s.occupiedBy = ""
	return was
}

// SuitableFor reports whether a space of this type can hold the vehicle type.
// Motorcycles fit anywhere, cars need regular or compact, vans regular only.
func (s *ParkingSpace) SuitableFor(t VehicleType) bool {
	switch t {
	case Motorcycle:
		return true
	case Car:
		return s.spaceType == Regular || s.spaceType == Compact
	case Van:
		return s.spaceType == Regular
	}
	return false
}
