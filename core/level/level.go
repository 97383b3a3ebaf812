// Package level models one floor of the parking structure: its space grid,
// access rules and the priority score used by level selection.
package level

import (
	"fmt"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// Type classifies a level by its position in the structure.
type Type int

const (
	Ground Type = iota
	Elevated
	Underground
)

func (t Type) String() string {
	switch t {
	case Ground:
		return "GROUND"
	case Elevated:
		return "ELEVATED"
	case Underground:
		return "UNDERGROUND"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a string to a level Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "GROUND":
		return Ground, nil
	case "ELEVATED":
		return Elevated, nil
	case "UNDERGROUND":
		return Underground, nil
	}
	return 0, fmt.Errorf("unknown level type %q", s)
}

// Unsuitable is the effective score of a level that cannot take the vehicle
// at all. Such levels are excluded, not merely deprioritized.
const Unsuitable = int(^uint(0) >> 1)

// ParkingLevel is one floor with a fixed grid of spaces. The geometry never
// changes after construction; only space occupancy and the vehicle mappings
// mutate, and those are owned by the lot orchestrator.
type ParkingLevel struct {
	number    int
	name      string
	levelType Type

	rows           [][]*model.ParkingSpace
	vehicleSpaces  map[string][]string
	spaceVehicle   map[string]string
	elevatorAccess bool
	stairAccess    bool
	allowed        map[model.VehicleType]bool
	capacity       int
}

// New builds a level from the row configurations. Space ids encode level,
// row and position as L%d-R%d-%d and are unique within the level.
func New(number int, name string, t Type, rowConfigs [][]model.SpaceType, elevatorAccess, stairAccess bool, allowed []model.VehicleType) *ParkingLevel {
	l := &ParkingLevel{
		number:         number,
		name:           name,
		levelType:      t,
		vehicleSpaces:  make(map[string][]string),
		spaceVehicle:   make(map[string]string),
		elevatorAccess: elevatorAccess,
		stairAccess:    stairAccess,
		allowed:        make(map[model.VehicleType]bool, len(allowed)),
	}
	for _, vt := range allowed {
		l.allowed[vt] = true
	}
	for ri, cfg := range rowConfigs {
		row := make([]*model.ParkingSpace, 0, len(cfg))
		for si, st := range cfg {
			id := fmt.Sprintf("L%d-R%d-%d", number, ri+1, si+1)
			row = append(row, model.NewParkingSpace(id, st))
		}
		l.rows = append(l.rows, row)
		l.capacity += len(row)
	}
	return l
}

func (l *ParkingLevel) Number() int          { return l.number }
func (l *ParkingLevel) Name() string         { return l.name }
func (l *ParkingLevel) LevelType() Type      { return l.levelType }
func (l *ParkingLevel) ElevatorAccess() bool { return l.elevatorAccess }
func (l *ParkingLevel) StairAccess() bool    { return l.stairAccess }
func (l *ParkingLevel) Capacity() int        { return l.capacity }

// Rows exposes the space grid for allocation strategies. The slice is a
// copy; the spaces themselves are shared so occupancy stays live.
func (l *ParkingLevel) Rows() [][]*model.ParkingSpace {
	rows := make([][]*model.ParkingSpace, len(l.rows))
	for i, r := range l.rows {
		rows[i] = append([]*model.ParkingSpace(nil), r...)
	}
	return rows
}

// AllowedVehicleTypes returns a copy of the allowed type set.
func (l *ParkingLevel) AllowedVehicleTypes() []model.VehicleType {
	var out []model.VehicleType
	for _, vt := range model.VehicleTypes {
		if l.allowed[vt] {
			out = append(out, vt)
		}
	}
	return out
}

// Accommodates reports whether the vehicle type is allowed on this level.
func (l *ParkingLevel) Accommodates(t model.VehicleType) bool { return l.allowed[t] }

// HasAccess reports whether the level grants the access mode the vehicle
// type requires: motorcycles need stairs or an elevator, cars and vans need
// elevator/ramp access.
func (l *ParkingLevel) HasAccess(t model.VehicleType) bool {
	switch t {
	case model.Motorcycle:
		return l.stairAccess || l.elevatorAccess
	case model.Car, model.Van:
		return l.elevatorAccess
	}
	return false
}

// AvailableFor counts free spaces usable by the vehicle type.
func (l *ParkingLevel) AvailableFor(t model.VehicleType) int {
	if !l.allowed[t] {
		return 0
	}
	n := 0
	for _, row := range l.rows {
		for _, sp := range row {
			if !sp.Occupied() && sp.SuitableFor(t) {
				n++
			}
		}
	}
	return n
}

// PriorityScore computes the selection score for this level, lower wins.
// Base score follows the convenience ordering ground < elevated <
// underground, adjusted per vehicle type, plus an occupancy penalty of
// floor(rate*5).
func (l *ParkingLevel) PriorityScore(t model.VehicleType) int {
	if !l.allowed[t] || !l.HasAccess(t) {
		return Unsuitable
	}

	score := 0
	switch l.levelType {
	case Ground:
		score = 1
	case Elevated:
		score = 2
	case Underground:
		score = 3
	}

	switch t {
	case model.Motorcycle:
		if l.levelType == Elevated {
			score-- // security preference
		}
	case model.Car:
	case model.Van:
		if l.levelType == Ground {
			score-- // ease of loading
		}
	}

	rate := float64(l.OccupiedSpaces()) / float64(l.capacity)
	return score + int(rate*5)
}

// TotalSpaces returns the fixed space count.
func (l *ParkingLevel) TotalSpaces() int { return l.capacity }

// OccupiedSpaces counts occupied spaces.
func (l *ParkingLevel) OccupiedSpaces() int {
	n := 0
	for _, row := range l.rows {
		for _, sp := range row {
			if sp.Occupied() {
				n++
			}
		}
	}
	return n
}

// AvailableSpaces counts free spaces regardless of type.
func (l *ParkingLevel) AvailableSpaces() int { return l.capacity - l.OccupiedSpaces() }

func (l *ParkingLevel) Full() bool  { return l.AvailableSpaces() == 0 }
func (l *ParkingLevel) Empty() bool { return l.OccupiedSpaces() == 0 }

// SpaceByID finds a space on this level, or nil.
func (l *ParkingLevel) SpaceByID(id string) *model.ParkingSpace {
	for _, row := range l.rows {
		for _, sp := range row {
			if sp.ID() == id {
				return sp
			}
		}
	}
	return nil
}

// Commit records a vehicle as occupying the given spaces and marks them.
// The spaces must be free; a double-occupancy panic indicates a broken
// caller contract.
func (l *ParkingLevel) Commit(vehicleID string, spaceIDs []string) error {
	for _, id := range spaceIDs {
		sp := l.SpaceByID(id)
		if sp == nil {
			return fmt.Errorf("space %s not found on level %d", id, l.number)
		}
		sp.Occupy(vehicleID)
		l.spaceVehicle[id] = vehicleID
	}
	l.vehicleSpaces[vehicleID] = append([]string(nil), spaceIDs...)
	return nil
}

// Release vacates the vehicle's spaces and clears the mappings. It returns
// the freed ids, or an empty slice if the vehicle is unknown here.
func (l *ParkingLevel) Release(vehicleID string) []string {
	ids := l.vehicleSpaces[vehicleID]
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if sp := l.SpaceByID(id); sp != nil {
			sp.Vacate()
		}
		delete(l.spaceVehicle, id)
	}
	delete(l.vehicleSpaces, vehicleID)
	return ids
}

// VehicleSpaces returns a copy of the space ids held by the vehicle.
func (l *ParkingLevel) VehicleSpaces(vehicleID string) []string {
	return append([]string(nil), l.vehicleSpaces[vehicleID]...)
}
