// Package lot orchestrates the parking flow: level selection, space
// allocation against the per-type strategies, occupancy commits and the
// elevator requests that move vehicles to and from their levels.
package lot

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sarkarn/parkinglotmgmt/core/allocation"
	"github.com/sarkarn/parkinglotmgmt/core/elevator"
	"github.com/sarkarn/parkinglotmgmt/core/level"
	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/model"
	"github.com/sarkarn/parkinglotmgmt/core/strategy"
)

// entryLevel is where vehicles arrive and leave; movement requests run
// between here and the allocated level.
const entryLevel = 0

type parkedVehicle struct {
	vehicleType model.VehicleType
	levelNumber int
	spaces      []string
}

// ParkingLot owns the level collection and the parked-vehicle index. All
// occupancy mutation across levels happens under its lock; the elevator
// manager keeps its own.
type ParkingLot struct {
	mu       sync.Mutex
	levels   []*level.ParkingLevel
	byNumber map[int]*level.ParkingLevel
	parked   map[string]parkedVehicle

	strategies strategy.Registry
	selector   allocation.LevelStrategy
	elevators  *elevator.Manager
	log        logger.Logger
}

// New creates a lot over the given levels, kept sorted by level number so
// tie-breaks in level selection are deterministic. The elevator manager is
// optional; without it, vehicles on non-entry levels simply get no
// movement request.
func New(levels []*level.ParkingLevel, strategies strategy.Registry, elevators *elevator.Manager, log logger.Logger) (*ParkingLot, error) {
	if len(levels) == 0 || strategies == nil || log == nil {
		return nil, fmt.Errorf("lot: nil parameter provided to New")
	}
	p := &ParkingLot{
		levels:     append([]*level.ParkingLevel(nil), levels...),
		byNumber:   make(map[int]*level.ParkingLevel, len(levels)),
		parked:     make(map[string]parkedVehicle),
		strategies: strategies,
		elevators:  elevators,
		log:        log,
	}
	sort.Slice(p.levels, func(i, j int) bool { return p.levels[i].Number() < p.levels[j].Number() })
	for _, l := range p.levels {
		if _, dup := p.byNumber[l.Number()]; dup {
			return nil, fmt.Errorf("lot: duplicate level number %d", l.Number())
		}
		p.byNumber[l.Number()] = l
	}
	return p, nil
}

// ParkVehicle finds the optimal level for the vehicle, allocates space(s)
// on it and commits the occupancy. Parking is idempotent per vehicle id: a
// vehicle that already holds spaces gets its existing allocation back.
func (p *ParkingLot) ParkVehicle(v model.Vehicle) model.ParkingResult {
	if err := v.Validate(); err != nil {
		return model.ParkingFailure(err.Error())
	}

	p.mu.Lock()
	if rec, ok := p.parked[v.ID]; ok {
		spaces := append([]string(nil), rec.spaces...)
		p.mu.Unlock()
		return model.AlreadyParked(spaces)
	}

	sel := p.selector.FindOptimalLevel(p.levels, v.Type)
	if !sel.Success {
		p.mu.Unlock()
		p.log.Warnf("parking failed for %s: %s", v.ID, sel.Reason)
		return model.ParkingFailure(sel.Reason)
	}
	l := sel.Level

	alloc := p.strategies.For(v.Type)
	if alloc == nil {
		p.mu.Unlock()
		return model.ParkingFailure(fmt.Sprintf("no allocation strategy for %s", v.Type))
	}
	res := alloc.Allocate(v.ID, l.Rows())
	if !res.Success {
		p.mu.Unlock()
		p.log.Warnf("parking failed for %s on level %d: %s", v.ID, l.Number(), res.Message)
		return res
	}
	if err := l.Commit(v.ID, res.Spaces); err != nil {
		p.mu.Unlock()
		return model.ParkingFailure(err.Error())
	}
	p.parked[v.ID] = parkedVehicle{
		vehicleType: v.Type,
		levelNumber: l.Number(),
		spaces:      append([]string(nil), res.Spaces...),
	}
	p.mu.Unlock()

	p.log.Infof("vehicle %s parked on level %d in %v", v.ID, l.Number(), res.Spaces)
	if p.elevators != nil && l.Number() != entryLevel {
		p.elevators.RequestElevator(entryLevel, l.Number(), v.Type, v.ID, false)
	}
	return res
}

// RemoveVehicle vacates the vehicle's spaces and, when it sits on a
// non-entry level, files a retrieval elevator request back to the entry
// level. Returns the freed space ids and false when the vehicle is unknown.
func (p *ParkingLot) RemoveVehicle(vehicleID string) ([]string, bool) {
	p.mu.Lock()
	rec, ok := p.parked[vehicleID]
	if !ok {
		p.mu.Unlock()
		return nil, false
	}
	l := p.byNumber[rec.levelNumber]
	freed := l.Release(vehicleID)
	delete(p.parked, vehicleID)
	p.mu.Unlock()

	p.log.Infof("vehicle %s removed from level %d, freed %v", vehicleID, rec.levelNumber, freed)
	if p.elevators != nil && rec.levelNumber != entryLevel {
		p.elevators.RequestElevator(rec.levelNumber, entryLevel, rec.vehicleType, vehicleID, false)
	}
	return freed, true
}

// VehicleLocation returns the level number and space ids held by the
// vehicle.
func (p *ParkingLot) VehicleLocation(vehicleID string) (int, []string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.parked[vehicleID]
	if !ok {
		return 0, nil, false
	}
	return rec.levelNumber, append([]string(nil), rec.spaces...), true
}

// Levels returns the levels in number order. The slice is a copy; the
// levels are shared.
func (p *ParkingLot) Levels() []*level.ParkingLevel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*level.ParkingLevel(nil), p.levels...)
}

// TotalSpaces counts spaces usable by the vehicle type on levels it can
// reach, occupied or not. Vans consume two contiguous regular spaces, so
// their count is halved. This is the coarse capacity total the reservation
// manager checks bookings against.
func (p *ParkingLot) TotalSpaces(t model.VehicleType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, l := range p.levels {
		if !l.Accommodates(t) || !l.HasAccess(t) {
			continue
		}
		for _, row := range l.Rows() {
			for _, sp := range row {
				if sp.SuitableFor(t) {
					n++
				}
			}
		}
	}
	if t == model.Van {
		n /= 2
	}
	return n
}
