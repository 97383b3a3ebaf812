// Package elevator implements the movement request dispatcher for the
// multi-level lot: a scored assignment of requests to elevators, a
// tick-driven per-elevator state machine, and a reassignment sweep that
// re-routes requests stranded without an elevator.
package elevator

import (
	"fmt"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// State is the movement state of an elevator.
type State int

const (
	Idle State = iota
	Moving
	Loading
	Maintenance
	// OutOfService is reachable in the model but not driven by any
	// current transition; reserved for fault injection.
	OutOfService
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Moving:
		return "MOVING"
	case Loading:
		return "LOADING"
	case Maintenance:
		return "MAINTENANCE"
	case OutOfService:
		return "OUT_OF_SERVICE"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Elevator is a mobile resource serving a fixed set of levels. It advances
// at most one floor per tick and is mutated only by its owning Manager.
type Elevator struct {
	id            string
	servedLevels  []int
	capacity      int
	vanCompatible bool

	currentFloor int
	state        State
	maintenance  bool
	queue        []*Request
	occupants    map[string]struct{}
	current      *Request
	lastTick     time.Time
}

// NewElevator creates an elevator idle at initialFloor. The served levels
// list is fixed for the elevator's lifetime.
func NewElevator(id string, servedLevels []int, capacity int, vanCompatible bool, initialFloor int) *Elevator {
	return &Elevator{
		id:            id,
		servedLevels:  append([]int(nil), servedLevels...),
		capacity:      capacity,
		vanCompatible: vanCompatible,
		currentFloor:  initialFloor,
		state:         Idle,
		occupants:     make(map[string]struct{}),
	}
}

func (e *Elevator) ID() string          { return e.id }
func (e *Elevator) CurrentFloor() int   { return e.currentFloor }
func (e *Elevator) State() State        { return e.state }
func (e *Elevator) InMaintenance() bool { return e.maintenance }
func (e *Elevator) VanCompatible() bool { return e.vanCompatible }
func (e *Elevator) Capacity() int       { return e.capacity }

// ServedLevels returns a copy of the levels this elevator reaches.
func (e *Elevator) ServedLevels() []int { return append([]int(nil), e.servedLevels...) }

// Occupants returns a copy of the vehicle ids currently aboard.
func (e *Elevator) Occupants() []string {
	out := make([]string, 0, len(e.occupants))
	for id := range e.occupants {
		out = append(out, id)
	}
	return out
}

func (e *Elevator) serves(floor int) bool {
	for _, l := range e.servedLevels {
		if l == floor {
			return true
		}
	}
	return false
}

// CanServe is the hard eligibility test: any failing precondition rejects
// the elevator outright.
func (e *Elevator) CanServe(from, to int, t model.VehicleType) bool {
	if e.maintenance {
		return false
	}
	if !e.serves(from) || !e.serves(to) {
		return false
	}
	if t == model.Van && !e.vanCompatible {
		return false
	}
	if len(e.occupants) >= e.capacity {
		return false
	}
	return true
}

// CapacityUsage returns the occupant ratio in [0,1].
func (e *Elevator) CapacityUsage() float64 {
	return float64(len(e.occupants)) / float64(e.capacity)
}

// QueueLength counts queued requests plus the one being serviced.
func (e *Elevator) QueueLength() int {
	n := len(e.queue)
	if e.current != nil {
		n++
	}
	return n
}

// enqueue appends an eligible request and wakes an idle elevator.
func (e *Elevator) enqueue(r *Request) bool {
	if !e.CanServe(r.From, r.To, r.VehicleType) {
		return false
	}
	e.queue = append(e.queue, r)
	r.assign(e.id)
	if e.state == Idle {
		e.state = Moving
	}
	return true
}

// dequeue removes a queued request by id. The current request is not
// touched; cancelling it is handled by the manager.
func (e *Elevator) dequeue(requestID string) bool {
	for i, r := range e.queue {
		if r.ID == requestID {
			e.queue = append(e.queue[:i], e.queue[i+1:]...)
			return true
		}
	}
	return false
}

// clearRequests empties the queue and current request, returning everything
// that was pending. Used when the elevator enters maintenance.
func (e *Elevator) clearRequests() []*Request {
	out := make([]*Request, 0, len(e.queue)+1)
	if e.current != nil {
		out = append(out, e.current)
		e.current = nil
	}
	out = append(out, e.queue...)
	e.queue = nil
	e.state = Idle
	return out
}

// Tick advances the elevator by one step: pop the queue head, move one
// floor toward the pickup or destination, load, or unload. At most one
// transition happens per call.
func (e *Elevator) Tick(now time.Time) {
	if e.maintenance || e.state == Maintenance {
		return
	}

	if e.current == nil && len(e.queue) > 0 {
		e.current = e.queue[0]
		e.queue = e.queue[1:]
		e.current.Status = InTransit
		e.state = Moving
	}

	if e.current != nil {
		e.serviceCurrent(now)
	} else if e.state != Idle {
		e.state = Idle
	}
	e.lastTick = now
}

func (e *Elevator) serviceCurrent(now time.Time) {
	r := e.current
	switch {
	case e.currentFloor != r.From && !e.carrying(r.VehicleID):
		e.moveToward(r.From)
	case !e.carrying(r.VehicleID):
		e.occupants[r.VehicleID] = struct{}{}
		e.state = Loading
	case e.currentFloor != r.To:
		e.moveToward(r.To)
	default:
		delete(e.occupants, r.VehicleID)
		r.finish(Completed, now)
		e.current = nil
		if len(e.queue) == 0 {
			e.state = Idle
		} else {
			e.state = Moving
		}
	}
}

func (e *Elevator) carrying(vehicleID string) bool {
	_, ok := e.occupants[vehicleID]
	return ok
}

func (e *Elevator) moveToward(target int) {
	if e.currentFloor < target {
		e.currentFloor++
	} else if e.currentFloor > target {
		e.currentFloor--
	}
	e.state = Moving
}

// setMaintenance toggles maintenance. Turning it off only returns the
// elevator to idle; the next tick pulls work again.
func (e *Elevator) setMaintenance(on bool) {
	e.maintenance = on
	if on {
		e.state = Maintenance
	} else if e.state == Maintenance {
		e.state = Idle
	}
}

// Status builds a read-only snapshot.
func (e *Elevator) Status() Status {
	st := Status{
		ID:            e.id,
		CurrentFloor:  e.currentFloor,
		State:         e.state,
		Maintenance:   e.maintenance,
		Occupants:     len(e.occupants),
		Capacity:      e.capacity,
		QueueLength:   e.QueueLength(),
		ServedLevels:  e.ServedLevels(),
		VanCompatible: e.vanCompatible,
		LastTick:      e.lastTick,
	}
	if e.current != nil {
		st.CurrentRequestID = e.current.ID
	}
	return st
}
