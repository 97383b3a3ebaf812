package elevator

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/events"
	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/model"
	"github.com/sarkarn/parkinglotmgmt/internal/clock"
	"github.com/sarkarn/parkinglotmgmt/internal/eventbus"
)

// Manager owns the elevator fleet and the active-request table. All fleet
// and request mutation happens under its lock; the scoring computation is
// read-only and runs while the lock is held for one decision.
type Manager struct {
	mu          sync.Mutex
	elevators   []*Elevator
	connections map[int]map[int]struct{}
	requests    map[string]*Request
	counter     uint64

	clock clock.Clock
	log   logger.Logger
	bus   *eventbus.Bus[events.Event]
}

// NewManager creates an empty manager. The bus is optional.
func NewManager(clk clock.Clock, log logger.Logger, bus *eventbus.Bus[events.Event]) (*Manager, error) {
	if clk == nil || log == nil {
		return nil, fmt.Errorf("elevator: nil parameter provided to NewManager")
	}
	return &Manager{
		connections: make(map[int]map[int]struct{}),
		requests:    make(map[string]*Request),
		clock:       clk,
		log:         log,
		bus:         bus,
	}, nil
}

// AddElevator registers an elevator and connects every pair of levels it
// serves.
func (m *Manager) AddElevator(e *Elevator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elevators = append(m.elevators, e)
	served := e.ServedLevels()
	for _, l := range served {
		conn, ok := m.connections[l]
		if !ok {
			conn = make(map[int]struct{})
			m.connections[l] = conn
		}
		for _, other := range served {
			conn[other] = struct{}{}
		}
	}
}

// CanReach reports whether the fleet connects the two levels.
func (m *Manager) CanReach(from, to int) bool {
	if from == to {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.connections[from][to]
	return ok
}

// ConnectedLevels returns a copy of the levels reachable from the given one.
func (m *Manager) ConnectedLevels(l int) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.connections[l]))
	for lvl := range m.connections[l] {
		out = append(out, lvl)
	}
	sort.Ints(out)
	return out
}

// score rates an eligible elevator for the request, lower wins.
func score(e *Elevator, from, to int, t model.VehicleType, urgent bool) int {
	s := 0

	// Repositioning cost weighs double the intrinsic travel.
	d := e.CurrentFloor() - from
	if d < 0 {
		d = -d
	}
	s += d * 2

	travel := to - from
	if travel < 0 {
		travel = -travel
	}
	s += travel

	if e.CapacityUsage() > 0.8 {
		s += 10
	}
	// Redundant with eligibility, kept as a safety net.
	if t == model.Van && !e.VanCompatible() {
		s += 20
	}
	s += e.QueueLength() * 3
	if urgent && e.QueueLength() == 0 {
		s -= 5
	}
	return s
}

// findOptimal returns the eligible elevator with the minimum score, first
// minimum in fleet order. Callers hold the lock.
func (m *Manager) findOptimal(from, to int, t model.VehicleType, urgent bool) *Elevator {
	var best *Elevator
	bestScore := 0
	for _, e := range m.elevators {
		if !e.CanServe(from, to, t) {
			continue
		}
		s := score(e, from, to, t, urgent)
		if best == nil || s < bestScore {
			best = e
			bestScore = s
		}
	}
	return best
}

// RequestElevator creates a movement request and tries to assign it to the
// optimal elevator. With no eligible elevator, the request is registered as
// waiting; the next ProcessOperations sweep retries it.
func (m *Manager) RequestElevator(from, to int, t model.VehicleType, vehicleID string, urgent bool) Request {
	m.mu.Lock()
	m.counter++
	r := &Request{
		ID:          fmt.Sprintf("REQ-%d", m.counter),
		From:        from,
		To:          to,
		VehicleType: t,
		VehicleID:   vehicleID,
		Urgent:      urgent,
		RequestedAt: m.clock.Now(),
		Status:      Waiting,
	}
	if e := m.findOptimal(from, to, t, urgent); e != nil {
		e.enqueue(r)
	}
	m.requests[r.ID] = r
	snap := r.snapshot()
	m.mu.Unlock()

	requestsTotal.WithLabelValues(t.String()).Inc()
	if snap.ElevatorID == "" {
		m.log.Warnf("no eligible elevator for %s, request %s waiting", vehicleID, snap.ID)
		waitingRequests.Inc()
	} else {
		m.log.Debugf("request %s assigned to %s", snap.ID, snap.ElevatorID)
	}
	if m.bus != nil {
		m.bus.Publish(events.ElevatorRequested{
			RequestID:  snap.ID,
			VehicleID:  vehicleID,
			Type:       t,
			From:       from,
			To:         to,
			ElevatorID: snap.ElevatorID,
			Urgent:     urgent,
		})
	}
	return snap
}

// CancelRequest removes the request from all tracking structures. It
// returns false when the id is unknown.
func (m *Manager) CancelRequest(requestID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return false
	}
	delete(m.requests, requestID)
	if r.ElevatorID != "" {
		if e := m.byID(r.ElevatorID); e != nil {
			e.dequeue(requestID)
		}
	} else {
		waitingRequests.Dec()
	}
	r.finish(Cancelled, m.clock.Now())
	return true
}

// RequestStatus returns a snapshot of the tracked request.
func (m *Manager) RequestStatus(requestID string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return Request{}, false
	}
	return r.snapshot(), true
}

// ClearFinishedRequests drops terminal requests from the active table and
// returns how many were removed. The table holds terminal requests until
// this is called; there is no automatic garbage collection.
func (m *Manager) ClearFinishedRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.requests {
		if r.Status.Terminal() {
			delete(m.requests, id)
			n++
		}
	}
	return n
}

func (m *Manager) byID(elevatorID string) *Elevator {
	for _, e := range m.elevators {
		if e.ID() == elevatorID {
			return e
		}
	}
	return nil
}

// ElevatorStatus returns a snapshot of one elevator, or false when the id
// is unknown.
func (m *Manager) ElevatorStatus(elevatorID string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.byID(elevatorID)
	if e == nil {
		return Status{}, false
	}
	return e.Status(), true
}

// ElevatorStatuses snapshots the fleet sorted by elevator id.
func (m *Manager) ElevatorStatuses() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Status, 0, len(m.elevators))
	for _, e := range m.elevators {
		out = append(out, e.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ProcessOperations advances every non-maintenance elevator by one tick and
// then sweeps waiting requests, urgent first and FIFO within equal urgency.
// It is meant to be driven by a single periodic scheduler.
func (m *Manager) ProcessOperations() {
	m.mu.Lock()
	now := m.clock.Now()
	var completed []Request
	for _, e := range m.elevators {
		if e.InMaintenance() {
			continue
		}
		before := e.current
		e.Tick(now)
		if before != nil && before.Status == Completed {
			completed = append(completed, before.snapshot())
		}
	}
	assigned := m.reassignWaiting()
	m.mu.Unlock()

	for _, r := range completed {
		completedTotal.WithLabelValues(r.VehicleType.String()).Inc()
		requestWait.Observe(r.WaitTime(now).Seconds())
		m.log.Infof("request %s completed by %s", r.ID, r.ElevatorID)
		if m.bus != nil {
			m.bus.Publish(events.RequestCompleted{
				RequestID:  r.ID,
				VehicleID:  r.VehicleID,
				ElevatorID: r.ElevatorID,
				Wait:       r.WaitTime(now),
			})
		}
	}
	if assigned > 0 {
		waitingRequests.Sub(float64(assigned))
		m.log.Debugf("reassigned %d waiting requests", assigned)
	}
}

// reassignWaiting retries assignment for unassigned requests. Callers hold
// the lock. Returns the number of requests that found an elevator.
func (m *Manager) reassignWaiting() int {
	var waiting []*Request
	for _, r := range m.requests {
		if r.ElevatorID == "" && r.Status == Waiting {
			waiting = append(waiting, r)
		}
	}
	sort.SliceStable(waiting, func(i, j int) bool {
		if waiting[i].Urgent != waiting[j].Urgent {
			return waiting[i].Urgent
		}
		return waiting[i].RequestedAt.Before(waiting[j].RequestedAt)
	})

	assigned := 0
	for _, r := range waiting {
		e := m.findOptimal(r.From, r.To, r.VehicleType, r.Urgent)
		if e == nil {
			continue
		}
		if e.enqueue(r) {
			assigned++
		}
	}
	return assigned
}

// SetMaintenanceMode toggles maintenance on an elevator. Turning it on
// clears the elevator's work and moves every queued request back to
// waiting so the next sweep can re-route them. Returns false for an
// unknown elevator id.
func (m *Manager) SetMaintenanceMode(elevatorID string, on bool) bool {
	m.mu.Lock()
	e := m.byID(elevatorID)
	if e == nil {
		m.mu.Unlock()
		return false
	}
	unassigned := 0
	if on {
		for _, r := range e.clearRequests() {
			r.assign("")
			unassigned++
		}
	}
	e.setMaintenance(on)
	m.mu.Unlock()

	if unassigned > 0 {
		waitingRequests.Add(float64(unassigned))
	}
	m.log.Infof("elevator %s maintenance=%t, %d requests unassigned", elevatorID, on, unassigned)
	return true
}

// IsOperational reports whether at least one elevator is out of maintenance.
func (m *Manager) IsOperational() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.elevators {
		if !e.InMaintenance() {
			return true
		}
	}
	return false
}

// SystemStats aggregates fleet and request statistics. The wait average
// covers only requests with an assigned elevator; never-assigned requests
// are counted separately instead of skewing the mean.
func (m *Manager) SystemStats() SystemStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	st := SystemStats{
		TotalRequests:  len(m.requests),
		TotalElevators: len(m.elevators),
		RequestsByType: make(map[model.VehicleType]int),
	}
	for _, e := range m.elevators {
		if !e.InMaintenance() {
			st.ActiveElevators++
		}
	}
	var waitSum float64
	var waitCount int
	for _, r := range m.requests {
		if r.Urgent {
			st.UrgentRequests++
		}
		st.RequestsByType[r.VehicleType]++
		if r.ElevatorID == "" {
			st.UnassignedRequests++
			continue
		}
		waitSum += r.WaitTime(now).Seconds()
		waitCount++
	}
	if waitCount > 0 {
		st.AverageWait = time.Duration(waitSum / float64(waitCount) * float64(time.Second))
	}
	return st
}
