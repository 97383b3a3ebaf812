package reservation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/events"
	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/model"
	"github.com/sarkarn/parkinglotmgmt/core/notify"
	"github.com/sarkarn/parkinglotmgmt/internal/clock"
	"github.com/sarkarn/parkinglotmgmt/internal/eventbus"
)

// reminderLead is how long before the start the arrival reminder fires.
const reminderLead = 15 * time.Minute

// CapacityProvider answers how many spaces the lot has for a vehicle type.
// The reservation manager never inspects individual spaces; availability is
// judged against this total minus overlapping bookings.
type CapacityProvider interface {
	TotalSpaces(t model.VehicleType) int
}

// Manager owns the reservation table and one waitlist per vehicle type.
//
// Lock discipline: a waitlist mutex is always acquired before the table
// mutex, never the other way around. Creation, cancellation, the expiration
// sweep and the promotion sweep all follow this order, which lets promotion
// hold the head of a waitlist stable while it checks capacity.
type Manager struct {
	mu        sync.RWMutex
	table     map[string]*Reservation
	waitlists map[model.VehicleType]*waitlist
	seq       uint64
	reminders map[string]func() bool

	policy   Policy
	capacity CapacityProvider
	clock    clock.Clock
	log      logger.Logger
	notifier notify.Notifier
	bus      *eventbus.Bus[events.Event]
}

// NewManager creates a reservation manager. The bus is optional; every
// other collaborator is required.
func NewManager(policy Policy, capacity CapacityProvider, clk clock.Clock, log logger.Logger, n notify.Notifier, bus *eventbus.Bus[events.Event]) (*Manager, error) {
	if capacity == nil || clk == nil || log == nil || n == nil {
		return nil, fmt.Errorf("reservation: nil parameter provided to NewManager")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("reservation: %w", err)
	}
	m := &Manager{
		table:     make(map[string]*Reservation),
		waitlists: make(map[model.VehicleType]*waitlist),
		reminders: make(map[string]func() bool),
		policy:    policy,
		capacity:  capacity,
		clock:     clk,
		log:       log,
		notifier:  n,
		bus:       bus,
	}
	for _, t := range model.VehicleTypes {
		m.waitlists[t] = &waitlist{}
	}
	return m, nil
}

func (m *Manager) wl(t model.VehicleType) *waitlist { return m.waitlists[t] }

// CreateReservation validates the requested window and either confirms the
// reservation against available capacity or appends it to the vehicle-type
// waitlist. Duplicate requests for the same vehicle and window each create
// a distinct reservation.
func (m *Manager) CreateReservation(vehicleID string, t model.VehicleType, start, end time.Time, class CustomerClass) (Result, error) {
	if vehicleID == "" {
		return Result{Outcome: Rejected, Message: "vehicle id is required"}, fmt.Errorf("reservation: empty vehicle id")
	}
	now := m.clock.Now()
	switch {
	case start.Before(now):
		return Result{Outcome: Rejected, Message: "start time is in the past"}, fmt.Errorf("reservation: start %v before now %v", start, now)
	case !end.After(start):
		return Result{Outcome: Rejected, Message: "end time must be after start time"}, fmt.Errorf("reservation: end %v not after start %v", end, start)
	case !m.policy.ValidDuration(start, end):
		return Result{Outcome: Rejected, Message: "duration outside allowed bounds"}, fmt.Errorf("reservation: duration %v outside [%v, %v]", end.Sub(start), m.policy.MinDuration, m.policy.MaxDuration)
	case !m.policy.ValidAdvance(now, start):
		return Result{Outcome: Rejected, Message: "start time too far in advance"}, fmt.Errorf("reservation: start %v beyond booking horizon", start)
	}

	r := newByClass(now, vehicleID, t, start, end, class, m.policy.GracePeriod)

	wl := m.wl(t)
	wl.mu.Lock()
	m.mu.Lock()
	r.seq = m.seq
	m.seq++
	m.table[r.id] = r

	if m.canAllocateLocked(t, start, end) {
		if err := r.confirm(now, ""); err != nil {
			delete(m.table, r.id)
			m.mu.Unlock()
			wl.mu.Unlock()
			return Result{Outcome: Rejected, Message: "internal error"}, err
		}
		snap := r.snapshot()
		m.mu.Unlock()
		wl.mu.Unlock()

		m.scheduleReminder(r.id, vehicleID, start)
		reservationsTotal.WithLabelValues("confirmed").Inc()
		m.log.Infof("reservation %s confirmed for vehicle %s", r.id, vehicleID)
		m.notifier.Notify(vehicleID, fmt.Sprintf("Reservation %s confirmed from %s to %s", r.id, start.Format(time.RFC3339), end.Format(time.RFC3339)))
		m.publish(events.ReservationConfirmed{ReservationID: r.id, VehicleID: vehicleID})
		return Result{Outcome: Confirmed, Reservation: snap}, nil
	}

	if err := r.waitlist(); err != nil {
		delete(m.table, r.id)
		m.mu.Unlock()
		wl.mu.Unlock()
		return Result{Outcome: Rejected, Message: "internal error"}, err
	}
	wl.push(r)
	pos := wl.position(r.id)
	depth := wl.size()
	snap := r.snapshot()
	m.mu.Unlock()
	wl.mu.Unlock()

	reservationsTotal.WithLabelValues("waitlisted").Inc()
	waitlistDepth.WithLabelValues(t.String()).Set(float64(depth))
	m.log.Infof("reservation %s waitlisted for vehicle %s at position %d", r.id, vehicleID, pos)
	m.notifier.Notify(vehicleID, fmt.Sprintf("No capacity available; reservation %s waitlisted at position %d", r.id, pos))
	m.publish(events.ReservationWaitlisted{ReservationID: r.id, VehicleID: vehicleID, Position: pos})
	return Result{Outcome: Waitlisted, Reservation: snap, QueuePosition: pos}, nil
}

// canAllocateLocked is the coarse capacity check: the lot can take one more
// reservation of the type if its total space count exceeds the number of
// confirmed or active reservations overlapping the window. Callers hold the
// table lock.
func (m *Manager) canAllocateLocked(t model.VehicleType, start, end time.Time) bool {
	total := m.capacity.TotalSpaces(t)
	if total <= 0 {
		return false
	}
	overlapping := 0
	for _, r := range m.table {
		if r.vehicleType != t {
			continue
		}
		st := r.status()
		if (st == StatusConfirmed || st == StatusActive) && r.overlaps(start, end) {
			overlapping++
		}
	}
	return total-overlapping > 0
}

// Cancel cancels a reservation in any non-terminal state. A waitlisted
// reservation leaves the queue; a confirmed one frees capacity for the next
// promotion sweep.
func (m *Manager) Cancel(id, reason string) error {
	m.mu.RLock()
	r, ok := m.table[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("reservation: unknown reservation %s", id)
	}

	wl := m.wl(r.vehicleType)
	wl.mu.Lock()
	m.mu.Lock()
	err := r.cancel(reason)
	if err == nil {
		wl.remove(id)
	}
	vehicleID := r.vehicleID
	m.mu.Unlock()
	waitlistDepth.WithLabelValues(r.vehicleType.String()).Set(float64(wl.size()))
	wl.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reservation: cancel %s: %w", id, err)
	}

	m.stopReminder(id)
	reservationsTotal.WithLabelValues("cancelled").Inc()
	m.log.Infof("reservation %s cancelled: %s", id, reason)
	m.notifier.Notify(vehicleID, fmt.Sprintf("Reservation %s cancelled", id))
	return nil
}

// Activate checks the customer in. Allowed from earlyCheckIn before the
// start until the grace period lapses.
func (m *Manager) Activate(id string) error {
	now := m.clock.Now()
	m.mu.Lock()
	r, ok := m.table[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("reservation: unknown reservation %s", id)
	}
	if !r.canActivate(now) {
		st := r.status()
		m.mu.Unlock()
		return fmt.Errorf("reservation: %s cannot be activated (status %s)", id, st)
	}
	if err := r.activate(now); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("reservation: activate %s: %w", id, err)
	}
	vehicleID := r.vehicleID
	m.mu.Unlock()

	m.stopReminder(id)
	m.log.Infof("reservation %s activated for vehicle %s", id, vehicleID)
	return nil
}

// Complete finishes an active reservation, normally when the vehicle leaves.
func (m *Manager) Complete(id string) error {
	m.mu.Lock()
	r, ok := m.table[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("reservation: unknown reservation %s", id)
	}
	err := r.complete()
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("reservation: complete %s: %w", id, err)
	}
	m.log.Infof("reservation %s completed", id)
	return nil
}

// SweepExpired expires every reservation whose grace period has lapsed
// without an arrival and returns how many were expired. Waitlisted entries
// leave their queue. Run PromoteWaitlisted afterwards to hand freed
// capacity to the queues.
func (m *Manager) SweepExpired() int {
	now := m.clock.Now()

	m.mu.RLock()
	var candidates []*Reservation
	for _, r := range m.table {
		if r.expired(now) {
			candidates = append(candidates, r)
		}
	}
	m.mu.RUnlock()

	expired := 0
	for _, r := range candidates {
		wl := m.wl(r.vehicleType)
		wl.mu.Lock()
		m.mu.Lock()
		// Re-check under the lock; the state may have moved since
		// the scan.
		if !r.expired(now) {
			m.mu.Unlock()
			wl.mu.Unlock()
			continue
		}
		if err := r.expire(); err != nil {
			m.mu.Unlock()
			wl.mu.Unlock()
			continue
		}
		wl.remove(r.id)
		vehicleID := r.vehicleID
		m.mu.Unlock()
		waitlistDepth.WithLabelValues(r.vehicleType.String()).Set(float64(wl.size()))
		wl.mu.Unlock()

		m.stopReminder(r.id)
		expired++
		expiredTotal.Inc()
		m.log.Infof("reservation %s expired for vehicle %s", r.id, vehicleID)
		m.notifier.Notify(vehicleID, fmt.Sprintf("Reservation %s expired: no arrival within the grace period", r.id))
		m.publish(events.ReservationExpired{ReservationID: r.id, VehicleID: vehicleID})
	}
	return expired
}

// PromoteWaitlisted walks each waitlist in priority order and confirms
// entries while capacity allows. Heads past their grace period are expired
// and dropped so they never block the queue. Promotion is otherwise
// head-of-line blocking: when the head's window cannot be allocated the
// rest of the queue waits behind it. Returns how many reservations were
// promoted.
func (m *Manager) PromoteWaitlisted() int {
	now := m.clock.Now()
	promoted := 0
	for _, t := range model.VehicleTypes {
		wl := m.wl(t)
		wl.mu.Lock()
		for {
			head := wl.peek()
			if head == nil {
				break
			}
			m.mu.Lock()
			if head.expiresAt.Before(now) {
				// A stale head must not block the entries behind it.
				// Drop it and try the next one.
				wl.pop()
				err := head.expire()
				vehicleID, id := head.vehicleID, head.id
				m.mu.Unlock()
				if err != nil {
					continue
				}
				m.stopReminder(id)
				expiredTotal.Inc()
				m.log.Infof("reservation %s expired on the waitlist for vehicle %s", id, vehicleID)
				m.notifier.Notify(vehicleID, fmt.Sprintf("Reservation %s expired: no arrival within the grace period", id))
				m.publish(events.ReservationExpired{ReservationID: id, VehicleID: vehicleID})
				continue
			}
			if !m.canAllocateLocked(t, head.start, head.end) {
				m.mu.Unlock()
				break
			}
			if err := head.confirm(now, ""); err != nil {
				m.mu.Unlock()
				break
			}
			wl.pop()
			vehicleID, id, start := head.vehicleID, head.id, head.start
			m.mu.Unlock()

			promoted++
			promotedTotal.Inc()
			m.scheduleReminder(id, vehicleID, start)
			m.log.Infof("reservation %s promoted from waitlist for vehicle %s", id, vehicleID)
			m.notifier.Notify(vehicleID, fmt.Sprintf("Good news: reservation %s is now confirmed", id))
			m.publish(events.ReservationConfirmed{ReservationID: id, VehicleID: vehicleID, Promoted: true})
		}
		waitlistDepth.WithLabelValues(t.String()).Set(float64(wl.size()))
		wl.mu.Unlock()
	}
	return promoted
}

// Get returns a snapshot of the reservation, if known.
func (m *Manager) Get(id string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.table[id]
	if !ok {
		return Snapshot{}, false
	}
	return r.snapshot(), true
}

// WaitlistSize returns the queue depth for a vehicle type.
func (m *Manager) WaitlistSize(t model.VehicleType) int {
	wl := m.wl(t)
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return wl.size()
}

// WaitlistPosition returns the 1-based pop-order position of the
// reservation in its queue, or 0 when it is not waitlisted.
func (m *Manager) WaitlistPosition(id string) int {
	m.mu.RLock()
	r, ok := m.table[id]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	wl := m.wl(r.vehicleType)
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return wl.position(id)
}

// ActiveReservations returns snapshots of reservations covering the current
// instant, sorted by start time.
func (m *Manager) ActiveReservations() []Snapshot {
	now := m.clock.Now()
	m.mu.RLock()
	var out []Snapshot
	for _, r := range m.table {
		if r.activeAt(now) || r.status() == StatusActive {
			out = append(out, r.snapshot())
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// UpcomingReservations returns confirmed reservations starting within the
// window, sorted by start time.
func (m *Manager) UpcomingReservations(within time.Duration) []Snapshot {
	now := m.clock.Now()
	limit := now.Add(within)
	m.mu.RLock()
	var out []Snapshot
	for _, r := range m.table {
		if r.status() == StatusConfirmed && !r.start.Before(now) && r.start.Before(limit) {
			out = append(out, r.snapshot())
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// ActiveFor returns the reservation currently covering the vehicle, if any.
func (m *Manager) ActiveFor(vehicleID string) (Snapshot, bool) {
	now := m.clock.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.table {
		if r.vehicleID == vehicleID && (r.activeAt(now) || r.status() == StatusActive) {
			return r.snapshot(), true
		}
	}
	return Snapshot{}, false
}

// scheduleReminder arms an arrival reminder reminderLead before the start.
// Windows starting sooner than that get no reminder.
func (m *Manager) scheduleReminder(id, vehicleID string, start time.Time) {
	d := start.Add(-reminderLead).Sub(m.clock.Now())
	if d <= 0 {
		return
	}
	stop := m.clock.AfterFunc(d, func() {
		m.mu.RLock()
		r, ok := m.table[id]
		confirmed := ok && r.status() == StatusConfirmed
		m.mu.RUnlock()
		if confirmed {
			m.notifier.Notify(vehicleID, fmt.Sprintf("Reminder: reservation %s starts at %s", id, start.Format(time.RFC3339)))
		}
	})
	m.mu.Lock()
	m.reminders[id] = stop
	m.mu.Unlock()
}

func (m *Manager) stopReminder(id string) {
	m.mu.Lock()
	stop, ok := m.reminders[id]
	delete(m.reminders, id)
	m.mu.Unlock()
	if ok {
		stop()
	}
}

func (m *Manager) publish(e events.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}
