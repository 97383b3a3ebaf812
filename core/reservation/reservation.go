// Package reservation manages time-bounded parking reservations: policy
// validation, priority-ordered waitlists per vehicle type, and the periodic
// expiration and promotion sweeps.
package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusActive     Status = "ACTIVE"
	StatusExpired    Status = "EXPIRED"
	StatusCancelled  Status = "CANCELLED"
	StatusCompleted  Status = "COMPLETED"
	StatusWaitlisted Status = "WAITLISTED"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusCancelled || s == StatusCompleted
}

// CustomerClass maps to a fixed priority; lower numbers win.
type CustomerClass string

const (
	ClassVIP      CustomerClass = "VIP"
	ClassDisabled CustomerClass = "DISABLED"
	ClassRegular  CustomerClass = "REGULAR"
)

const (
	priorityVIP      = 1
	priorityDisabled = 2
	priorityRegular  = 5
)

// Lifecycle transition events.
const (
	eventConfirm  = "confirm"
	eventWaitlist = "waitlist"
	eventActivate = "activate"
	eventComplete = "complete"
	eventCancel   = "cancel"
	eventExpire   = "expire"
)

func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		string(StatusPending),
		fsm.Events{
			{Name: eventConfirm, Src: []string{string(StatusPending), string(StatusWaitlisted)}, Dst: string(StatusConfirmed)},
			{Name: eventWaitlist, Src: []string{string(StatusPending)}, Dst: string(StatusWaitlisted)},
			{Name: eventActivate, Src: []string{string(StatusConfirmed)}, Dst: string(StatusActive)},
			{Name: eventComplete, Src: []string{string(StatusActive)}, Dst: string(StatusCompleted)},
			{Name: eventCancel, Src: []string{string(StatusPending), string(StatusWaitlisted), string(StatusConfirmed), string(StatusActive)}, Dst: string(StatusCancelled)},
			{Name: eventExpire, Src: []string{string(StatusPending), string(StatusWaitlisted), string(StatusConfirmed)}, Dst: string(StatusExpired)},
		},
		fsm.Callbacks{},
	)
}

// earlyCheckIn is how long before the start a confirmed reservation may be
// activated.
const earlyCheckIn = 5 * time.Minute

// Reservation is one time-bounded booking. All mutation happens under the
// owning Manager's locks; external callers only ever see Snapshot copies.
type Reservation struct {
	id            string
	vehicleID     string
	vehicleType   model.VehicleType
	createdAt     time.Time
	start         time.Time
	end           time.Time
	expiresAt     time.Time
	priority      int
	customerClass CustomerClass

	lifecycle      *fsm.FSM
	allocatedSpace string
	confirmedAt    time.Time
	arrivedAt      time.Time
	failureReason  string

	// seq orders reservations created at the same instant, keeping the
	// waitlist FIFO stable under a coarse clock.
	seq uint64
}

func newReservation(now time.Time, vehicleID string, t model.VehicleType, start, end time.Time, priority int, class CustomerClass, grace time.Duration) *Reservation {
	return &Reservation{
		id:            uuid.NewString(),
		vehicleID:     vehicleID,
		vehicleType:   t,
		createdAt:     now,
		start:         start,
		end:           end,
		expiresAt:     start.Add(grace),
		priority:      priority,
		customerClass: class,
		lifecycle:     newLifecycle(),
	}
}

// newByClass maps the customer class to its fixed priority. Unknown classes
// book at regular terms.
func newByClass(now time.Time, vehicleID string, t model.VehicleType, start, end time.Time, class CustomerClass, grace time.Duration) *Reservation {
	switch class {
	case ClassVIP:
		return newReservation(now, vehicleID, t, start, end, priorityVIP, ClassVIP, grace)
	case ClassDisabled:
		return newReservation(now, vehicleID, t, start, end, priorityDisabled, ClassDisabled, grace)
	default:
		return newReservation(now, vehicleID, t, start, end, priorityRegular, ClassRegular, grace)
	}
}

func (r *Reservation) status() Status { return Status(r.lifecycle.Current()) }

func (r *Reservation) confirm(now time.Time, space string) error {
	if err := r.lifecycle.Event(context.Background(), eventConfirm); err != nil {
		return err
	}
	r.allocatedSpace = space
	r.confirmedAt = now
	return nil
}

func (r *Reservation) waitlist() error {
	return r.lifecycle.Event(context.Background(), eventWaitlist)
}

func (r *Reservation) activate(now time.Time) error {
	if err := r.lifecycle.Event(context.Background(), eventActivate); err != nil {
		return err
	}
	r.arrivedAt = now
	return nil
}

func (r *Reservation) complete() error {
	return r.lifecycle.Event(context.Background(), eventComplete)
}

func (r *Reservation) cancel(reason string) error {
	if err := r.lifecycle.Event(context.Background(), eventCancel); err != nil {
		return err
	}
	r.failureReason = reason
	return nil
}

func (r *Reservation) expire() error {
	if err := r.lifecycle.Event(context.Background(), eventExpire); err != nil {
		return err
	}
	r.failureReason = "customer did not arrive within grace period"
	return nil
}

// expired reports whether the grace period has lapsed on a reservation
// still awaiting arrival.
func (r *Reservation) expired(now time.Time) bool {
	st := r.status()
	return now.After(r.expiresAt) && (st == StatusPending || st == StatusConfirmed || st == StatusWaitlisted)
}

// activeAt reports whether the reservation covers the instant.
func (r *Reservation) activeAt(now time.Time) bool {
	st := r.status()
	return (st == StatusConfirmed || st == StatusActive) &&
		!now.Before(r.start) && now.Before(r.end)
}

// canActivate reports whether check-in is allowed: confirmed, and within
// [start − earlyCheckIn, expiresAt).
func (r *Reservation) canActivate(now time.Time) bool {
	return r.status() == StatusConfirmed &&
		!now.Before(r.start.Add(-earlyCheckIn)) &&
		now.Before(r.expiresAt)
}

// overlaps implements the open-start/open-end window test.
func (r *Reservation) overlaps(start, end time.Time) bool {
	return r.start.Before(end) && r.end.After(start)
}

// Snapshot is the externally visible copy of a reservation.
type Snapshot struct {
	ID             string
	VehicleID      string
	VehicleType    model.VehicleType
	CreatedAt      time.Time
	Start          time.Time
	End            time.Time
	ExpiresAt      time.Time
	Priority       int
	CustomerClass  CustomerClass
	Status         Status
	AllocatedSpace string
	ConfirmedAt    time.Time
	ArrivedAt      time.Time
	FailureReason  string
}

func (r *Reservation) snapshot() Snapshot {
	return Snapshot{
		ID:             r.id,
		VehicleID:      r.vehicleID,
		VehicleType:    r.vehicleType,
		CreatedAt:      r.createdAt,
		Start:          r.start,
		End:            r.end,
		ExpiresAt:      r.expiresAt,
		Priority:       r.priority,
		CustomerClass:  r.customerClass,
		Status:         r.status(),
		AllocatedSpace: r.allocatedSpace,
		ConfirmedAt:    r.confirmedAt,
		ArrivedAt:      r.arrivedAt,
		FailureReason:  r.failureReason,
	}
}
