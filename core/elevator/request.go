package elevator

import (
	"fmt"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// RequestStatus tracks the lifecycle of a movement request.
type RequestStatus int

const (
	// Waiting means no elevator is assigned yet.
	Waiting RequestStatus = iota
	// Assigned means the request is queued on a specific elevator.
	Assigned
	// InTransit means the elevator is actively pursuing the request.
	InTransit
	// Completed, Cancelled and Failed are terminal.
	Completed
	Cancelled
	Failed
)

func (s RequestStatus) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Assigned:
		return "ASSIGNED"
	case InTransit:
		return "IN_TRANSIT"
	case Completed:
		return "COMPLETED"
	case Cancelled:
		return "CANCELLED"
	case Failed:
		return "FAILED"
	}
	return fmt.Sprintf("RequestStatus(%d)", int(s))
}

// Terminal reports whether the status is final.
func (s RequestStatus) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}

// Request is one unit of work moving a vehicle between two levels. It is
// owned by the Manager's active-request table and referenced from the
// assigned elevator's queue; all mutation happens under the Manager's lock.
type Request struct {
	ID          string
	From        int
	To          int
	VehicleType model.VehicleType
	VehicleID   string
	Urgent      bool
	RequestedAt time.Time

	// ElevatorID is empty iff Status is Waiting.
	ElevatorID  string
	Status      RequestStatus
	CompletedAt time.Time
}

// assign binds the request to an elevator, or back to waiting when id is
// empty.
func (r *Request) assign(elevatorID string) {
	r.ElevatorID = elevatorID
	if elevatorID == "" {
		r.Status = Waiting
	} else {
		r.Status = Assigned
	}
}

// finish moves the request to a terminal status, stamping the completion.
func (r *Request) finish(status RequestStatus, now time.Time) {
	r.Status = status
	r.CompletedAt = now
}

// WaitTime returns how long the request has waited, using the completion
// timestamp once terminal.
func (r *Request) WaitTime(now time.Time) time.Duration {
	end := now
	if !r.CompletedAt.IsZero() {
		end = r.CompletedAt
	}
	return end.Sub(r.RequestedAt)
}

// snapshot returns a copy for external consumers.
func (r *Request) snapshot() Request { return *r }
