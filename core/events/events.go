// Package events defines the domain events published on the internal bus.
package events

import (
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// Event is any domain event carried by the bus.
type Event any

// ElevatorRequested is published when a new movement request enters the system.
type ElevatorRequested struct {
	RequestID  string
	VehicleID  string
	Type       model.VehicleType
	From, To   int
	ElevatorID string // empty when the request starts out waiting
	Urgent     bool
}

// RequestCompleted is published when an elevator finishes a request.
type RequestCompleted struct {
	RequestID  string
	VehicleID  string
	ElevatorID string
	Wait       time.Duration
}

// ReservationConfirmed is published when a reservation obtains capacity,
// either immediately or through waitlist promotion.
type ReservationConfirmed struct {
	ReservationID string
	VehicleID     string
	Promoted      bool
}

// ReservationWaitlisted is published when creation could not allocate.
type ReservationWaitlisted struct {
	ReservationID string
	VehicleID     string
	Position      int
}

// ReservationExpired is published by the expiration sweep.
type ReservationExpired struct {
	ReservationID string
	VehicleID     string
}

// Notification mirrors a message handed to the notification sink.
type Notification struct {
	RecipientID string
	Message     string
}
