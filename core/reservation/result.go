package reservation

// Outcome classifies the immediate effect of a creation request.
type Outcome int

const (
	// Confirmed means a slot was available and the reservation holds it.
	Confirmed Outcome = iota
	// Waitlisted means no slot was free; the reservation queued.
	Waitlisted
	// Rejected means the request failed validation and nothing was stored.
	Rejected
)

// Result reports the outcome of CreateReservation.
type Result struct {
	Outcome     Outcome
	Reservation Snapshot
	// QueuePosition is the 1-based position in the waitlist pop order.
	// Only meaningful when Outcome is Waitlisted.
	QueuePosition int
	Message       string
}
