// Package notify defines the notification sink consumed by the reservation
// manager. Delivery is fire-and-forget; the core never waits on it.
package notify

import (
	"sync"

	"github.com/sarkarn/parkinglotmgmt/core/events"
	"github.com/sarkarn/parkinglotmgmt/internal/eventbus"
)

// Notifier delivers a message to a recipient. No delivery guarantee is
// required by the core.
type Notifier interface {
	Notify(recipientID, message string)
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) {}

// BusNotifier republishes notifications as events on the internal bus.
type BusNotifier struct {
	Bus *eventbus.Bus[events.Event]
}

func (n BusNotifier) Notify(recipientID, message string) {
	if n.Bus == nil {
		return
	}
	n.Bus.Publish(events.Notification{RecipientID: recipientID, Message: message})
}

// Recorder captures notifications for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []events.Notification
}

func (r *Recorder) Notify(recipientID, message string) {
	r.mu.Lock()
	r.sent = append(r.sent, events.Notification{RecipientID: recipientID, Message: message})
	r.mu.Unlock()
}

// Sent returns a copy of the captured notifications.
func (r *Recorder) Sent() []events.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Notification(nil), r.sent...)
}
