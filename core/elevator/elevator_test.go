package elevator

import (
	"testing"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

func TestCanServe_Preconditions(t *testing.T) {
	e := NewElevator("E1", []int{0, 1, 2}, 2, false, 0)
	if !e.CanServe(0, 2, model.Car) {
		t.Fatalf("expected eligible")
	}
	if e.CanServe(0, 3, model.Car) {
		t.Errorf("unserved destination must reject")
	}
	if e.CanServe(3, 0, model.Car) {
		t.Errorf("unserved origin must reject")
	}
	if e.CanServe(0, 2, model.Van) {
		t.Errorf("van on non-van elevator must reject")
	}
	e.setMaintenance(true)
	if e.CanServe(0, 2, model.Car) {
		t.Errorf("maintenance must reject")
	}
}

func TestCanServe_FullElevator(t *testing.T) {
	e := NewElevator("E1", []int{0, 1}, 1, false, 0)
	e.occupants["v1"] = struct{}{}
	if e.CanServe(0, 1, model.Car) {
		t.Fatalf("full elevator must reject")
	}
}

func TestTick_FullDeliveryCycle(t *testing.T) {
	e := NewElevator("E1", []int{0, 1, 2}, 2, false, 0)
	r := &Request{ID: "REQ-1", From: 0, To: 2, VehicleType: model.Car, VehicleID: "c1", Status: Waiting}
	if !e.enqueue(r) {
		t.Fatalf("enqueue failed")
	}
	now := time.Now()

	// Already at the pickup floor: first tick loads.
	e.Tick(now)
	if e.State() != Loading || len(e.Occupants()) != 1 {
		t.Fatalf("after load: state %v, occupants %v", e.State(), e.Occupants())
	}
	if r.Status != InTransit {
		t.Fatalf("request status %v, want IN_TRANSIT", r.Status)
	}

	// One floor per tick toward the destination.
	e.Tick(now)
	if e.CurrentFloor() != 1 || e.State() != Moving {
		t.Fatalf("after first move: floor %d, state %v", e.CurrentFloor(), e.State())
	}
	e.Tick(now)
	if e.CurrentFloor() != 2 {
		t.Fatalf("after second move: floor %d", e.CurrentFloor())
	}

	// Arrival tick unloads and completes.
	e.Tick(now)
	if r.Status != Completed || len(e.Occupants()) != 0 || e.State() != Idle {
		t.Fatalf("after unload: status %v, occupants %v, state %v", r.Status, e.Occupants(), e.State())
	}
	if r.CompletedAt.IsZero() {
		t.Fatalf("completion must be stamped")
	}
}

func TestTick_MovesToPickupFirst(t *testing.T) {
	e := NewElevator("E1", []int{0, 1, 2}, 2, false, 2)
	r := &Request{ID: "REQ-1", From: 0, To: 1, VehicleType: model.Car, VehicleID: "c1", Status: Waiting}
	e.enqueue(r)
	now := time.Now()

	e.Tick(now) // 2 -> 1
	e.Tick(now) // 1 -> 0
	if e.CurrentFloor() != 0 {
		t.Fatalf("floor %d, want 0", e.CurrentFloor())
	}
	e.Tick(now) // load
	if len(e.Occupants()) != 1 {
		t.Fatalf("expected loaded vehicle")
	}
	// Pickup equals a floor already passed; the elevator must keep
	// heading to the destination, not oscillate back.
	e.Tick(now) // 0 -> 1
	if e.CurrentFloor() != 1 {
		t.Fatalf("floor %d, want 1", e.CurrentFloor())
	}
	e.Tick(now) // unload
	if r.Status != Completed {
		t.Fatalf("status %v, want COMPLETED", r.Status)
	}
}

func TestTick_QueueChaining(t *testing.T) {
	e := NewElevator("E1", []int{0, 1}, 2, false, 0)
	r1 := &Request{ID: "REQ-1", From: 0, To: 1, VehicleType: model.Car, VehicleID: "c1", Status: Waiting}
	r2 := &Request{ID: "REQ-2", From: 1, To: 0, VehicleType: model.Car, VehicleID: "c2", Status: Waiting}
	e.enqueue(r1)
	e.enqueue(r2)
	now := time.Now()

	e.Tick(now) // load c1
	e.Tick(now) // 0 -> 1
	e.Tick(now) // unload c1
	if r1.Status != Completed {
		t.Fatalf("r1 status %v", r1.Status)
	}
	if e.State() != Moving {
		t.Fatalf("queue pending: state %v, want MOVING", e.State())
	}
	e.Tick(now) // pop r2, already at pickup: load c2
	if len(e.Occupants()) != 1 || r2.Status != InTransit {
		t.Fatalf("r2 not in service: %v, occupants %v", r2.Status, e.Occupants())
	}
}

func TestTick_MaintenanceFreezes(t *testing.T) {
	e := NewElevator("E1", []int{0, 1}, 2, false, 0)
	r := &Request{ID: "REQ-1", From: 0, To: 1, VehicleType: model.Car, VehicleID: "c1", Status: Waiting}
	e.enqueue(r)
	e.setMaintenance(true)
	e.Tick(time.Now())
	if r.Status == InTransit || len(e.Occupants()) != 0 {
		t.Fatalf("maintenance elevator must not progress: %v", r.Status)
	}
}

func TestClearRequests(t *testing.T) {
	e := NewElevator("E1", []int{0, 1}, 2, false, 0)
	r1 := &Request{ID: "REQ-1", From: 0, To: 1, VehicleType: model.Car, VehicleID: "c1", Status: Waiting}
	r2 := &Request{ID: "REQ-2", From: 0, To: 1, VehicleType: model.Car, VehicleID: "c2", Status: Waiting}
	e.enqueue(r1)
	e.enqueue(r2)
	e.Tick(time.Now()) // r1 becomes current

	cleared := e.clearRequests()
	if len(cleared) != 2 {
		t.Fatalf("cleared %d requests, want 2", len(cleared))
	}
	if e.QueueLength() != 0 || e.State() != Idle {
		t.Fatalf("queue %d, state %v", e.QueueLength(), e.State())
	}
}
