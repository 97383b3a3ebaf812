package reservation

import (
	"strings"
	"testing"
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/logger"
	"github.com/sarkarn/parkinglotmgmt/core/model"
	"github.com/sarkarn/parkinglotmgmt/core/notify"
	"github.com/sarkarn/parkinglotmgmt/internal/clock"
)

type fixedCapacity map[model.VehicleType]int

func (f fixedCapacity) TotalSpaces(t model.VehicleType) int { return f[t] }

func newTestManager(t *testing.T, capacity fixedCapacity) (*Manager, *clock.Mock, *notify.Recorder) {
	t.Helper()
	clk := clock.NewMock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	rec := &notify.Recorder{}
	m, err := NewManager(DefaultPolicy(), capacity, clk, logger.NopLogger{}, rec, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m, clk, rec
}

func TestNewManager_NilParams(t *testing.T) {
	clk := clock.NewMock(time.Now())
	if _, err := NewManager(DefaultPolicy(), nil, clk, logger.NopLogger{}, notify.Nop{}, nil); err == nil {
		t.Fatalf("expected error for nil capacity provider")
	}
	bad := Policy{MinDuration: time.Hour, MaxDuration: time.Minute, GracePeriod: time.Minute}
	if _, err := NewManager(bad, fixedCapacity{}, clk, logger.NopLogger{}, notify.Nop{}, nil); err == nil {
		t.Fatalf("expected error for invalid policy")
	}
}

func TestCreateReservation_Validation(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 5})
	now := clk.Now()

	cases := []struct {
		name       string
		vehicleID  string
		start, end time.Time
	}{
		{"empty vehicle id", "", now.Add(time.Hour), now.Add(2 * time.Hour)},
		{"start in past", "c1", now.Add(-time.Minute), now.Add(2 * time.Hour)},
		{"end before start", "c1", now.Add(2 * time.Hour), now.Add(time.Hour)},
		{"too short", "c1", now.Add(time.Hour), now.Add(time.Hour + 10*time.Minute)},
		{"too long", "c1", now.Add(time.Hour), now.Add(26 * time.Hour)},
		{"beyond horizon", "c1", now.Add(31 * 24 * time.Hour), now.Add(31*24*time.Hour + time.Hour)},
	}
	for _, c := range cases {
		res, err := m.CreateReservation(c.vehicleID, model.Car, c.start, c.end, ClassRegular)
		if err == nil || res.Outcome != Rejected {
			t.Errorf("%s: expected rejection, got %+v, %v", c.name, res, err)
		}
	}
}

func TestCreateReservation_ConfirmAndWaitlist(t *testing.T) {
	m, clk, rec := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	first, err := m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	if err != nil || first.Outcome != Confirmed {
		t.Fatalf("first: %+v, %v", first, err)
	}
	second, err := m.CreateReservation("c2", model.Car, start, end, ClassRegular)
	if err != nil || second.Outcome != Waitlisted || second.QueuePosition != 1 {
		t.Fatalf("second: %+v, %v", second, err)
	}
	if m.WaitlistSize(model.Car) != 1 {
		t.Fatalf("waitlist size %d", m.WaitlistSize(model.Car))
	}

	// Non-overlapping window confirms against the same space.
	later, err := m.CreateReservation("c3", model.Car, end, end.Add(time.Hour), ClassRegular)
	if err != nil || later.Outcome != Confirmed {
		t.Fatalf("later: %+v, %v", later, err)
	}

	var sawConfirm, sawWaitlist bool
	for _, n := range rec.Sent() {
		if n.RecipientID == "c1" && strings.Contains(n.Message, "confirmed") {
			sawConfirm = true
		}
		if n.RecipientID == "c2" && strings.Contains(n.Message, "waitlisted") {
			sawWaitlist = true
		}
	}
	if !sawConfirm || !sawWaitlist {
		t.Fatalf("missing notifications: %+v", rec.Sent())
	}
}

func TestCreateReservation_NoDeduplication(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	a, _ := m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	b, _ := m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	if a.Reservation.ID == b.Reservation.ID {
		t.Fatalf("identical requests must create distinct reservations")
	}
	if a.Outcome != Confirmed || b.Outcome != Waitlisted {
		t.Fatalf("outcomes: %v, %v", a.Outcome, b.Outcome)
	}
}

func TestCapacityProxy_OverlapCounting(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 2})
	t0 := clk.Now()

	// Two overlapping confirmed bookings exhaust the proxy.
	r1, _ := m.CreateReservation("c1", model.Car, t0.Add(1*time.Hour), t0.Add(4*time.Hour), ClassRegular)
	r2, _ := m.CreateReservation("c2", model.Car, t0.Add(2*time.Hour), t0.Add(5*time.Hour), ClassRegular)
	r3, _ := m.CreateReservation("c3", model.Car, t0.Add(3*time.Hour), t0.Add(4*time.Hour), ClassRegular)
	if r1.Outcome != Confirmed || r2.Outcome != Confirmed || r3.Outcome != Waitlisted {
		t.Fatalf("outcomes: %v %v %v", r1.Outcome, r2.Outcome, r3.Outcome)
	}

	// A window overlapping only one of them still fits.
	r4, _ := m.CreateReservation("c4", model.Car, t0.Add(4*time.Hour+30*time.Minute), t0.Add(6*time.Hour), ClassRegular)
	if r4.Outcome != Confirmed {
		t.Fatalf("r4: %v", r4.Outcome)
	}
}

func TestCancelFreesCapacityForPromotion(t *testing.T) {
	m, clk, rec := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	first, _ := m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	second, _ := m.CreateReservation("c2", model.Car, start, end, ClassRegular)

	if n := m.PromoteWaitlisted(); n != 0 {
		t.Fatalf("no capacity yet, promoted %d", n)
	}
	if err := m.Cancel(first.Reservation.ID, "changed plans"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n := m.PromoteWaitlisted(); n != 1 {
		t.Fatalf("promoted %d, want 1", n)
	}
	snap, ok := m.Get(second.Reservation.ID)
	if !ok || snap.Status != StatusConfirmed {
		t.Fatalf("promoted reservation: %+v", snap)
	}
	if m.WaitlistSize(model.Car) != 0 {
		t.Fatalf("waitlist not drained")
	}

	promotedMsg := false
	for _, n := range rec.Sent() {
		if n.RecipientID == "c2" && strings.Contains(n.Message, "now confirmed") {
			promotedMsg = true
		}
	}
	if !promotedMsg {
		t.Fatalf("promotion notification missing: %+v", rec.Sent())
	}
}

func TestPromotion_PriorityOrder(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	blocker, _ := m.CreateReservation("c0", model.Car, start, end, ClassRegular)
	regular, _ := m.CreateReservation("c-reg", model.Car, start, end, ClassRegular)
	clk.Advance(time.Minute)
	vip, _ := m.CreateReservation("c-vip", model.Car, start, end, ClassVIP)

	if err := m.Cancel(blocker.Reservation.ID, "freed"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n := m.PromoteWaitlisted(); n != 1 {
		t.Fatalf("promoted %d, want 1", n)
	}
	vipSnap, _ := m.Get(vip.Reservation.ID)
	regSnap, _ := m.Get(regular.Reservation.ID)
	if vipSnap.Status != StatusConfirmed {
		t.Fatalf("vip must be promoted first: %v", vipSnap.Status)
	}
	if regSnap.Status != StatusWaitlisted {
		t.Fatalf("regular must remain waitlisted: %v", regSnap.Status)
	}
}

func TestPromotion_ExpiredHeadDoesNotBlockQueue(t *testing.T) {
	m, clk, rec := newTestManager(t, fixedCapacity{model.Car: 1})
	t0 := clk.Now()

	blocker, _ := m.CreateReservation("c0", model.Car, t0.Add(time.Hour), t0.Add(5*time.Hour), ClassRegular)
	head, _ := m.CreateReservation("c-vip", model.Car, t0.Add(time.Hour), t0.Add(3*time.Hour), ClassVIP)
	tail, _ := m.CreateReservation("c-reg", model.Car, t0.Add(4*time.Hour), t0.Add(6*time.Hour), ClassRegular)
	if head.Outcome != Waitlisted || tail.Outcome != Waitlisted {
		t.Fatalf("outcomes: %v, %v", head.Outcome, tail.Outcome)
	}

	// Past the VIP head's grace but well within the tail's.
	clk.Set(t0.Add(90 * time.Minute))
	if err := m.Cancel(blocker.Reservation.ID, "freed"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if n := m.PromoteWaitlisted(); n != 1 {
		t.Fatalf("promoted %d, want 1", n)
	}

	headSnap, _ := m.Get(head.Reservation.ID)
	if headSnap.Status != StatusExpired || headSnap.FailureReason == "" {
		t.Fatalf("stale head must expire, got %+v", headSnap)
	}
	tailSnap, _ := m.Get(tail.Reservation.ID)
	if tailSnap.Status != StatusConfirmed {
		t.Fatalf("entry behind a stale head must be promoted, got %v", tailSnap.Status)
	}
	if m.WaitlistSize(model.Car) != 0 {
		t.Fatalf("waitlist size %d, want 0", m.WaitlistSize(model.Car))
	}

	expiredMsg := false
	for _, n := range rec.Sent() {
		if n.RecipientID == "c-vip" && strings.Contains(n.Message, "expired") {
			expiredMsg = true
		}
	}
	if !expiredMsg {
		t.Fatalf("expiry notification missing: %+v", rec.Sent())
	}
}

func TestCancelWaitlisted_LeavesQueue(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	queued, _ := m.CreateReservation("c2", model.Car, start, end, ClassRegular)

	if err := m.Cancel(queued.Reservation.ID, "changed plans"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if m.WaitlistSize(model.Car) != 0 {
		t.Fatalf("cancelled entry must leave the queue")
	}
	if err := m.Cancel(queued.Reservation.ID, "again"); err == nil {
		t.Fatalf("terminal reservation cannot cancel twice")
	}
	if err := m.Cancel("unknown-id", "x"); err == nil {
		t.Fatalf("unknown id must error")
	}
}

func TestSweepExpired(t *testing.T) {
	m, clk, rec := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)

	confirmed, _ := m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	waitlisted, _ := m.CreateReservation("c2", model.Car, start, end, ClassRegular)

	// Just before the grace lapses nothing expires.
	clk.Set(start.Add(14 * time.Minute))
	if n := m.SweepExpired(); n != 0 {
		t.Fatalf("premature expiry: %d", n)
	}

	clk.Set(start.Add(16 * time.Minute))
	if n := m.SweepExpired(); n != 2 {
		t.Fatalf("expired %d, want 2", n)
	}
	cSnap, _ := m.Get(confirmed.Reservation.ID)
	wSnap, _ := m.Get(waitlisted.Reservation.ID)
	if cSnap.Status != StatusExpired || wSnap.Status != StatusExpired {
		t.Fatalf("statuses: %v, %v", cSnap.Status, wSnap.Status)
	}
	if m.WaitlistSize(model.Car) != 0 {
		t.Fatalf("expired entry must leave the queue")
	}
	if cSnap.FailureReason == "" {
		t.Fatalf("expired reservation must carry a reason")
	}

	expiredMsgs := 0
	for _, n := range rec.Sent() {
		if strings.Contains(n.Message, "expired") {
			expiredMsgs++
		}
	}
	if expiredMsgs != 2 {
		t.Fatalf("expected 2 expiry notifications, got %d", expiredMsgs)
	}
}

func TestActivateAndComplete(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(time.Hour)
	end := start.Add(2 * time.Hour)
	res, _ := m.CreateReservation("c1", model.Car, start, end, ClassRegular)
	id := res.Reservation.ID

	if err := m.Activate(id); err == nil {
		t.Fatalf("activation an hour early must fail")
	}
	clk.Set(start.Add(-4 * time.Minute))
	if err := m.Activate(id); err != nil {
		t.Fatalf("early check-in: %v", err)
	}
	snap, _ := m.Get(id)
	if snap.Status != StatusActive || snap.ArrivedAt.IsZero() {
		t.Fatalf("active snapshot: %+v", snap)
	}

	if err := m.Complete(id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := m.Complete(id); err == nil {
		t.Fatalf("double completion must fail")
	}
}

func TestReminderFiresBeforeStart(t *testing.T) {
	m, clk, rec := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(2 * time.Hour)
	m.CreateReservation("c1", model.Car, start, start.Add(2*time.Hour), ClassRegular)

	clk.Advance(time.Hour)
	for _, n := range rec.Sent() {
		if strings.Contains(n.Message, "Reminder") {
			t.Fatalf("reminder fired too early")
		}
	}
	clk.Advance(46 * time.Minute) // past start - 15min
	found := false
	for _, n := range rec.Sent() {
		if n.RecipientID == "c1" && strings.Contains(n.Message, "Reminder") {
			found = true
		}
	}
	if !found {
		t.Fatalf("reminder missing: %+v", rec.Sent())
	}
}

func TestReminderSuppressedAfterCancel(t *testing.T) {
	m, clk, rec := newTestManager(t, fixedCapacity{model.Car: 1})
	start := clk.Now().Add(2 * time.Hour)
	res, _ := m.CreateReservation("c1", model.Car, start, start.Add(2*time.Hour), ClassRegular)
	if err := m.Cancel(res.Reservation.ID, "changed plans"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	clk.Advance(2 * time.Hour)
	for _, n := range rec.Sent() {
		if strings.Contains(n.Message, "Reminder") {
			t.Fatalf("reminder must not fire after cancel")
		}
	}
}

func TestAccessors(t *testing.T) {
	m, clk, _ := newTestManager(t, fixedCapacity{model.Car: 3})
	now := clk.Now()

	soon, _ := m.CreateReservation("c1", model.Car, now.Add(30*time.Minute), now.Add(2*time.Hour), ClassRegular)
	m.CreateReservation("c2", model.Car, now.Add(3*time.Hour), now.Add(5*time.Hour), ClassRegular)

	up := m.UpcomingReservations(time.Hour)
	if len(up) != 1 || up[0].ID != soon.Reservation.ID {
		t.Fatalf("upcoming: %+v", up)
	}

	clk.Set(now.Add(40 * time.Minute))
	active := m.ActiveReservations()
	if len(active) != 1 || active[0].VehicleID != "c1" {
		t.Fatalf("active: %+v", active)
	}
	got, ok := m.ActiveFor("c1")
	if !ok || got.ID != soon.Reservation.ID {
		t.Fatalf("active for c1: %+v, %t", got, ok)
	}
	if _, ok := m.ActiveFor("c2"); ok {
		t.Fatalf("c2 window not started")
	}
	if _, ok := m.Get("missing"); ok {
		t.Fatalf("unknown id must report false")
	}
}
