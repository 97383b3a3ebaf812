package model

import "testing"

func TestParkingSpace_OccupyVacate(t *testing.T) {
	sp := NewParkingSpace("L1-R1-1", Regular)
	if sp.Occupied() {
		t.Fatalf("new space must be free")
	}
	sp.Occupy("car-1")
	if !sp.Occupied() || sp.OccupiedBy() != "car-1" {
		t.Fatalf("expected occupied by car-1, got %q", sp.OccupiedBy())
	}
	if !sp.Vacate() {
		t.Fatalf("vacate of occupied space must report true")
	}
	if sp.Vacate() {
		t.Fatalf("vacate of free space must report false")
	}
}

func TestParkingSpace_DoubleOccupyPanics(t *testing.T) {
	sp := NewParkingSpace("L1-R1-1", Compact)
	sp.Occupy("car-1")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double occupy")
		}
	}()
	sp.Occupy("car-2")
}

func TestParkingSpace_SuitableFor(t *testing.T) {
	cases := []struct {
		space   SpaceType
		vehicle VehicleType
		want    bool
	}{
		{Compact, Motorcycle, true},
		{Regular, Motorcycle, true},
		{Compact, Car, true},
		{Regular, Car, true},
		{Compact, Van, false},
		{Regular, Van, true},
	}
	for _, c := range cases {
		sp := NewParkingSpace("s", c.space)
		if got := sp.SuitableFor(c.vehicle); got != c.want {
			t.Errorf("%v in %v: got %t, want %t", c.vehicle, c.space, got, c.want)
		}
	}
}

func TestParseVehicleType(t *testing.T) {
	for _, vt := range VehicleTypes {
		got, err := ParseVehicleType(vt.String())
		if err != nil || got != vt {
			t.Errorf("round trip %v failed: %v %v", vt, got, err)
		}
	}
	if _, err := ParseVehicleType("BICYCLE"); err == nil {
		t.Errorf("expected error for unknown type")
	}
}

func TestVehicle_Validate(t *testing.T) {
	if err := (Vehicle{ID: "v1", Type: Car}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Vehicle{Type: Car}).Validate(); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
