package model

import "fmt"

// VehicleType enumerates the vehicle classes the lot accepts. The set is
// closed; every switch over it must handle all three values.
type VehicleType int

const (
	Motorcycle VehicleType = iota
	Car
	Van
)

// VehicleTypes lists all vehicle types in a stable order.
var VehicleTypes = []VehicleType{Motorcycle, Car, Van}

func (t VehicleType) String() string {
	switch t {
	case Motorcycle:
		return "MOTORCYCLE"
	case Car:
		return "CAR"
	case Van:
		return "VAN"
	}
	return fmt.Sprintf("VehicleType(%d)", int(t))
}

// ParseVehicleType converts a string to a VehicleType.
func ParseVehicleType(s string) (VehicleType, error) {
	switch s {
	case "MOTORCYCLE":
		return Motorcycle, nil
	case "CAR":
		return Car, nil
	case "VAN":
		return Van, nil
	}
	return 0, fmt.Errorf("unknown vehicle type %q", s)
}

// Vehicle identifies a client of the lot.
type Vehicle struct {
	ID   string
	Type VehicleType
}

// Validate checks that the vehicle is usable as an allocation client.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id must not be empty")
	}
	return nil
}
