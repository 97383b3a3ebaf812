package model

// ParkingResult is the verdict of a space allocation attempt. Callers must
// check Success before trusting the space list.
type ParkingResult struct {
	Success bool
	Message string
	Spaces  []string
}

// ParkingSuccess returns a successful result holding the candidate space ids.
func ParkingSuccess(spaces ...string) ParkingResult {
	return ParkingResult{Success: true, Message: "vehicle parked successfully", Spaces: spaces}
}

// AlreadyParked reports that the vehicle already holds spaces; the parking
// path is idempotent per vehicle id.
func AlreadyParked(spaces []string) ParkingResult {
	cp := append([]string(nil), spaces...)
	return ParkingResult{Success: true, Message: "vehicle is already parked", Spaces: cp}
}

// ParkingFailure returns a failed result with a human-readable reason.
func ParkingFailure(reason string) ParkingResult {
	return ParkingResult{Success: false, Message: reason}
}
