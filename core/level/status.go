package level

import "github.com/sarkarn/parkinglotmgmt/core/model"

// Status is a read-only snapshot of a level.
type Status struct {
	Number    int
	Name      string
	LevelType Type

	TotalSpaces     int
	AvailableSpaces int
	OccupiedSpaces  int

	TotalCompact     int
	AvailableCompact int
	OccupiedCompact  int
	TotalRegular     int
	AvailableRegular int
	OccupiedRegular  int

	OccupancyRate float64
	Full          bool
	Empty         bool

	ElevatorAccess bool
	StairAccess    bool
	AllowedTypes   []model.VehicleType
}

// Status builds a snapshot of the level.
func (l *ParkingLevel) Status() Status {
	st := Status{
		Number:         l.number,
		Name:           l.name,
		LevelType:      l.levelType,
		TotalSpaces:    l.capacity,
		ElevatorAccess: l.elevatorAccess,
		StairAccess:    l.stairAccess,
		AllowedTypes:   l.AllowedVehicleTypes(),
	}
	for _, row := range l.rows {
		for _, sp := range row {
			occupied := sp.Occupied()
			if sp.Type() == model.Compact {
				st.TotalCompact++
				if occupied {
					st.OccupiedCompact++
				}
			} else {
				st.TotalRegular++
				if occupied {
					st.OccupiedRegular++
				}
			}
			if occupied {
				st.OccupiedSpaces++
			}
		}
	}
	st.AvailableSpaces = st.TotalSpaces - st.OccupiedSpaces
	st.AvailableCompact = st.TotalCompact - st.OccupiedCompact
	st.AvailableRegular = st.TotalRegular - st.OccupiedRegular
	if st.TotalSpaces > 0 {
		st.OccupancyRate = float64(st.OccupiedSpaces) / float64(st.TotalSpaces)
	}
	st.Full = st.AvailableSpaces == 0
	st.Empty = st.OccupiedSpaces == 0
	return st
}
