package lot

import (
	"github.com/sarkarn/parkinglotmgmt/core/level"
)

// Status aggregates the per-level snapshots into a lot-wide view.
type Status struct {
	Levels          []level.Status
	TotalSpaces     int
	OccupiedSpaces  int
	AvailableSpaces int
	OccupancyRate   float64
	ParkedVehicles  int
}

// Status snapshots every level and the lot totals.
func (p *ParkingLot) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{ParkedVehicles: len(p.parked)}
	for _, l := range p.levels {
		ls := l.Status()
		st.Levels = append(st.Levels, ls)
		st.TotalSpaces += ls.TotalSpaces
		st.OccupiedSpaces += ls.OccupiedSpaces
	}
	st.AvailableSpaces = st.TotalSpaces - st.OccupiedSpaces
	if st.TotalSpaces > 0 {
		st.OccupancyRate = float64(st.OccupiedSpaces) / float64(st.TotalSpaces)
	}
	return st
}
