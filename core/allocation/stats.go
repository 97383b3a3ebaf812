package allocation

import (
	"gonum.org/v1/gonum/stat"

	"github.com/sarkarn/parkinglotmgmt/core/level"
)

// UtilizationStats aggregates occupancy across levels. Variance is the
// spread between the most and least occupied level, not a statistical
// variance.
type UtilizationStats struct {
	TotalSpaces      int
	OccupiedSpaces   int
	OverallOccupancy float64
	AverageOccupancy float64
	MostOccupied     *level.ParkingLevel
	LeastOccupied    *level.ParkingLevel
	Variance         float64
}

// GetUtilizationStats computes occupancy statistics over the levels. Pure
// read-side reporting, no side effects.
func (LevelStrategy) GetUtilizationStats(levels []*level.ParkingLevel) UtilizationStats {
	if len(levels) == 0 {
		return UtilizationStats{}
	}

	var st UtilizationStats
	rates := make([]float64, 0, len(levels))
	minRate, maxRate := 2.0, -1.0
	for _, l := range levels {
		total := l.TotalSpaces()
		occupied := l.OccupiedSpaces()
		st.TotalSpaces += total
		st.OccupiedSpaces += occupied
		rate := 0.0
		if total > 0 {
			rate = float64(occupied) / float64(total)
		}
		rates = append(rates, rate)
		if rate > maxRate {
			maxRate = rate
			st.MostOccupied = l
		}
		if rate < minRate {
			minRate = rate
			st.LeastOccupied = l
		}
	}
	st.AverageOccupancy = stat.Mean(rates, nil)
	if st.TotalSpaces > 0 {
		st.OverallOccupancy = float64(st.OccupiedSpaces) / float64(st.TotalSpaces)
	}
	st.Variance = maxRate - minRate
	return st
}
