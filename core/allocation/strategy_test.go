package allocation

import (
	"testing"

	"github.com/sarkarn/parkinglotmgmt/core/level"
	"github.com/sarkarn/parkinglotmgmt/core/model"
)

func makeLevel(number int, t level.Type, spaces int) *level.ParkingLevel {
	row := make([]model.SpaceType, spaces)
	for i := range row {
		row[i] = model.Regular
	}
	return level.New(number, "test", t, [][]model.SpaceType{row}, true, true, model.VehicleTypes)
}

func fill(t *testing.T, l *level.ParkingLevel, n int) {
	t.Helper()
	rows := l.Rows()
	filled := 0
	for _, row := range rows {
		for _, sp := range row {
			if filled == n {
				return
			}
			if !sp.Occupied() {
				if err := l.Commit("filler-"+sp.ID(), []string{sp.ID()}); err != nil {
					t.Fatalf("commit: %v", err)
				}
				filled++
			}
		}
	}
}

func TestFindOptimalLevel_PrefersGroundForCars(t *testing.T) {
	levels := []*level.ParkingLevel{
		makeLevel(0, level.Ground, 4),
		makeLevel(1, level.Elevated, 4),
		makeLevel(-1, level.Underground, 4),
	}
	res := LevelStrategy{}.FindOptimalLevel(levels, model.Car)
	if !res.Success || res.Level.Number() != 0 {
		t.Fatalf("expected ground level, got %+v", res)
	}
}

func TestFindOptimalLevel_OccupancyShiftsChoice(t *testing.T) {
	ground := makeLevel(0, level.Ground, 4)
	elevated := makeLevel(1, level.Elevated, 4)
	// Ground at 100%: no free car space, so elevated wins outright.
	fill(t, ground, 4)
	res := LevelStrategy{}.FindOptimalLevel([]*level.ParkingLevel{ground, elevated}, model.Car)
	if !res.Success || res.Level.Number() != 1 {
		t.Fatalf("expected elevated level, got %+v", res)
	}
}

func TestFindOptimalLevel_TieGoesToFirstInOrder(t *testing.T) {
	a := makeLevel(1, level.Elevated, 4)
	b := makeLevel(2, level.Elevated, 4)
	res := LevelStrategy{}.FindOptimalLevel([]*level.ParkingLevel{a, b}, model.Car)
	if !res.Success || res.Level.Number() != 1 {
		t.Fatalf("tie must go to first level in input order, got %+v", res)
	}
}

func TestFindOptimalLevel_NoneSuitable(t *testing.T) {
	carsOnly := level.New(1, "cars", level.Elevated,
		[][]model.SpaceType{{model.Regular}}, true, false, []model.VehicleType{model.Car})
	res := LevelStrategy{}.FindOptimalLevel([]*level.ParkingLevel{carsOnly}, model.Van)
	if res.Success || res.Level != nil {
		t.Fatalf("expected failure, got %+v", res)
	}
	if res.Reason == "" {
		t.Fatalf("failure must carry a reason")
	}
}

func TestFindMultipleLevels_FiltersAndSorts(t *testing.T) {
	ground := makeLevel(0, level.Ground, 4)
	elevated := makeLevel(1, level.Elevated, 4)
	underground := makeLevel(-1, level.Underground, 4)
	fill(t, ground, 3) // only 1 free, below requirement

	got := LevelStrategy{}.FindMultipleLevels(
		[]*level.ParkingLevel{underground, ground, elevated}, model.Car, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(got))
	}
	if got[0].Number() != 1 || got[1].Number() != -1 {
		t.Fatalf("expected elevated before underground, got %d, %d", got[0].Number(), got[1].Number())
	}
}

func TestGetUtilizationStats(t *testing.T) {
	a := makeLevel(0, level.Ground, 4)
	b := makeLevel(1, level.Elevated, 4)
	fill(t, a, 4)
	fill(t, b, 2)

	st := LevelStrategy{}.GetUtilizationStats([]*level.ParkingLevel{a, b})
	if st.TotalSpaces != 8 || st.OccupiedSpaces != 6 {
		t.Fatalf("totals: %+v", st)
	}
	if st.OverallOccupancy != 0.75 || st.AverageOccupancy != 0.75 {
		t.Fatalf("occupancy: %+v", st)
	}
	if st.MostOccupied != a || st.LeastOccupied != b {
		t.Fatalf("extremes wrong")
	}
	if st.Variance != 0.5 {
		t.Fatalf("variance = %f, want 0.5", st.Variance)
	}
}

func TestGetUtilizationStats_Empty(t *testing.T) {
	st := LevelStrategy{}.GetUtilizationStats(nil)
	if st.TotalSpaces != 0 || st.MostOccupied != nil {
		t.Fatalf("expected zero stats, got %+v", st)
	}
}
