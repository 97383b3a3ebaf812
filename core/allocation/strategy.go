// Package allocation selects parking levels for incoming vehicles using the
// per-level priority score.
package allocation

import (
	"fmt"
	"sort"

	"github.com/sarkarn/parkinglotmgmt/core/level"
	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// OptimalLevelResult is the verdict of a level search.
type OptimalLevelResult struct {
	Success bool
	Level   *level.ParkingLevel
	Reason  string
}

// LevelStrategy scores suitable levels and picks the cheapest one. It holds
// no state; all decisions are pure reads over the level collection.
type LevelStrategy struct{}

func suitable(l *level.ParkingLevel, t model.VehicleType) bool {
	return l.Accommodates(t) && l.HasAccess(t) && l.AvailableFor(t) > 0
}

// FindOptimalLevel returns the suitable level with the minimum priority
// score. Ties go to the first minimum in input order, so callers should
// pass levels in a deterministic (level-number ascending) order.
func (LevelStrategy) FindOptimalLevel(levels []*level.ParkingLevel, t model.VehicleType) OptimalLevelResult {
	var best *level.ParkingLevel
	bestScore := level.Unsuitable
	for _, l := range levels {
		if !suitable(l, t) {
			continue
		}
		if score := l.PriorityScore(t); score < bestScore {
			best = l
			bestScore = score
		}
	}
	if best == nil {
		return OptimalLevelResult{Reason: fmt.Sprintf("no suitable levels available for %s", t)}
	}
	return OptimalLevelResult{
		Success: true,
		Level:   best,
		Reason: fmt.Sprintf("selected %s (level %d), score %d, %d spaces available",
			best.Name(), best.Number(), bestScore, best.AvailableFor(t)),
	}
}

// FindMultipleLevels returns every suitable level with at least
// requiredSpaces free capacity for the type, sorted ascending by score.
// Used for fleet placement, not the single-vehicle flow.
func (LevelStrategy) FindMultipleLevels(levels []*level.ParkingLevel, t model.VehicleType, requiredSpaces int) []*level.ParkingLevel {
	var out []*level.ParkingLevel
	for _, l := range levels {
		if l.Accommodates(t) && l.HasAccess(t) && l.AvailableFor(t) >= requiredSpaces {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore(t) < out[j].PriorityScore(t)
	})
	return out
}
