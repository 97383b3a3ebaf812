package elevator

import (
	"time"

	"github.com/sarkarn/parkinglotmgmt/core/model"
)

// Status is a read-only snapshot of one elevator.
type Status struct {
	ID               string
	CurrentFloor     int
	State            State
	Maintenance      bool
	Occupants        int
	Capacity         int
	QueueLength      int
	ServedLevels     []int
	VanCompatible    bool
	LastTick         time.Time
	CurrentRequestID string
}

// SystemStats aggregates the manager's view of the fleet and the tracked
// requests. AverageWait covers only requests that have ever been assigned;
// UnassignedRequests makes the censoring visible.
type SystemStats struct {
	TotalRequests      int
	TotalElevators     int
	ActiveElevators    int
	AverageWait        time.Duration
	UrgentRequests     int
	UnassignedRequests int
	RequestsByType     map[model.VehicleType]int
}
