package sportdex

import (
	"time"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
)

// Record types shared with the service.
type (
	Installation  = facility.Facility
	Address       = facility.Address
	Location      = facility.Location
	Equipment     = facility.Equipment
	ActivityCount = facility.ActivityCount
	ScoredHit     = facility.Scored
	NearbyHit     = facility.Nearby
	Town          = town.Town
	TownLocation  = town.Resolution
)

// ImportPass summarizes one pass of a facility import.
type ImportPass struct {
	Pass      string
	Lines     int
	Written   int
	Skipped   int
	Unmatched int
	Duration  time.Duration
}

// ProjectionSync summarizes a search projection sync.
type ProjectionSync struct {
	RunID    string
	Read     int
	Written  int
	Failed   int
	Duration time.Duration
}

// TownLoad summarizes a town index load.
type TownLoad struct {
	Lines    int
	Skipped  int
	Written  int
	Failed   int
	Duration time.Duration
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status   string            // "ok", "degraded", "error"
	Checks   map[string]string // component -> "ok"/"error"
	LastSync *time.Time
}
