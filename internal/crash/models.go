// Package crash loads a historical crash dataset and answers
// proximity queries against route geometry via a planar spatial index.
package crash

import (
	"github.com/routesense/routesense/pkg/geo"
)

// Injuries is the per-crash injury tally broken out by severity.
type Injuries struct {
	Fatal    int `json:"fatal"`
	Severe   int `json:"severe"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
}

// Total is the sum of all four injury categories.
func (i Injuries) Total() int {
	return i.Fatal + i.Severe + i.Moderate + i.Minor
}

// Flags carries the boolean attributes recorded against a crash.
type Flags struct {
	Speeding  bool `json:"speeding"`
	HitAndRun bool `json:"hit_and_run"`
}

// Record is one historical crash, parsed from the dataset.
type Record struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name,omitempty"`
	Location               geo.Point `json:"location"`
	DateTime               string    `json:"datetime,omitempty"`
	CollisionType          string    `json:"collision_type,omitempty"`
	PrimaryCollisionFactor string    `json:"primary_collision_factor,omitempty"`
	Lighting               string    `json:"lighting,omitempty"`
	Weather                string    `json:"weather,omitempty"`
	AStreetName            string    `json:"a_street_name,omitempty"`
	BStreetName            string    `json:"b_street_name,omitempty"`
	Injuries               Injuries  `json:"injuries"`
	Flags                  Flags     `json:"flags"`
}

// Segment is one piece of route geometry to check for nearby crashes.
// Coordinates are [longitude, latitude] pairs in the order produced by
// routing providers.
type Segment struct {
	Coordinates [][2]float64 `json:"coordinates"`
	LegIndex    int          `json:"leg_index"`
	StepIndex   int          `json:"step_index"`
}

// NearbyCrash is a crash record matched to a segment, with the exact
// perpendicular distance from the segment's polyline.
type NearbyCrash struct {
	Record
	DistanceMeters float64 `json:"distance_meters"`
}

// SegmentResult is the per-segment outcome of a proximity query.
type SegmentResult struct {
	LegIndex  int           `json:"leg_index"`
	StepIndex int           `json:"step_index"`
	Crashes   []NearbyCrash `json:"crashes"`
}

// LegSummary aggregates segment results that share a leg index.
// MinDistanceMeters is -1 when the leg has no nearby crashes.
type LegSummary struct {
	SegmentCount        int     `json:"segment_count"`
	SegmentsWithCrashes int     `json:"segments_with_crashes"`
	TotalCloseCrashes   int     `json:"total_close_crashes"`
	MinDistanceMeters   float64 `json:"min_distance_meters"`
}

// Result is the full answer to a crashesNear query.
type Result struct {
	ThresholdMeters float64            `json:"threshold_meters"`
	Segments        []SegmentResult    `json:"segments"`
	Legs            map[int]LegSummary `json:"legs"`
}
