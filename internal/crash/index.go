package crash

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"

	"github.com/routesense/routesense/pkg/geo"
)

// Index is an immutable spatial index over projected crash locations.
// The R-tree stores integer offsets into the records slice, so a hit
// found by envelope search maps back to its metadata without touching
// the tree again. Once built an Index is read-only and safe for
// concurrent queries.
type Index struct {
	records    []Record
	projection geo.Projection
	tree       rtree.RTreeG[int]
}

// BuildIndex projects every record onto a local planar system centered
// on the dataset's mean latitude and inserts it into an R-tree.
func BuildIndex(records []Record) *Index {
	var sumLat float64
	for _, r := range records {
		sumLat += r.Location.Lat
	}
	refLat := 0.0
	if len(records) > 0 {
		refLat = sumLat / float64(len(records))
	}

	idx := &Index{
		records:    records,
		projection: geo.NewProjection(refLat),
	}
	for i, r := range records {
		pt := idx.projection.Project(r.Location)
		min := [2]float64{pt[0], pt[1]}
		idx.tree.Insert(min, min, i)
	}
	return idx
}

// Len reports the number of indexed crash records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// SegmentCrashes finds every crash within thresholdMeters of the
// segment's polyline, sorted by ascending distance. maxPerSegment
// truncates the result when positive; zero or negative disables
// truncation. Segments with fewer than 2 valid coordinates, or whose
// projected line has zero length, yield nil.
func (idx *Index) SegmentCrashes(seg Segment, thresholdMeters float64, maxPerSegment int) []NearbyCrash {
	points := make([]geo.Point, 0, len(seg.Coordinates))
	for _, c := range seg.Coordinates {
		p := geo.Point{Lat: c[1], Lon: c[0]}
		if p.Validate() != nil {
			continue
		}
		points = append(points, p)
	}
	if len(points) < 2 {
		return nil
	}

	line := idx.projection.ProjectLine(points)
	if planarLength(line) == 0 {
		return nil
	}

	// Candidate pass: every point inside the line's envelope padded by
	// the threshold. The exact distance check below discards corner
	// candidates the padding lets through.
	bound := line.Bound()
	min := [2]float64{bound.Min[0] - thresholdMeters, bound.Min[1] - thresholdMeters}
	max := [2]float64{bound.Max[0] + thresholdMeters, bound.Max[1] + thresholdMeters}

	var nearby []NearbyCrash
	idx.tree.Search(min, max, func(_, _ [2]float64, i int) bool {
		pt := idx.projection.Project(idx.records[i].Location)
		dist := planar.DistanceFrom(line, pt)
		if dist <= thresholdMeters {
			nearby = append(nearby, NearbyCrash{
				Record:         idx.records[i],
				DistanceMeters: dist,
			})
		}
		return true
	})

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	if maxPerSegment > 0 && len(nearby) > maxPerSegment {
		nearby = nearby[:maxPerSegment]
	}
	return nearby
}

// Query runs SegmentCrashes over every segment and aggregates a
// per-leg summary keyed by the caller-supplied leg index.
func (idx *Index) Query(segments []Segment, thresholdMeters float64, maxPerSegment int) Result {
	result := Result{
		ThresholdMeters: thresholdMeters,
		Segments:        make([]SegmentResult, 0, len(segments)),
		Legs:            make(map[int]LegSummary),
	}

	for _, seg := range segments {
		crashes := idx.SegmentCrashes(seg, thresholdMeters, maxPerSegment)
		result.Segments = append(result.Segments, SegmentResult{
			LegIndex:  seg.LegIndex,
			StepIndex: seg.StepIndex,
			Crashes:   crashes,
		})

		summary, ok := result.Legs[seg.LegIndex]
		if !ok {
			summary.MinDistanceMeters = -1
		}
		summary.SegmentCount++
		if len(crashes) > 0 {
			summary.SegmentsWithCrashes++
			summary.TotalCloseCrashes += len(crashes)
			if summary.MinDistanceMeters < 0 || crashes[0].DistanceMeters < summary.MinDistanceMeters {
				summary.MinDistanceMeters = crashes[0].DistanceMeters
			}
		}
		result.Legs[seg.LegIndex] = summary
	}

	return result
}

func planarLength(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += math.Hypot(line[i][0]-line[i-1][0], line[i][1]-line[i-1][1])
	}
	return total
}
