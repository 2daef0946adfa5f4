package crash_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routesense/routesense/internal/crash"
	"github.com/routesense/routesense/pkg/geo"
)

func TestReadDataset(t *testing.T) {
	csv := strings.Join([]string{
		"CrashFactId,Name,Latitude,Longitude,CrashDateTime,CollisionType,Lighting,Weather,FatalInjuries,SevereInjuries,ModerateInjuries,MinorInjuries,SpeedingFlag,HitAndRunFlag",
		"C-1,First & Main,37.3382,-121.8863,2024-03-01T08:15:00,Rear End,Daylight,Clear,0,1,,2,TRUE,false",
		"C-2,No coordinates,,-121.9,2024-03-02T23:00:00,Broadside,Dark,Rain,0,0,0,0,false,true",
		"C-3,Bad latitude,not-a-number,-121.9,2024-03-03T12:00:00,Sideswipe,Daylight,Clear,0,0,0,0,false,false",
		"C-4,Out of range,95.0,-121.9,2024-03-04T12:00:00,Head On,Daylight,Clear,0,0,0,0,false,false",
		"C-5,Minimal,37.34,-121.89,,,,,,,,,,",
	}, "\n")

	records, err := crash.ReadDataset(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "C-1", first.ID)
	assert.Equal(t, "First & Main", first.Name)
	assert.InDelta(t, 37.3382, first.Location.Lat, 1e-9)
	assert.InDelta(t, -121.8863, first.Location.Lon, 1e-9)
	assert.Equal(t, "Rear End", first.CollisionType)
	assert.Equal(t, crash.Injuries{Severe: 1, Minor: 2}, first.Injuries)
	assert.Equal(t, 3, first.Injuries.Total())
	assert.True(t, first.Flags.Speeding)
	assert.False(t, first.Flags.HitAndRun)

	assert.Equal(t, "C-5", records[1].ID)
	assert.Zero(t, records[1].Injuries.Total())
}

func TestReadDatasetMissingRequiredColumn(t *testing.T) {
	_, err := crash.ReadDataset(strings.NewReader("CrashFactId,Latitude\nC-1,37.3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Longitude")
}

func TestSegmentCrashesEndpointHit(t *testing.T) {
	idx := crash.BuildIndex([]crash.Record{
		{ID: "at-start", Location: geo.Point{Lat: 37.7749, Lon: -122.4194}},
	})

	crashes := idx.SegmentCrashes(crash.Segment{
		Coordinates: [][2]float64{{-122.4194, 37.7749}, {-122.4000, 37.7700}},
	}, 1, 0)

	require.Len(t, crashes, 1)
	assert.Equal(t, "at-start", crashes[0].ID)
	assert.InDelta(t, 0, crashes[0].DistanceMeters, 1e-6)
}

func TestSegmentCrashesBeyondThresholdExcluded(t *testing.T) {
	// 0.005 degrees of latitude is roughly 556m off the line.
	idx := crash.BuildIndex([]crash.Record{
		{ID: "far", Location: geo.Point{Lat: 37.7799, Lon: -122.4100}},
	})

	crashes := idx.SegmentCrashes(crash.Segment{
		Coordinates: [][2]float64{{-122.4194, 37.7749}, {-122.4000, 37.7749}},
	}, 200, 0)

	assert.Empty(t, crashes)
}

func TestSegmentCrashesSortAndTruncate(t *testing.T) {
	idx := crash.BuildIndex([]crash.Record{
		{ID: "mid", Location: geo.Point{Lat: 37.7769, Lon: -122.4100}},
		{ID: "on-line", Location: geo.Point{Lat: 37.7749, Lon: -122.4100}},
		{ID: "near", Location: geo.Point{Lat: 37.7759, Lon: -122.4100}},
	})
	seg := crash.Segment{
		Coordinates: [][2]float64{{-122.4194, 37.7749}, {-122.4000, 37.7749}},
	}

	all := idx.SegmentCrashes(seg, 300, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "on-line", all[0].ID)
	assert.Equal(t, "near", all[1].ID)
	assert.Equal(t, "mid", all[2].ID)
	assert.True(t, all[0].DistanceMeters <= all[1].DistanceMeters)
	assert.True(t, all[1].DistanceMeters <= all[2].DistanceMeters)

	capped := idx.SegmentCrashes(seg, 300, 2)
	require.Len(t, capped, 2)
	assert.Equal(t, "on-line", capped[0].ID)
}

func TestSegmentCrashesDegenerateGeometry(t *testing.T) {
	idx := crash.BuildIndex([]crash.Record{
		{ID: "x", Location: geo.Point{Lat: 37.7749, Lon: -122.4194}},
	})

	// Fewer than 2 valid coordinates.
	assert.Nil(t, idx.SegmentCrashes(crash.Segment{
		Coordinates: [][2]float64{{-122.4194, 37.7749}, {-200, 95}},
	}, 500, 0))

	// Zero-length line.
	assert.Nil(t, idx.SegmentCrashes(crash.Segment{
		Coordinates: [][2]float64{{-122.4194, 37.7749}, {-122.4194, 37.7749}},
	}, 500, 0))
}

func TestQueryAggregatesLegs(t *testing.T) {
	sf := geo.Point{Lat: 37.7749, Lon: -122.4194}
	sj := geo.Point{Lat: 37.3382, Lon: -121.8863}
	mid := geo.Midpoint(sf, sj)

	idx := crash.BuildIndex([]crash.Record{
		{ID: "midpoint", Location: mid},
	})

	result := idx.Query([]crash.Segment{
		{
			Coordinates: [][2]float64{{sf.Lon, sf.Lat}, {sj.Lon, sj.Lat}},
			LegIndex:    0,
		},
		{
			Coordinates: [][2]float64{{-122.50, 37.70}, {-122.49, 37.70}},
			LegIndex:    1,
		},
	}, 200, 10)

	assert.Equal(t, 200.0, result.ThresholdMeters)
	require.Len(t, result.Segments, 2)

	leg0, ok := result.Legs[0]
	require.True(t, ok)
	assert.Equal(t, 1, leg0.SegmentCount)
	assert.Equal(t, 1, leg0.SegmentsWithCrashes)
	assert.Equal(t, 1, leg0.TotalCloseCrashes)
	assert.InDelta(t, 0, leg0.MinDistanceMeters, 25)

	leg1, ok := result.Legs[1]
	require.True(t, ok)
	assert.Equal(t, 1, leg1.SegmentCount)
	assert.Zero(t, leg1.SegmentsWithCrashes)
	assert.Zero(t, leg1.TotalCloseCrashes)
	assert.Equal(t, -1.0, leg1.MinDistanceMeters)
}

func writeDataset(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crashes.csv")
	content := "CrashFactId,Latitude,Longitude,SevereInjuries,SpeedingFlag\n" + strings.Join(rows, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestServiceCrashesNear(t *testing.T) {
	path := writeDataset(t, "C-1,37.7749,-122.4100,1,true")
	svc := crash.NewService(crash.ServiceConfig{
		DatasetPath: path,
		Logger:      zerolog.Nop(),
	})

	result, err := svc.CrashesNear(context.Background(), []crash.Segment{
		{Coordinates: [][2]float64{{-122.4194, 37.7749}, {-122.4000, 37.7749}}},
	}, 100, 25)
	require.NoError(t, err)

	require.Len(t, result.Segments, 1)
	require.Len(t, result.Segments[0].Crashes, 1)
	assert.Equal(t, "C-1", result.Segments[0].Crashes[0].ID)

	count, err := svc.RecordCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestServiceDatasetUnavailable(t *testing.T) {
	svc := crash.NewService(crash.ServiceConfig{
		DatasetPath: filepath.Join(t.TempDir(), "missing.csv"),
		Logger:      zerolog.Nop(),
	})

	_, err := svc.CrashesNear(context.Background(), nil, 100, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, crash.ErrDatasetUnavailable))

	// The failed build is sticky until Rebuild.
	_, err = svc.RecordCount(context.Background())
	assert.True(t, errors.Is(err, crash.ErrDatasetUnavailable))
}

func TestServiceRejectsBadThreshold(t *testing.T) {
	svc := crash.NewService(crash.ServiceConfig{Logger: zerolog.Nop()})
	_, err := svc.CrashesNear(context.Background(), nil, 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
}

func TestServiceConcurrentQueries(t *testing.T) {
	path := writeDataset(t, "C-1,37.7749,-122.4100,0,false")
	svc := crash.NewService(crash.ServiceConfig{
		DatasetPath: path,
		Logger:      zerolog.Nop(),
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.CrashesNear(context.Background(), []crash.Segment{
				{Coordinates: [][2]float64{{-122.4194, 37.7749}, {-122.4000, 37.7749}}},
			}, 100, 0)
			assert.NoError(t, err)
			assert.Len(t, result.Segments, 1)
		}()
	}
	wg.Wait()
}
