package crash

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/routesense/routesense/pkg/geo"
)

// Dataset column names. Latitude and Longitude are required; every
// other column is optional and defaults to its zero value.
const (
	colLatitude  = "Latitude"
	colLongitude = "Longitude"

	colCrashFactID            = "CrashFactId"
	colName                   = "Name"
	colCrashDateTime          = "CrashDateTime"
	colCollisionType          = "CollisionType"
	colPrimaryCollisionFactor = "PrimaryCollisionFactor"
	colLighting               = "Lighting"
	colWeather                = "Weather"
	colAStreetName            = "AStreetName"
	colBStreetName            = "BStreetName"
	colFatalInjuries          = "FatalInjuries"
	colSevereInjuries         = "SevereInjuries"
	colModerateInjuries       = "ModerateInjuries"
	colMinorInjuries          = "MinorInjuries"
	colSpeedingFlag           = "SpeedingFlag"
	colHitAndRunFlag          = "HitAndRunFlag"
)

// LoadDataset reads crash records from a CSV file. Rows with missing
// or unparsable coordinates are skipped; optional numeric and boolean
// columns fall back to zero values on parse failure.
func LoadDataset(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening crash dataset: %w", err)
	}
	defer f.Close()

	records, err := ReadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("reading crash dataset %s: %w", path, err)
	}
	return records, nil
}

// ReadDataset parses crash records from CSV content.
func ReadDataset(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols[colLatitude]; !ok {
		return nil, fmt.Errorf("dataset missing required column %q", colLatitude)
	}
	if _, ok := cols[colLongitude]; !ok {
		return nil, fmt.Errorf("dataset missing required column %q", colLongitude)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		lat, latErr := strconv.ParseFloat(field(colLatitude), 64)
		lon, lonErr := strconv.ParseFloat(field(colLongitude), 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		point := geo.Point{Lat: lat, Lon: lon}
		if err := point.Validate(); err != nil {
			continue
		}

		records = append(records, Record{
			ID:                     field(colCrashFactID),
			Name:                   field(colName),
			Location:               point,
			DateTime:               field(colCrashDateTime),
			CollisionType:          field(colCollisionType),
			PrimaryCollisionFactor: field(colPrimaryCollisionFactor),
			Lighting:               field(colLighting),
			Weather:                field(colWeather),
			AStreetName:            field(colAStreetName),
			BStreetName:            field(colBStreetName),
			Injuries: Injuries{
				Fatal:    parseCount(field(colFatalInjuries)),
				Severe:   parseCount(field(colSevereInjuries)),
				Moderate: parseCount(field(colModerateInjuries)),
				Minor:    parseCount(field(colMinorInjuries)),
			},
			Flags: Flags{
				Speeding:  parseFlag(field(colSpeedingFlag)),
				HitAndRun: parseFlag(field(colHitAndRunFlag)),
			},
		})
	}

	return records, nil
}

// parseCount reads an integer column, treating blanks and garbage as 0.
func parseCount(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseFlag matches the dataset's string booleans, case-insensitively.
func parseFlag(s string) bool {
	return strings.EqualFold(s, "true")
}
