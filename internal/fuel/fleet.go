package fuel

import (
	"math"
	"sort"
)

// RouteComparison is one route's fuel profile in a ranked comparison.
type RouteComparison struct {
	RouteID         string  `json:"route_id"`
	RouteName       string  `json:"route_name"`
	DistanceMiles   float64 `json:"distance_miles"`
	FuelGallons     float64 `json:"fuel_gallons"`
	FuelCostUSD     float64 `json:"fuel_cost"`
	CO2EmissionsKg  float64 `json:"co2_emissions_kg"`
	EfficiencyScore float64 `json:"efficiency_score"`
	EfficiencyRank  int     `json:"efficiency_rank"`

	// SavingsVsWorstUSD is populated on the most efficient route only.
	SavingsVsWorstUSD float64 `json:"savings_vs_worst,omitempty"`
}

// CompareRoutes ranks candidate routes by fuel efficiency for a vehicle.
// Routes are sorted by descending efficiency score (100 per gallon
// needed); the winner also reports its cost savings against the worst
// option.
func CompareRoutes(routes []RouteConditions, vehicle VehicleProfile) []RouteComparison {
	results := make([]RouteComparison, 0, len(routes))

	for _, route := range routes {
		est := Consumption(route, vehicle)

		var score float64
		if est.FuelGallons > 0 {
			score = round1(100 / est.FuelGallons)
		}

		name := route.Name
		if name == "" {
			name = "Unknown"
		}

		results = append(results, RouteComparison{
			RouteID:         route.RouteID,
			RouteName:       name,
			DistanceMiles:   route.DistanceMiles,
			FuelGallons:     est.FuelGallons,
			FuelCostUSD:     est.FuelCostUSD,
			CO2EmissionsKg:  est.CO2EmissionsKg,
			EfficiencyScore: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EfficiencyScore > results[j].EfficiencyScore
	})

	for i := range results {
		results[i].EfficiencyRank = i + 1
	}
	if len(results) > 1 {
		results[0].SavingsVsWorstUSD = round2(results[len(results)-1].FuelCostUSD - results[0].FuelCostUSD)
	}

	return results
}

// FleetVehicle pairs a vehicle profile with its fleet identity for
// aggregate metrics.
type FleetVehicle struct {
	ID      string
	Active  bool
	Profile VehicleProfile
}

// Metrics is the aggregated fuel picture across a fleet.
type Metrics struct {
	TotalFuelGallons   float64 `json:"total_fuel_gallons"`
	TotalFuelCostUSD   float64 `json:"total_fuel_cost"`
	TotalCO2Kg         float64 `json:"total_co2_emissions_kg"`
	TotalDistanceMiles float64 `json:"total_distance_miles"`
	AverageMPG         float64 `json:"average_mpg"`
	CostPerMileUSD     float64 `json:"cost_per_mile"`
}

// FleetMetrics sums fuel, cost, emissions and distance across the active
// vehicles' assigned routes (matched by route VehicleID). Division by a
// zero total yields 0 rather than an error.
func FleetMetrics(vehicles []FleetVehicle, routes []RouteConditions) Metrics {
	var m Metrics

	for _, vehicle := range vehicles {
		if !vehicle.Active {
			continue
		}

		route, ok := routeForVehicle(routes, vehicle.ID)
		if !ok {
			continue
		}

		est := Consumption(route, vehicle.Profile)
		m.TotalFuelGallons += est.FuelGallons
		m.TotalFuelCostUSD += est.FuelCostUSD
		m.TotalCO2Kg += est.CO2EmissionsKg
		m.TotalDistanceMiles += route.DistanceMiles
	}

	if m.TotalFuelGallons > 0 {
		m.AverageMPG = m.TotalDistanceMiles / m.TotalFuelGallons
	}
	if m.TotalDistanceMiles > 0 {
		m.CostPerMileUSD = m.TotalFuelCostUSD / m.TotalDistanceMiles
	}

	m.TotalFuelGallons = round2(m.TotalFuelGallons)
	m.TotalFuelCostUSD = round2(m.TotalFuelCostUSD)
	m.TotalCO2Kg = round2(m.TotalCO2Kg)
	m.TotalDistanceMiles = round2(m.TotalDistanceMiles)
	m.AverageMPG = round2(m.AverageMPG)
	m.CostPerMileUSD = round3(m.CostPerMileUSD)

	return m
}

func routeForVehicle(routes []RouteConditions, vehicleID string) (RouteConditions, bool) {
	for _, route := range routes {
		if route.VehicleID == vehicleID {
			return route, true
		}
	}
	return RouteConditions{}, false
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
