// Package fuel estimates fuel consumption, cost and emissions for routes
// by adjusting a vehicle's base MPG with weather, traffic, cargo, speed
// and elevation factors.
package fuel

import (
	"math"

	"github.com/routesense/routesense/internal/conditions"
)

// Defaults applied when route or vehicle data omit a value.
const (
	DefaultCityDrivingPercent = 50.0
	DefaultFuelPricePerGallon = 3.50
	DefaultMPGCity            = 18.0
	DefaultMPGHighway         = 25.0

	// Emission constants: liters per US gallon and kg CO2 per liter of
	// gasoline.
	litersPerGallon = 3.785
	co2KgPerLiter   = 2.31
)

// weatherImpact maps a weather condition to its fuel consumption
// multiplier (values above 1 mean more fuel burned).
var weatherImpact = map[string]float64{
	"clear":      1.0,
	"rain":       1.08,
	"light_rain": 1.04,
	"heavy_rain": 1.12,
	"snow":       1.15,
	"fog":        1.05,
	"wind":       1.06,
}

// trafficImpact maps a congestion level to its consumption multiplier.
var trafficImpact = map[string]float64{
	"light":      1.0,
	"moderate":   1.15,
	"heavy":      1.30,
	"standstill": 1.45,
}

// cargoPenaltyPer1000Lbs is the consumption increase per 1000 lbs of
// cargo.
const cargoPenaltyPer1000Lbs = 0.05

// RouteConditions describes one candidate route for fuel estimation.
type RouteConditions struct {
	RouteID   string `json:"route_id,omitempty"`
	Name      string `json:"name,omitempty"`
	VehicleID string `json:"vehicle_id,omitempty"`

	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`

	// CityDrivingPercent is the share of the route driven in city
	// conditions, 0-100. Defaults to 50.
	CityDrivingPercent *float64 `json:"city_driving_percentage,omitempty"`

	// AverageSpeedMPH defaults to 55.
	AverageSpeedMPH *float64 `json:"average_speed_mph,omitempty"`

	ElevationGainFt float64 `json:"elevation_gain_ft,omitempty"`

	// FuelPricePerGallon defaults to 3.50 USD.
	FuelPricePerGallon float64 `json:"fuel_price_per_gallon,omitempty"`

	Weather conditions.Weather `json:"weather,omitempty"`
	Traffic conditions.Traffic `json:"traffic,omitempty"`
}

func (r RouteConditions) cityPercent() float64 {
	if r.CityDrivingPercent == nil {
		return DefaultCityDrivingPercent
	}
	return *r.CityDrivingPercent
}

func (r RouteConditions) averageSpeed() float64 {
	if r.AverageSpeedMPH == nil {
		return conditions.DefaultAverageSpeedMPH
	}
	return *r.AverageSpeedMPH
}

func (r RouteConditions) fuelPrice() float64 {
	if r.FuelPricePerGallon == 0 {
		return DefaultFuelPricePerGallon
	}
	return r.FuelPricePerGallon
}

// VehicleProfile is the vehicle data needed for a fuel estimate. It is
// immutable for the duration of a calculation.
type VehicleProfile struct {
	MPGCity             float64 `json:"mpg_city"`
	MPGHighway          float64 `json:"mpg_highway"`
	CargoWeightLbs      float64 `json:"cargo_weight_lbs"`
	FuelCapacityGallons float64 `json:"fuel_capacity_gallons,omitempty"`
}

// Factors is the efficiency impact of each adjustment factor, expressed
// as a percentage deviation from neutral (positive = efficiency lost).
type Factors struct {
	WeatherImpactPct   float64 `json:"weather_impact"`
	TrafficImpactPct   float64 `json:"traffic_impact"`
	CargoImpactPct     float64 `json:"cargo_impact"`
	SpeedImpactPct     float64 `json:"speed_impact"`
	ElevationImpactPct float64 `json:"elevation_impact"`
}

// Estimate is the fuel consumption estimate for one route and vehicle.
type Estimate struct {
	BaseMPG        float64  `json:"base_mpg"`
	AdjustedMPG    float64  `json:"adjusted_mpg"`
	FuelGallons    float64  `json:"fuel_gallons_needed"`
	FuelCostUSD    float64  `json:"fuel_cost_usd"`
	CO2EmissionsKg float64  `json:"co2_emissions_kg"`
	Factors        Factors  `json:"efficiency_factors"`
	Suggestions    []string `json:"optimization_suggestions"`
}

// Consumption estimates fuel usage for a route driven by the given
// vehicle. All factors multiply the base MPG, so a factor below 1 means
// efficiency lost.
func Consumption(route RouteConditions, vehicle VehicleProfile) *Estimate {
	baseMPG := baseMPG(route, vehicle)

	weatherF := weatherFactor(route.Weather)
	trafficF := trafficFactor(route.Traffic)
	cargoF := cargoFactor(vehicle.CargoWeightLbs)
	speedF := speedFactor(route.averageSpeed())
	elevationF := elevationFactor(route.ElevationGainFt)

	adjustedMPG := baseMPG * weatherF * trafficF * cargoF * speedF * elevationF

	var gallons float64
	if adjustedMPG > 0 {
		gallons = route.DistanceMiles / adjustedMPG
	}

	return &Estimate{
		BaseMPG:        round2(baseMPG),
		AdjustedMPG:    round2(adjustedMPG),
		FuelGallons:    round2(gallons),
		FuelCostUSD:    round2(gallons * route.fuelPrice()),
		CO2EmissionsKg: round2(gallons * litersPerGallon * co2KgPerLiter),
		Factors: Factors{
			WeatherImpactPct:   round1((1 - weatherF) * 100),
			TrafficImpactPct:   round1((1 - trafficF) * 100),
			CargoImpactPct:     round1((1 - cargoF) * 100),
			SpeedImpactPct:     round1((1 - speedF) * 100),
			ElevationImpactPct: round1((1 - elevationF) * 100),
		},
		Suggestions: suggestions(weatherF, trafficF, cargoF, speedF),
	}
}

// baseMPG is the weighted average of city and highway MPG by the route's
// city-driving share.
func baseMPG(route RouteConditions, vehicle VehicleProfile) float64 {
	cityShare := route.cityPercent() / 100

	cityMPG := vehicle.MPGCity
	if cityMPG == 0 {
		cityMPG = DefaultMPGCity
	}
	highwayMPG := vehicle.MPGHighway
	if highwayMPG == 0 {
		highwayMPG = DefaultMPGHighway
	}

	return cityMPG*cityShare + highwayMPG*(1-cityShare)
}

// weatherFactor converts weather conditions into an MPG multiplier.
// The consumption increase is inverted because it multiplies MPG.
func weatherFactor(w conditions.Weather) float64 {
	factor, ok := weatherImpact[w.Condition()]
	if !ok {
		factor = 1.0
	}

	if w.WindSpeedMPH > 20 {
		factor *= 1.05
	}

	temp := w.Temperature()
	if temp < 32 {
		factor *= 1.08 // cold engine
	} else if temp > 95 {
		factor *= 1.04 // AC load
	}

	return 1 / factor
}

// trafficFactor converts congestion into an MPG multiplier.
func trafficFactor(t conditions.Traffic) float64 {
	factor, ok := trafficImpact[t.Congestion()]
	if !ok {
		factor = 1.0
	}

	if t.EstimatedStops > 20 {
		factor *= 1.10
	}

	return 1 / factor
}

// cargoFactor applies a linear consumption penalty per 1000 lbs of
// cargo.
func cargoFactor(cargoWeightLbs float64) float64 {
	return 1 / (1 + cargoWeightLbs/1000*cargoPenaltyPer1000Lbs)
}

// speedFactor is the banded MPG multiplier by average speed. Efficiency
// peaks between 45 and 55 mph and falls off at both extremes.
func speedFactor(averageSpeedMPH float64) float64 {
	switch {
	case averageSpeedMPH < 25:
		return 0.75
	case averageSpeedMPH < 45:
		return 0.90
	case averageSpeedMPH < 55:
		return 1.0
	case averageSpeedMPH < 65:
		return 0.95
	case averageSpeedMPH < 75:
		return 0.88
	default:
		return 0.80
	}
}

// elevationFactor approximates climbing cost as a smooth inverse of the
// total gain.
func elevationFactor(elevationGainFt float64) float64 {
	if elevationGainFt > 0 {
		return 1 / (1 + elevationGainFt/10000)
	}
	return 1.0
}

// suggestions derives efficiency advice from how far each factor sits
// from neutral.
func suggestions(weatherF, trafficF, cargoF, speedF float64) []string {
	var out []string

	if weatherF < 0.92 {
		out = append(out, "Consider delaying trip for better weather conditions if possible")
	}
	if trafficF < 0.85 {
		out = append(out, "Route through heavy traffic - consider alternative times or routes")
	}
	if cargoF < 0.90 {
		out = append(out, "Heavy cargo load - ensure proper tire pressure and consider load distribution")
	}
	if speedF < 0.90 {
		out = append(out, "Maintain speeds between 45-65 mph for optimal fuel efficiency")
	} else if speedF > 1.0 {
		out = append(out, "Current speed range is optimal for fuel efficiency")
	}

	if len(out) == 0 {
		out = append(out, "Route is well-optimized for fuel efficiency")
	}

	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
