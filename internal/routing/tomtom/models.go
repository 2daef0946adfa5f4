package tomtom

import "time"

// calculateRouteResponse mirrors the TomTom Routing API v1 response.
type calculateRouteResponse struct {
	Routes []apiRoute `json:"routes"`
}

type apiRoute struct {
	Summary apiSummary `json:"summary"`
	Legs    []apiLeg   `json:"legs"`
}

type apiSummary struct {
	LengthInMeters        int       `json:"lengthInMeters"`
	TravelTimeInSeconds   int       `json:"travelTimeInSeconds"`
	TrafficDelayInSeconds int       `json:"trafficDelayInSeconds"`
	DepartureTime         time.Time `json:"departureTime"`
	ArrivalTime           time.Time `json:"arrivalTime"`
}

type apiLeg struct {
	Points []apiPoint `json:"points"`
}

type apiPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// apiErrorResponse is TomTom's error envelope.
type apiErrorResponse struct {
	DetailedError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"detailedError"`
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

func (e *apiErrorResponse) message() string {
	if e.DetailedError.Message != "" {
		return e.DetailedError.Message
	}
	return e.Error.Description
}
