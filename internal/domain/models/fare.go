package models

import "strings"

type CarType string

const (
	CarHatchback CarType = "HATCHBACK"
	CarSedan     CarType = "SEDAN"
	CarSUV       CarType = "SUV"
	CarInnova    CarType = "INNOVA"
	CarTempo     CarType = "TEMPO_TRAVELLER"
)

var carTypes = map[CarType]bool{
	CarHatchback: true,
	CarSedan:     true,
	CarSUV:       true,
	CarInnova:    true,
	CarTempo:     true,
}

// ParseCarType accepts any casing and "-"/" " separators.
func ParseCarType(s string) (CarType, bool) {
	c := CarType(strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s))))
	return c, carTypes[c]
}

// Fare is the price of one car type on one route. Unique per (RouteID, CarType).
type Fare struct {
	ID                int64   `json:"id"`
	RouteID           int64   `json:"route_id"`
	CarType           CarType `json:"car_type"`
	BaseFareINR       int64   `json:"base_fare_inr"`
	NightSurchargePct float64 `json:"night_surcharge_pct"`
}
