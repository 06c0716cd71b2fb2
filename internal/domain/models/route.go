package models

import "time"

// City is an admin-managed place that routes start or end at.
type City struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	State     string    `json:"state"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Route identifies an ordered origin/destination city pair.
// At most one route exists per (OriginSlug, DestinationSlug).
type Route struct {
	ID              int64     `json:"id"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	OriginSlug      string    `json:"origin_slug"`
	DestinationSlug string    `json:"destination_slug"`
	DistanceKM      float64   `json:"distance_km"`
	DurationMin     int       `json:"duration_min"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
