package types

import (
	"fmt"

	"github.com/umahmood/haversine"
)

// GeoPoint is a WGS84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// DistanceMeters returns the great-circle distance between two points.
// The same metric is used for radius filtering and duplicate detection.
func (p GeoPoint) DistanceMeters(other GeoPoint) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: p.Latitude, Lon: p.Longitude},
		haversine.Coord{Lat: other.Latitude, Lon: other.Longitude},
	)
	return km * 1000
}

// SearchArea is the resolved geographic scope of one search. It is produced
// once per request by the location resolver and read-only afterwards.
type SearchArea struct {
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radius_meters"`
}

// Contains reports whether the point lies within the area's radius.
func (a SearchArea) Contains(p GeoPoint) bool {
	return a.Center.DistanceMeters(p) <= a.RadiusMeters
}
