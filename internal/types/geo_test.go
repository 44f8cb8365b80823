package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoPointValid(t *testing.T) {
	assert.True(t, GeoPoint{Latitude: 37.7749, Longitude: -122.4194}.Valid())
	assert.True(t, GeoPoint{}.Valid(), "0,0 is a legal coordinate, callers decide whether to trust it")
	assert.False(t, GeoPoint{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, GeoPoint{Latitude: 0, Longitude: -181}.Valid())
}

func TestDistanceMeters(t *testing.T) {
	sf := GeoPoint{Latitude: 37.7749, Longitude: -122.4194}
	oakland := GeoPoint{Latitude: 37.8044, Longitude: -122.2712}

	d := sf.DistanceMeters(oakland)
	assert.InDelta(t, 13_400, d, 500, "SF to Oakland is roughly 13.4 km")
	assert.Equal(t, 0.0, sf.DistanceMeters(sf))
	assert.InDelta(t, d, oakland.DistanceMeters(sf), 1e-6, "distance is symmetric")
}

func TestSearchAreaContains(t *testing.T) {
	area := SearchArea{
		Center:       GeoPoint{Latitude: 37.7749, Longitude: -122.4194},
		RadiusMeters: 10_000,
	}

	assert.True(t, area.Contains(GeoPoint{Latitude: 37.7750, Longitude: -122.4195}))
	assert.False(t, area.Contains(GeoPoint{Latitude: 38.5, Longitude: -121.5}))
}

func TestPlaceRef(t *testing.T) {
	p := Place{Source: SourceYelp, SourceID: "y1"}
	assert.Equal(t, SourceRef{Source: SourceYelp, SourceID: "y1"}, p.Ref())
}
