package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

var testArea = types.SearchArea{
	Center:       types.GeoPoint{Latitude: 37.7749, Longitude: -122.4194},
	RadiusMeters: 10_000,
}

func ptr[T any](v T) *T { return &v }

func located(lat, lon float64) *types.GeoPoint {
	return &types.GeoPoint{Latitude: lat, Longitude: lon}
}

func TestMergeAndRank_MergesNearbySimilarNames(t *testing.T) {
	sparse := types.Place{
		SourceID: "node_1",
		Source:   types.SourcePhoton,
		Name:     "Luigi's",
		Category: types.CategoryCaterer,
		Location: located(37.7750, -122.4195),
	}
	rich := types.Place{
		SourceID:    "gp_abc",
		Source:      types.SourceGooglePlaces,
		Name:        "Luigi's Ristorante",
		Category:    types.CategoryCaterer,
		Location:    located(37.77505, -122.41955), // ~7 m away
		Rating:      ptr(4.5),
		ReviewCount: 120,
		Address:     ptr("100 Main St"),
		Cuisine:     ptr("Italian"),
		Amenities:   []string{"wifi"},
	}

	out := MergeAndRank([]types.Place{sparse, rich}, testArea, 0, false)
	require.Len(t, out, 1)

	merged := out[0]
	assert.Equal(t, "Luigi's Ristorante", merged.Name, "richer record wins")
	require.NotNil(t, merged.Rating)
	assert.Equal(t, 4.5, *merged.Rating)
	assert.Len(t, merged.MergedFrom, 2)
	assert.Contains(t, merged.MergedFrom, types.SourceRef{Source: types.SourcePhoton, SourceID: "node_1"})
	assert.Contains(t, merged.MergedFrom, types.SourceRef{Source: types.SourceGooglePlaces, SourceID: "gp_abc"})
}

func TestMergeAndRank_DoesNotMergeDistinctNames(t *testing.T) {
	a := types.Place{
		SourceID: "1", Source: types.SourceYelp, Name: "Blue Plate Catering",
		Location: located(37.7750, -122.4195),
	}
	b := types.Place{
		SourceID: "2", Source: types.SourceYelp, Name: "Golden Gate Events",
		Location: located(37.77501, -122.41951), // meters apart but unrelated
	}

	out := MergeAndRank([]types.Place{a, b}, testArea, 0, false)
	assert.Len(t, out, 2)
}

func TestMergeAndRank_DoesNotMergeBeyondThreshold(t *testing.T) {
	a := types.Place{
		SourceID: "1", Source: types.SourceYelp, Name: "Luigi's",
		Location: located(37.7750, -122.4195),
	}
	b := types.Place{
		SourceID: "2", Source: types.SourceGooglePlaces, Name: "Luigi's",
		Location: located(37.7765, -122.4195), // ~170 m north
	}

	out := MergeAndRank([]types.Place{a, b}, testArea, 0, false)
	assert.Len(t, out, 2, "same name far apart stays separate")
}

func TestMergeAndRank_MergesOnSharedOSMIdentifier(t *testing.T) {
	nominatim := types.Place{
		SourceID: "osm_node_4242",
		Source:   types.SourceNominatim,
		Name:     "Harbor Hall",
		Category: types.CategoryVenue,
		Location: located(37.7749, -122.4194),
	}
	overpass := types.Place{
		SourceID:  "osm_node_4242",
		Source:    types.SourceOverpassOSM,
		Name:      "Harbor Hall Conference Centre",
		Category:  types.CategoryVenue,
		Capacity:  ptr(500),
		Amenities: []string{"wifi", "wheelchair accessible"},
		// No coordinates at all: the shared identifier still links them.
	}

	out := MergeAndRank([]types.Place{nominatim, overpass}, testArea, 0, false)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Capacity)
	assert.Equal(t, 500, *out[0].Capacity)
	require.NotNil(t, out[0].Location)
	assert.Len(t, out[0].MergedFrom, 2)
}

func TestMergeAndRank_DistinctOSMObjectTypesStaySeparate(t *testing.T) {
	node := types.Place{
		SourceID: "osm_node_123", Source: types.SourceNominatim,
		Name:     "Luigi's Ristorante",
		Location: located(37.7750, -122.4195),
	}
	way := types.Place{
		SourceID: "osm_way_123", Source: types.SourceOverpassOSM,
		Name:     "Harbor Event Hall",
		Location: located(37.8100, -122.4195), // ~4 km north
	}

	out := MergeAndRank([]types.Place{node, way}, testArea, 0, false)
	assert.Len(t, out, 2, "a node and a way sharing a numeric id are different objects")
}

func TestMergeAndRank_UnionsAmenities(t *testing.T) {
	a := types.Place{
		SourceID: "osm_node_1", Source: types.SourceOverpassOSM, Name: "The Grand",
		Location: located(37.7749, -122.4194), Amenities: []string{"WiFi", "parking"},
	}
	b := types.Place{
		SourceID: "osm_node_1", Source: types.SourcePhoton, Name: "The Grand",
		Amenities: []string{"wifi", "outdoor seating"},
	}

	out := MergeAndRank([]types.Place{a, b}, testArea, 0, false)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"outdoor seating", "parking", "wifi"}, out[0].Amenities)
}

func TestMergeAndRank_Idempotent(t *testing.T) {
	input := []types.Place{
		{SourceID: "osm_node_1", Source: types.SourceNominatim, Name: "Luigi's", Location: located(37.7750, -122.4195)},
		{SourceID: "osm_node_1", Source: types.SourceOverpassOSM, Name: "Luigi's Ristorante", Location: located(37.7750, -122.4195), Rating: ptr(4.2)},
		{SourceID: "y1", Source: types.SourceYelp, Name: "Golden Gate Events", Location: located(37.7800, -122.4200), Rating: ptr(3.9)},
	}

	once := MergeAndRank(input, testArea, 0, false)
	twice := MergeAndRank(once, testArea, 0, false)
	assert.Equal(t, once, twice)
}

func TestMergeAndRank_OrderIndependent(t *testing.T) {
	a := types.Place{SourceID: "osm_node_1", Source: types.SourceNominatim, Name: "Luigi's", Location: located(37.7750, -122.4195)}
	b := types.Place{SourceID: "gp_1", Source: types.SourceGooglePlaces, Name: "Luigi's Ristorante", Location: located(37.7750, -122.4195), Rating: ptr(4.5)}
	c := types.Place{SourceID: "y1", Source: types.SourceYelp, Name: "Blue Plate", Location: located(37.7760, -122.4190)}

	forward := MergeAndRank([]types.Place{a, b, c}, testArea, 0, false)
	backward := MergeAndRank([]types.Place{c, b, a}, testArea, 0, false)
	assert.Equal(t, forward, backward)
}

func TestMergeAndRank_RadiusFilter(t *testing.T) {
	inside := types.Place{SourceID: "1", Source: types.SourceYelp, Name: "Near Spot", Location: located(37.7750, -122.4195)}
	outside := types.Place{SourceID: "2", Source: types.SourceYelp, Name: "Far Spot", Location: located(38.5, -121.5)} // ~100 km away
	unlocated := types.Place{SourceID: "3", Source: types.SourceYelp, Name: "Phone Only Caterer"}

	out := MergeAndRank([]types.Place{inside, outside, unlocated}, testArea, 0, false)
	require.Len(t, out, 2)
	assert.Equal(t, "Near Spot", out[0].Name)
	assert.Equal(t, "Phone Only Caterer", out[1].Name, "unlocated places rank last but are kept")

	mapReady := MergeAndRank([]types.Place{inside, outside, unlocated}, testArea, 0, true)
	require.Len(t, mapReady, 1)
	assert.Equal(t, "Near Spot", mapReady[0].Name)
}

func TestMergeAndRank_Ordering(t *testing.T) {
	near := types.Place{SourceID: "1", Source: types.SourceYelp, Name: "Nearest", Location: located(37.7750, -122.4194), Rating: ptr(3.0)}
	far := types.Place{SourceID: "2", Source: types.SourceYelp, Name: "Further", Location: located(37.7850, -122.4194), Rating: ptr(5.0)}
	sameDistHigh := types.Place{SourceID: "3", Source: types.SourceYelp, Name: "Twin High", Location: located(37.7850, -122.4194), Rating: ptr(4.0)}
	unrated := types.Place{SourceID: "4", Source: types.SourceYelp, Name: "Twin Unrated", Location: located(37.7850, -122.4194)}

	out := MergeAndRank([]types.Place{unrated, sameDistHigh, far, near}, testArea, 0, false)
	require.Len(t, out, 4)
	assert.Equal(t, "Nearest", out[0].Name)
	assert.Equal(t, "Further", out[1].Name, "higher rating wins at equal distance")
	assert.Equal(t, "Twin High", out[2].Name)
	assert.Equal(t, "Twin Unrated", out[3].Name, "missing rating sorts as zero")
}

func TestMergeAndRank_LimitAppliedAfterRanking(t *testing.T) {
	places := []types.Place{
		{SourceID: "1", Source: types.SourceYelp, Name: "C", Location: located(37.7800, -122.4194)},
		{SourceID: "2", Source: types.SourceYelp, Name: "A", Location: located(37.7750, -122.4194)},
		{SourceID: "3", Source: types.SourceYelp, Name: "B", Location: located(37.7770, -122.4194)},
	}

	out := MergeAndRank(places, testArea, 2, false)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "B", out[1].Name)
}

func TestNamesMatch(t *testing.T) {
	assert.True(t, namesMatch("Luigi's", "luigis"))
	assert.True(t, namesMatch("Luigi's Ristorante", "Luigi's"))
	assert.True(t, namesMatch("THE GRAND   HALL", "the grand hall"))
	assert.False(t, namesMatch("Luigi's", "Mario's"))
	assert.False(t, namesMatch("Bar", "Barcelona Tapas"), "short names do not merge by containment")
	assert.False(t, namesMatch("", "anything"))
}
