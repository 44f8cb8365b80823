package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

func summaryConfig() config.SearchConfig {
	return config.SearchConfig{
		AssumedEventHours: 4,
		ServiceFeeFlat:    400,
		TaxRatePercent:    10.0,
	}
}

func caterer(id, name, cuisine string, price *float64) types.Place {
	p := types.Place{
		SourceID: id, Source: types.SourceYelp, Name: name,
		Category: types.CategoryCaterer, PriceSignal: price,
	}
	if cuisine != "" {
		p.Cuisine = &cuisine
	}
	return p
}

func TestBuildCateringSummary_AveragesAndTotals(t *testing.T) {
	places := []types.Place{
		caterer("1", "Pasta Palace", "Italian", ptrF(40)),
		caterer("2", "Trattoria Roma", "Italian", ptrF(60)),
	}

	summary := BuildCateringSummary(places, 100, summaryConfig())

	require.Len(t, summary.ByCuisine, 1)
	group := summary.ByCuisine[0]
	assert.Equal(t, "Italian", group.Cuisine)
	assert.Equal(t, 2, group.CatererCount)
	require.NotNil(t, group.AvgCostPerGuest)
	assert.Equal(t, 50.0, *group.AvgCostPerGuest)
	require.NotNil(t, group.TotalCost)
	assert.Equal(t, 5000.0, *group.TotalCost)
}

func TestBuildCateringSummary_CostBreakdown(t *testing.T) {
	places := []types.Place{caterer("1", "Pasta Palace", "Italian", ptrF(40))}

	summary := BuildCateringSummary(places, 100, summaryConfig())

	require.Len(t, summary.ByCuisine, 1)
	require.Len(t, summary.ByCuisine[0].Caterers, 1)
	breakdown := summary.ByCuisine[0].Caterers[0].CostBreakdown
	require.NotNil(t, breakdown)
	assert.Equal(t, 4000.0, breakdown.FoodCost)
	assert.Equal(t, 400.0, breakdown.ServiceFee)
	assert.InDelta(t, 440.0, breakdown.Tax, 1e-9) // 10% of food + fee
	assert.InDelta(t, 4840.0, breakdown.TotalCost, 1e-9)
	assert.InDelta(t, 48.40, breakdown.EffectiveCostPerGuest, 1e-9)

	require.NotNil(t, summary.CheapestCost)
	assert.InDelta(t, 4840.0, *summary.CheapestCost, 1e-9)
}

func TestBuildCateringSummary_UnpricedGroupsListedAfterPriced(t *testing.T) {
	places := []types.Place{
		caterer("1", "Mystery Kitchen", "Fusion", nil),
		caterer("2", "Taqueria Sol", "Mexican", ptrF(30)),
		caterer("3", "Sushi Go", "Japanese", ptrF(90)),
	}

	summary := BuildCateringSummary(places, 50, summaryConfig())

	require.Len(t, summary.ByCuisine, 3)
	assert.Equal(t, "Mexican", summary.ByCuisine[0].Cuisine)
	assert.Equal(t, "Japanese", summary.ByCuisine[1].Cuisine)
	assert.Equal(t, "Fusion", summary.ByCuisine[2].Cuisine)
	assert.Nil(t, summary.ByCuisine[2].AvgCostPerGuest)
	assert.Nil(t, summary.ByCuisine[2].TotalCost)
	assert.Equal(t, 1, summary.ByCuisine[2].CatererCount)
}

func TestBuildCateringSummary_ZeroGuestsSkipsBreakdowns(t *testing.T) {
	places := []types.Place{caterer("1", "Pasta Palace", "Italian", ptrF(40))}

	summary := BuildCateringSummary(places, 0, summaryConfig())

	require.Len(t, summary.ByCuisine, 1)
	assert.Nil(t, summary.ByCuisine[0].Caterers[0].CostBreakdown)
	assert.Nil(t, summary.CheapestCost)
}

func TestBuildVenueSummary_RoomTotals(t *testing.T) {
	hall := types.Place{
		SourceID: "osm_node_1", Source: types.SourceOverpassOSM, Name: "Grand Hall",
		Category: types.CategoryVenue, PriceSignal: ptrF(250), Capacity: ptrI(200),
	}
	unpriced := types.Place{
		SourceID: "osm_node_2", Source: types.SourceOverpassOSM, Name: "Side Room",
		Category: types.CategoryVenue,
	}

	summary := BuildVenueSummary([]types.Place{hall, unpriced}, summaryConfig())

	require.Len(t, summary.Venues, 2)
	first := summary.Venues[0]
	require.NotNil(t, first.HourlyRate)
	assert.Equal(t, 250.0, *first.HourlyRate)
	assert.Equal(t, 4, first.AssumedHours)
	require.NotNil(t, first.EstimatedRoomTotal)
	assert.Equal(t, 1000.0, *first.EstimatedRoomTotal)

	assert.Nil(t, summary.Venues[1].HourlyRate)
	assert.Nil(t, summary.Venues[1].EstimatedRoomTotal)
}
