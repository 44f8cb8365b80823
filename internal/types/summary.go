package types

// CostBreakdown itemizes the estimated catering cost for one provider at a
// given guest count.
type CostBreakdown struct {
	FoodCost              float64 `json:"food_cost"`
	ServiceFee            float64 `json:"service_fee"`
	Tax                   float64 `json:"tax"`
	TotalCost             float64 `json:"total_cost"`
	EffectiveCostPerGuest float64 `json:"effective_cost_per_guest"`
}

// CatererOption pairs a ranked place with its estimated cost breakdown.
// Breakdown is nil when the place carries no price signal.
type CatererOption struct {
	Place
	CostBreakdown *CostBreakdown `json:"cost_breakdown,omitempty"`
}

// CuisineSummary holds the grouped statistics for one normalized cuisine
// label. AvgCostPerGuest and TotalCost are nil for groups with no priced
// members; such groups are still listed with their count.
type CuisineSummary struct {
	Cuisine         string          `json:"cuisine"`
	CatererCount    int             `json:"caterer_count"`
	AvgCostPerGuest *float64        `json:"avg_cost_per_guest"`
	TotalCost       *float64        `json:"total_cost"`
	Caterers        []CatererOption `json:"caterers"`
}

// CateringSummary is the grouped reduction over a ranked caterer list.
type CateringSummary struct {
	ByCuisine    []CuisineSummary `json:"by_cuisine"`
	GuestCount   int              `json:"guest_count"`
	CheapestCost *float64         `json:"cheapest_total_cost,omitempty"`
}

// VenueOption surfaces a venue's capacity and rate fields alongside an
// estimated rental total for the assumed event duration.
type VenueOption struct {
	Place
	HourlyRate         *float64 `json:"hourly_rate,omitempty"`
	AssumedHours       int      `json:"assumed_hours"`
	EstimatedRoomTotal *float64 `json:"estimated_room_total,omitempty"`
}

// VenueSummary is the venue-side response payload: no grouping reduction
// beyond the ranked list itself.
type VenueSummary struct {
	Venues []VenueOption `json:"venues"`
}
