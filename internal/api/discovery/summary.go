package discovery

import (
	"sort"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

const fallbackCuisineLabel = "General"

// BuildCateringSummary groups a ranked caterer list by cuisine and attaches
// per-place cost estimates for the given guest count. Groups with no priced
// members still appear, with nil averages, ordered after the priced groups.
func BuildCateringSummary(places []types.Place, guestCount int, cfg config.SearchConfig) types.CateringSummary {
	groups := make(map[string][]types.CatererOption)
	var order []string
	for _, p := range places {
		cuisine := fallbackCuisineLabel
		if p.Cuisine != nil && *p.Cuisine != "" {
			cuisine = *p.Cuisine
		}
		if _, seen := groups[cuisine]; !seen {
			order = append(order, cuisine)
		}
		groups[cuisine] = append(groups[cuisine], types.CatererOption{
			Place:         p,
			CostBreakdown: estimateCateringCost(p, guestCount, cfg),
		})
	}

	summary := types.CateringSummary{GuestCount: guestCount}
	for _, cuisine := range order {
		caterers := groups[cuisine]
		cs := types.CuisineSummary{
			Cuisine:      cuisine,
			CatererCount: len(caterers),
			Caterers:     caterers,
		}
		var sum float64
		var priced int
		for _, c := range caterers {
			if c.PriceSignal != nil {
				sum += *c.PriceSignal
				priced++
			}
			if c.CostBreakdown != nil {
				if summary.CheapestCost == nil || c.CostBreakdown.TotalCost < *summary.CheapestCost {
					total := c.CostBreakdown.TotalCost
					summary.CheapestCost = &total
				}
			}
		}
		if priced > 0 {
			avg := sum / float64(priced)
			total := avg * float64(guestCount)
			cs.AvgCostPerGuest = &avg
			cs.TotalCost = &total
		}
		summary.ByCuisine = append(summary.ByCuisine, cs)
	}

	// Priced groups cheapest-first; unpriced groups after, by name.
	sort.SliceStable(summary.ByCuisine, func(i, j int) bool {
		a, b := summary.ByCuisine[i], summary.ByCuisine[j]
		switch {
		case a.AvgCostPerGuest != nil && b.AvgCostPerGuest != nil:
			if *a.AvgCostPerGuest != *b.AvgCostPerGuest {
				return *a.AvgCostPerGuest < *b.AvgCostPerGuest
			}
			return a.Cuisine < b.Cuisine
		case a.AvgCostPerGuest != nil:
			return true
		case b.AvgCostPerGuest != nil:
			return false
		default:
			return a.Cuisine < b.Cuisine
		}
	})
	return summary
}

// estimateCateringCost itemizes food, flat service fee and tax for one
// caterer. Places without a price signal get no breakdown.
func estimateCateringCost(p types.Place, guestCount int, cfg config.SearchConfig) *types.CostBreakdown {
	if p.PriceSignal == nil || guestCount <= 0 {
		return nil
	}
	food := *p.PriceSignal * float64(guestCount)
	fee := cfg.ServiceFeeFlat
	tax := (food + fee) * cfg.TaxRatePercent / 100
	total := food + fee + tax
	return &types.CostBreakdown{
		FoodCost:              food,
		ServiceFee:            fee,
		Tax:                   tax,
		TotalCost:             total,
		EffectiveCostPerGuest: total / float64(guestCount),
	}
}

// BuildVenueSummary projects each ranked venue's hourly rate into an
// estimated room total for the assumed event duration.
func BuildVenueSummary(places []types.Place, cfg config.SearchConfig) types.VenueSummary {
	venues := make([]types.VenueOption, 0, len(places))
	for _, p := range places {
		option := types.VenueOption{
			Place:        p,
			HourlyRate:   p.PriceSignal,
			AssumedHours: cfg.AssumedEventHours,
		}
		if p.PriceSignal != nil {
			total := *p.PriceSignal * float64(cfg.AssumedEventHours)
			option.EstimatedRoomTotal = &total
		}
		venues = append(venues, option)
	}
	return types.VenueSummary{Venues: venues}
}
