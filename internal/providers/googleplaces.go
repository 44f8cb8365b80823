package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// GooglePlaces adapts the commercial Places API through the official
// client. Without an API key the adapter stays registered but reports
// itself unavailable, so credentials remain its own concern rather than
// the orchestrator's.
type GooglePlaces struct {
	logger *slog.Logger
	client *maps.Client
}

func NewGooglePlaces(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) (*GooglePlaces, error) {
	g := &GooglePlaces{logger: logger}
	if apiKey == "" {
		logger.Warn("Google Maps API key not set, places adapter will report unavailable")
		return g, nil
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating google maps client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *GooglePlaces) Source() types.Source { return types.SourceGooglePlaces }

func (g *GooglePlaces) Capabilities() Capability { return CapNearby | CapQuery }

func (g *GooglePlaces) Search(ctx context.Context, area types.SearchArea, q Query) types.ProviderOutcome {
	start := time.Now()
	if g.client == nil {
		return failedOutcome(g.Source(), types.ErrorKindUnavailable, "google maps api key not configured", start)
	}

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: area.Center.Latitude, Lng: area.Center.Longitude},
		Radius:   uint(area.RadiusMeters),
	}
	if q.Category == types.CategoryVenue {
		req.Keyword = "event venue banquet hall"
	} else {
		req.Keyword = "catering"
		req.Type = maps.PlaceTypeRestaurant
		if q.Cuisine != "" {
			req.Keyword = q.Cuisine + " catering"
		}
	}

	resp, err := g.client.NearbySearch(ctx, req)
	if err != nil {
		g.logger.WarnContext(ctx, "Google Places search failed", slog.Any("error", err))
		return failedOutcome(g.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}

	places := make([]types.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Name == "" {
			continue
		}
		tier := r.PriceLevel
		if tier < 1 || tier > 4 {
			tier = defaultPriceTier
		}
		place := types.Place{
			SourceID:    r.PlaceID,
			Source:      g.Source(),
			Name:        r.Name,
			Category:    q.Category,
			Address:     strPtrOrNil(firstNonEmpty(r.FormattedAddress, r.Vicinity)),
			Rating:      clampRating(float64(r.Rating)),
			ReviewCount: r.UserRatingsTotal,
			PriceSignal: priceSignalForTier(q.Category, tier),
			RawAttributes: map[string]any{
				"types":           r.Types,
				"business_status": r.BusinessStatus,
				"price_level":     r.PriceLevel,
			},
		}
		pt := types.GeoPoint{Latitude: r.Geometry.Location.Lat, Longitude: r.Geometry.Location.Lng}
		if pt.Valid() && (pt.Latitude != 0 || pt.Longitude != 0) {
			place.Location = &pt
		}
		if q.Category == types.CategoryVenue {
			place.Capacity = ptrTo(yelpCapacityByTier[tier])
		} else {
			place.Cuisine = ptrTo(cuisineFromGoogleTypes(r.Types, q.Cuisine))
		}
		places = append(places, place)
	}
	return successOutcome(g.Source(), places, start)
}

func cuisineFromGoogleTypes(placeTypes []string, requested string) string {
	if requested != "" {
		return normalizeCuisine(requested)
	}
	// Google types are mostly generic ("restaurant", "food"); only a few
	// carry a cuisine (e.g. "italian_restaurant" on newer data).
	for _, t := range placeTypes {
		lower := strings.ToLower(t)
		for _, c := range cuisineLabels {
			if strings.Contains(lower, c.key) {
				return c.label
			}
		}
	}
	return "General"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
