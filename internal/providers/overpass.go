package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// overpassResponse is the JSON shape of an Overpass interpreter result.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string  `json:"type"` // node, way, relation
	ID     int64   `json:"id"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

// catererSelectors and venueSelectors are the OSM tag filters queried per
// category. Ways are asked for their center so polygons still yield a
// coordinate.
var catererSelectors = []string{
	`node["amenity"="restaurant"]`,
	`node["amenity"="cafe"]`,
	`node["amenity"="fast_food"]`,
	`node["shop"="catering"]`,
	`way["amenity"="restaurant"]`,
	`way["amenity"="cafe"]`,
	`way["shop"="catering"]`,
}

var venueSelectors = []string{
	`node["amenity"="conference_centre"]`,
	`node["amenity"="events_venue"]`,
	`node["amenity"="community_centre"]`,
	`node["tourism"="hotel"]`,
	`node["building"="hotel"]`,
	`way["amenity"="conference_centre"]`,
	`way["amenity"="events_venue"]`,
	`way["amenity"="community_centre"]`,
	`way["tourism"="hotel"]`,
	`way["building"="hotel"]`,
}

// Overpass adapts the OpenStreetMap Overpass query API, the open geodata
// source. It needs no credentials but is a shared public service, so calls
// are paced.
type Overpass struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewOverpass(baseURL string, rps float64, timeout time.Duration, logger *slog.Logger) *Overpass {
	if rps <= 0 {
		rps = 1
	}
	return &Overpass{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (o *Overpass) Source() types.Source { return types.SourceOverpassOSM }

func (o *Overpass) Capabilities() Capability { return CapNearby }

func (o *Overpass) Search(ctx context.Context, area types.SearchArea, q Query) types.ProviderOutcome {
	start := time.Now()

	if err := o.limiter.Wait(ctx); err != nil {
		return failedOutcome(o.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}

	query := buildOverpassQL(area, q.Category)
	form := url.Values{"data": []string{query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return failedOutcome(o.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.WarnContext(ctx, "Overpass request failed", slog.Any("error", err))
		return failedOutcome(o.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedOutcome(o.Source(), types.ErrorKindUnavailable,
			fmt.Sprintf("overpass returned status %d", resp.StatusCode), start)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failedOutcome(o.Source(), types.ErrorKindMalformed,
			"decoding overpass response: "+err.Error(), start)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	places := make([]types.Place, 0, limit)
	for _, el := range body.Elements {
		if len(places) >= limit {
			break
		}
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		if q.Cuisine != "" && q.Category == types.CategoryCaterer {
			if normalizeCuisine(el.Tags["cuisine"]) != normalizeCuisine(q.Cuisine) {
				continue
			}
		}
		place := types.Place{
			SourceID: osmSourceID(el.Type, strconv.FormatInt(el.ID, 10)),
			Source:   o.Source(),
			Name:     name,
			Category: q.Category,
			Address: joinAddressParts(el.Tags["addr:housenumber"], el.Tags["addr:street"],
				el.Tags["addr:city"], el.Tags["addr:state"], el.Tags["addr:postcode"]),
			Phone:       strPtrOrNil(firstNonEmpty(el.Tags["phone"], el.Tags["contact:phone"])),
			Website:     strPtrOrNil(firstNonEmpty(el.Tags["website"], el.Tags["contact:website"])),
			PriceSignal: priceSignalForTier(q.Category, tierFromStars(el.Tags["stars"])),
			Amenities:   normalizeAmenities(amenitiesFromOSMTags(el.Tags)),
			RawAttributes: map[string]any{
				"osm_type":      el.Type,
				"opening_hours": el.Tags["opening_hours"],
			},
		}
		if pt := overpassPoint(el); pt != nil {
			place.Location = pt
		}
		if q.Category == types.CategoryVenue {
			place.Capacity = ptrTo(capacityFromOSMTags(el.Tags))
		} else {
			cuisine := el.Tags["cuisine"]
			if cuisine == "" {
				cuisine = el.Tags["amenity"]
			}
			place.Cuisine = ptrTo(normalizeCuisine(cuisine))
		}
		places = append(places, place)
	}
	return successOutcome(o.Source(), places, start)
}

func overpassPoint(el overpassElement) *types.GeoPoint {
	pt := types.GeoPoint{Latitude: el.Lat, Longitude: el.Lon}
	if el.Center != nil {
		pt = types.GeoPoint{Latitude: el.Center.Lat, Longitude: el.Center.Lon}
	}
	if !pt.Valid() || (pt.Latitude == 0 && pt.Longitude == 0) {
		return nil
	}
	return &pt
}

func buildOverpassQL(area types.SearchArea, category types.Category) string {
	selectors := catererSelectors
	if category == types.CategoryVenue {
		selectors = venueSelectors
	}
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, sel := range selectors {
		fmt.Fprintf(&b, "%s(around:%.0f,%.6f,%.6f);",
			sel, area.RadiusMeters, area.Center.Latitude, area.Center.Longitude)
	}
	b.WriteString(");out center body;")
	return b.String()
}
