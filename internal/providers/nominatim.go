package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// nominatimResult is one entry of a Nominatim /search response.
type nominatimResult struct {
	PlaceID     json.Number       `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMID       json.Number       `json:"osm_id"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	ExtraTags   map[string]string `json:"extratags"`
}

// Nominatim adapts the OpenStreetMap Nominatim endpoint. It serves two
// roles: the structured geocoder used by the location resolver, and a
// free-text place source. Nominatim's usage policy caps request rates, so
// every call goes through a limiter.
type Nominatim struct {
	logger    *slog.Logger
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

func NewNominatim(baseURL, userAgent string, rps float64, timeout time.Duration, logger *slog.Logger) *Nominatim {
	if rps <= 0 {
		rps = 1
	}
	return &Nominatim{
		logger:    logger,
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (n *Nominatim) Source() types.Source { return types.SourceNominatim }

func (n *Nominatim) Capabilities() Capability { return CapQuery }

// Geocode resolves a free-text address to a coordinate. Unlike Search, this
// is allowed to fail: the location resolver has its own fallback chain.
func (n *Nominatim) Geocode(ctx context.Context, address string) (*types.GeoPoint, error) {
	results, err := n.query(ctx, url.Values{
		"q":      []string{address},
		"format": []string{"json"},
		"limit":  []string{"1"},
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q", address)
	}
	pt, err := parseLatLon(results[0].Lat, results[0].Lon)
	if err != nil {
		return nil, fmt.Errorf("geocoding result for %q: %w", address, err)
	}
	return pt, nil
}

func (n *Nominatim) Search(ctx context.Context, area types.SearchArea, q Query) types.ProviderOutcome {
	start := time.Now()

	term := "catering"
	if q.Category == types.CategoryVenue {
		term = "event venue"
	}
	if q.Cuisine != "" {
		term = q.Cuisine + " " + term
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	results, err := n.query(ctx, url.Values{
		"q":       []string{term},
		"format":  []string{"json"},
		"limit":   []string{strconv.Itoa(limit)},
		"bounded": []string{"1"},
		"viewbox": []string{viewbox(area)},
	})
	if err != nil {
		n.logger.WarnContext(ctx, "Nominatim search failed", slog.Any("error", err))
		return failedOutcome(n.Source(), classify(err), err.Error(), start)
	}

	places := make([]types.Place, 0, len(results))
	for _, r := range results {
		if r.DisplayName == "" && r.Name == "" {
			continue
		}
		name := r.Name
		if name == "" {
			// Nominatim puts the feature name first in display_name.
			name = firstSegment(r.DisplayName)
		}
		p := types.Place{
			SourceID:    osmSourceID(r.OSMType, r.OSMID.String()),
			Source:      n.Source(),
			Name:        name,
			Category:    q.Category,
			Address:     strPtrOrNil(r.DisplayName),
			PriceSignal: priceSignalForTier(q.Category, defaultPriceTier),
			RawAttributes: map[string]any{
				"osm_type": r.OSMType,
				"class":    r.Class,
				"type":     r.Type,
			},
		}
		if pt, err := parseLatLon(r.Lat, r.Lon); err == nil {
			p.Location = pt
		}
		if q.Category == types.CategoryVenue {
			p.Capacity = ptrTo(capacityFromOSMTags(r.ExtraTags))
		} else {
			p.Cuisine = ptrTo(normalizeCuisine(r.ExtraTags["cuisine"]))
		}
		places = append(places, p)
	}
	return successOutcome(n.Source(), places, start)
}

func (n *Nominatim) query(ctx context.Context, params url.Values) ([]nominatimResult, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &types.ProviderError{Kind: types.ErrorKindMalformed, Message: "decoding nominatim response: " + err.Error()}
	}
	return results, nil
}
