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

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// photonResponse is the GeoJSON FeatureCollection Photon returns.
type photonResponse struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // lon, lat
	} `json:"geometry"`
	Properties struct {
		OSMID       json.Number `json:"osm_id"`
		OSMType     string      `json:"osm_type"`
		OSMKey      string      `json:"osm_key"`
		OSMValue    string      `json:"osm_value"`
		Name        string      `json:"name"`
		HouseNumber string      `json:"housenumber"`
		Street      string      `json:"street"`
		City        string      `json:"city"`
		State       string      `json:"state"`
		Postcode    string      `json:"postcode"`
		Country     string      `json:"country"`
	} `json:"properties"`
}

// Photon adapts the Komoot Photon geocoder, which supports both proximity
// biased and free-text search without credentials.
type Photon struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewPhoton(baseURL string, timeout time.Duration, logger *slog.Logger) *Photon {
	return &Photon{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (p *Photon) Source() types.Source { return types.SourcePhoton }

func (p *Photon) Capabilities() Capability { return CapNearby | CapQuery }

func (p *Photon) Search(ctx context.Context, area types.SearchArea, q Query) types.ProviderOutcome {
	start := time.Now()

	term := "catering"
	if q.Category == types.CategoryVenue {
		term = "event venue"
	}
	if q.Cuisine != "" {
		term = q.Cuisine + " restaurant"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{
		"q":     []string{term},
		"lat":   []string{strconv.FormatFloat(area.Center.Latitude, 'f', 6, 64)},
		"lon":   []string{strconv.FormatFloat(area.Center.Longitude, 'f', 6, 64)},
		"limit": []string{strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api?"+params.Encode(), nil)
	if err != nil {
		return failedOutcome(p.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WarnContext(ctx, "Photon request failed", slog.Any("error", err))
		return failedOutcome(p.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedOutcome(p.Source(), types.ErrorKindUnavailable,
			fmt.Sprintf("photon returned status %d", resp.StatusCode), start)
	}

	var body photonResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failedOutcome(p.Source(), types.ErrorKindMalformed,
			"decoding photon response: "+err.Error(), start)
	}

	places := make([]types.Place, 0, len(body.Features))
	for _, f := range body.Features {
		props := f.Properties
		if props.Name == "" {
			continue
		}
		place := types.Place{
			SourceID:    osmSourceID(props.OSMType, props.OSMID.String()),
			Source:      p.Source(),
			Name:        props.Name,
			Category:    q.Category,
			Address:     joinAddressParts(props.HouseNumber, props.Street, props.City, props.State, props.Postcode, props.Country),
			PriceSignal: priceSignalForTier(q.Category, defaultPriceTier),
			RawAttributes: map[string]any{
				"osm_type":  props.OSMType,
				"osm_key":   props.OSMKey,
				"osm_value": props.OSMValue,
			},
		}
		if len(f.Geometry.Coordinates) == 2 {
			pt := types.GeoPoint{Latitude: f.Geometry.Coordinates[1], Longitude: f.Geometry.Coordinates[0]}
			if pt.Valid() {
				place.Location = &pt
			}
		}
		if q.Category == types.CategoryVenue {
			// Photon flattens OSM tags into key/value, enough for the
			// building-type capacity guess.
			place.Capacity = ptrTo(capacityFromOSMTags(map[string]string{props.OSMKey: props.OSMValue}))
		} else {
			place.Cuisine = ptrTo(normalizeCuisine(q.Cuisine))
		}
		places = append(places, place)
	}
	return successOutcome(p.Source(), places, start)
}
