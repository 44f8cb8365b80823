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

// yelpSearchResponse is the Fusion v3 /businesses/search shape.
type yelpSearchResponse struct {
	Businesses []yelpBusiness `json:"businesses"`
	Total      int            `json:"total"`
}

type yelpBusiness struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Phone       string  `json:"display_phone"`
	Price       string  `json:"price"` // "$".."$$$$"
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	IsClosed    bool    `json:"is_closed"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Location struct {
		Address1 string `json:"address1"`
		City     string `json:"city"`
		State    string `json:"state"`
		ZipCode  string `json:"zip_code"`
	} `json:"location"`
	Categories []yelpCategory `json:"categories"`
}

type yelpCategory struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// Yelp adapts the commercial business directory through the Fusion API.
// Requires an API key; without one the adapter reports unavailable.
type Yelp struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewYelp(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Yelp {
	if apiKey == "" {
		logger.Warn("Yelp API key not set, directory adapter will report unavailable")
	}
	return &Yelp{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (y *Yelp) Source() types.Source { return types.SourceYelp }

func (y *Yelp) Capabilities() Capability { return CapNearby | CapQuery }

func (y *Yelp) Search(ctx context.Context, area types.SearchArea, q Query) types.ProviderOutcome {
	start := time.Now()
	if y.apiKey == "" {
		return failedOutcome(y.Source(), types.ErrorKindUnavailable, "yelp api key not configured", start)
	}

	term := "catering"
	categories := "catering"
	if q.Category == types.CategoryVenue {
		term = "event venue"
		categories = "venues"
	}
	if q.Cuisine != "" {
		term = q.Cuisine + " " + term
	}
	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	// Yelp caps the search radius at 40 km.
	radius := int(area.RadiusMeters)
	if radius > 40_000 {
		radius = 40_000
	}

	params := url.Values{
		"term":       []string{term},
		"categories": []string{categories},
		"latitude":   []string{strconv.FormatFloat(area.Center.Latitude, 'f', 6, 64)},
		"longitude":  []string{strconv.FormatFloat(area.Center.Longitude, 'f', 6, 64)},
		"radius":     []string{strconv.Itoa(radius)},
		"limit":      []string{strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/businesses/search?"+params.Encode(), nil)
	if err != nil {
		return failedOutcome(y.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}
	req.Header.Set("Authorization", "Bearer "+y.apiKey)

	resp, err := y.client.Do(req)
	if err != nil {
		y.logger.WarnContext(ctx, "Yelp request failed", slog.Any("error", err))
		return failedOutcome(y.Source(), types.ErrorKindUnavailable, err.Error(), start)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedOutcome(y.Source(), types.ErrorKindUnavailable,
			fmt.Sprintf("yelp returned status %d", resp.StatusCode), start)
	}

	var body yelpSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failedOutcome(y.Source(), types.ErrorKindMalformed,
			"decoding yelp response: "+err.Error(), start)
	}

	places := make([]types.Place, 0, len(body.Businesses))
	for _, b := range body.Businesses {
		if b.Name == "" || b.IsClosed {
			continue
		}
		tier := tierFromDollarSigns(b.Price)
		place := types.Place{
			SourceID:    b.ID,
			Source:      y.Source(),
			Name:        b.Name,
			Category:    q.Category,
			Address:     joinAddressParts(b.Location.Address1, b.Location.City, b.Location.State, b.Location.ZipCode),
			Rating:      clampRating(b.Rating),
			ReviewCount: b.ReviewCount,
			Phone:       strPtrOrNil(b.Phone),
			Website:     strPtrOrNil(b.URL),
			PriceSignal: priceSignalForTier(q.Category, tier),
			RawAttributes: map[string]any{
				"price":      b.Price,
				"categories": categoryTitles(b.Categories),
			},
		}
		pt := types.GeoPoint{Latitude: b.Coordinates.Latitude, Longitude: b.Coordinates.Longitude}
		if pt.Valid() && (pt.Latitude != 0 || pt.Longitude != 0) {
			place.Location = &pt
		}
		if q.Category == types.CategoryVenue {
			place.Capacity = ptrTo(yelpCapacityByTier[tier])
		} else {
			place.Cuisine = ptrTo(cuisineFromYelpCategories(b.Categories, q.Cuisine))
		}
		places = append(places, place)
	}
	return successOutcome(y.Source(), places, start)
}

func categoryTitles(categories []yelpCategory) []string {
	titles := make([]string, 0, len(categories))
	for _, c := range categories {
		titles = append(titles, c.Title)
	}
	return titles
}

func cuisineFromYelpCategories(categories []yelpCategory, requested string) string {
	for _, c := range categories {
		if label := normalizeCuisine(c.Alias); label != "General" && labelIsCuisine(label) {
			return label
		}
	}
	if requested != "" {
		return normalizeCuisine(requested)
	}
	if len(categories) > 0 {
		return categories[0].Title
	}
	return "General"
}

func labelIsCuisine(label string) bool {
	for _, c := range cuisineLabels {
		if c.label == label {
			return true
		}
	}
	return label == "Fast Food" || label == "Cafe"
}
