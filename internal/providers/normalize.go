package providers

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Price tiers run 1-4 like the $..$$$$ symbols most directories use. The
// bands below turn a tier into the canonical price signal: cost per guest
// for caterers, hourly rate for venues.
const defaultPriceTier = 2

var catererPerGuestByTier = map[int]float64{1: 35, 2: 55, 3: 85, 4: 125}

var venueHourlyByTier = map[int]float64{1: 100, 2: 250, 3: 500, 4: 1000}

// yelpCapacityByTier mirrors the pricier-means-bigger guess the original
// directory data suggested for venues without a published capacity.
var yelpCapacityByTier = map[int]int{1: 50, 2: 100, 3: 200, 4: 300}

func priceSignalForTier(category types.Category, tier int) *float64 {
	if tier < 1 || tier > 4 {
		tier = defaultPriceTier
	}
	if category == types.CategoryVenue {
		v := venueHourlyByTier[tier]
		return &v
	}
	v := catererPerGuestByTier[tier]
	return &v
}

// tierFromDollarSigns maps "$".."$$$$" onto tiers 1-4. Anything else gets
// the moderate default.
func tierFromDollarSigns(price string) int {
	n := strings.Count(price, "$")
	if n < 1 || n > 4 {
		return defaultPriceTier
	}
	return n
}

// tierFromStars infers a price tier from a star rating tag.
func tierFromStars(stars string) int {
	n, err := strconv.Atoi(strings.TrimSpace(stars))
	if err != nil {
		return defaultPriceTier
	}
	switch {
	case n >= 4:
		return 4
	case n >= 3:
		return 3
	default:
		return 2
	}
}

// capacityFromOSMTags estimates how many guests a venue holds from its OSM
// tags: an explicit capacity wins, then rooms/beds, then the building type.
func capacityFromOSMTags(tags map[string]string) int {
	if v, err := strconv.Atoi(tags["capacity"]); err == nil && v > 0 {
		return v
	}
	if v, err := strconv.Atoi(tags["rooms"]); err == nil && v > 0 {
		return v * 2
	}
	if v, err := strconv.Atoi(tags["beds"]); err == nil && v > 0 {
		return v
	}
	switch {
	case tags["amenity"] == "conference_centre":
		return 500
	case tags["amenity"] == "community_centre":
		return 200
	case tags["tourism"] == "hotel" || tags["building"] == "hotel":
		return 100
	}
	return 50
}

// cuisineLabels is ordered: the first matching key wins, keeping the label
// deterministic for inputs that mention several cuisines.
var cuisineLabels = []struct {
	key   string
	label string
}{
	{"italian", "Italian"},
	{"mexican", "Mexican"},
	{"chinese", "Chinese"},
	{"japanese", "Japanese"},
	{"indian", "Indian"},
	{"mediterranean", "Mediterranean"},
	{"american", "American"},
	{"french", "French"},
	{"thai", "Thai"},
	{"korean", "Korean"},
	{"greek", "Greek"},
	{"bbq", "BBQ"},
	{"pizza", "Italian"},
	{"sushi", "Japanese"},
}

// normalizeCuisine maps a raw provider label (an OSM cuisine tag, a Yelp
// category alias, a Google type) to one canonical cuisine name.
func normalizeCuisine(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "General"
	}
	// OSM cuisine tags can be semicolon lists like "italian;pizza", with
	// the odd empty segment; take the first non-empty one.
	var first string
	for _, seg := range strings.Split(raw, ";") {
		if seg = strings.TrimSpace(seg); seg != "" {
			first = seg
			break
		}
	}
	if first == "" {
		return "General"
	}
	for _, c := range cuisineLabels {
		if strings.Contains(first, c.key) {
			return c.label
		}
	}
	switch first {
	case "fast_food":
		return "Fast Food"
	case "cafe", "coffee_shop":
		return "Cafe"
	}
	r, size := utf8.DecodeRuneInString(first)
	return strings.ToUpper(string(r)) + first[size:]
}

// osmAmenityTags maps boolean-ish OSM tags onto amenity labels.
func amenitiesFromOSMTags(tags map[string]string) []string {
	var amenities []string
	if tags["wheelchair"] == "yes" {
		amenities = append(amenities, "wheelchair accessible")
	}
	if tags["wifi"] == "yes" || tags["internet_access"] == "wlan" {
		amenities = append(amenities, "wifi")
	}
	if tags["parking"] == "yes" || tags["parking:fee"] != "" {
		amenities = append(amenities, "parking")
	}
	if tags["air_conditioning"] == "yes" {
		amenities = append(amenities, "air conditioning")
	}
	if tags["outdoor_seating"] == "yes" {
		amenities = append(amenities, "outdoor seating")
	}
	if tags["takeaway"] == "yes" {
		amenities = append(amenities, "takeaway")
	}
	if tags["delivery"] == "yes" {
		amenities = append(amenities, "delivery")
	}
	if tags["payment:credit_cards"] == "yes" {
		amenities = append(amenities, "credit cards")
	}
	return amenities
}

// normalizeAmenities lowercases, trims and dedupes an amenity list. Order is
// irrelevant for the set semantics but kept sorted for determinism.
func normalizeAmenities(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, a := range raw {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// joinAddressParts builds a display address from component fields, skipping
// blanks. Returns nil when nothing was supplied.
func joinAddressParts(parts ...string) *string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	s := strings.Join(kept, ", ")
	return &s
}

// clampRating normalizes a provider rating onto the canonical 0-5 scale.
func clampRating(r float64) *float64 {
	if r <= 0 {
		return nil
	}
	if r > 5 {
		r = 5
	}
	return &r
}
