package types

import (
	"time"
)

// Source identifies the external provider a record came from.
type Source string

const (
	SourceNominatim    Source = "nominatim"
	SourcePhoton       Source = "photon"
	SourceGooglePlaces Source = "google_places"
	SourceOverpassOSM  Source = "overpass_osm"
	SourceYelp         Source = "yelp"
)

// Category says what kind of place a search is after.
type Category string

const (
	CategoryCaterer Category = "caterer"
	CategoryVenue   Category = "venue"
)

// SourceRef identifies a record within its origin provider. Source plus
// SourceID is unique before deduplication.
type SourceRef struct {
	Source   Source `json:"source"`
	SourceID string `json:"source_id"`
}

// Place is the canonical record every adapter normalizes into, independent
// of origin provider.
type Place struct {
	SourceID    string    `json:"source_id"`
	Source      Source    `json:"source"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Location    *GeoPoint `json:"location,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Rating      *float64  `json:"rating,omitempty"` // normalized to 0-5
	ReviewCount int       `json:"review_count"`
	// PriceSignal is a normalized monetary estimate: cost per guest for
	// caterers, hourly rate for venues. Derived heuristically when the
	// provider only reports a coarse tier.
	PriceSignal *float64 `json:"price_signal,omitempty"`
	Capacity    *int     `json:"capacity,omitempty"` // venues only
	Cuisine     *string  `json:"cuisine,omitempty"`  // caterers only, normalized label
	Amenities   []string `json:"amenities,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Website     *string  `json:"website,omitempty"`
	// RawAttributes keeps provider-specific extras for debugging. Ranking
	// never reads them.
	RawAttributes map[string]any `json:"raw_attributes,omitempty"`
	// MergedFrom is the provenance trail accumulated by deduplication.
	MergedFrom []SourceRef `json:"merged_from,omitempty"`
}

// Ref returns the place's own provenance entry.
func (p Place) Ref() SourceRef {
	return SourceRef{Source: p.Source, SourceID: p.SourceID}
}

// ProviderOutcome is the result of one adapter invocation. Adapters never
// return errors; failures are captured here as data.
type ProviderOutcome struct {
	Source  Source         `json:"source"`
	Places  []Place        `json:"places"`
	Err     *ProviderError `json:"error,omitempty"`
	Elapsed time.Duration  `json:"elapsed"`
}

// Warning surfaces one provider-level failure on an aggregation result.
type Warning struct {
	Source  Source    `json:"source"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// AggregationResult is the merged, deduplicated, ranked outcome of one
// search across all selected providers.
type AggregationResult struct {
	Places   []Place    `json:"places"`
	Warnings []Warning  `json:"warnings"`
	Partial  bool       `json:"partial"`
	Area     SearchArea `json:"area"`
}

// SearchRequest is the orchestrator's single entry-point argument.
type SearchRequest struct {
	Location     string   `json:"location"`
	Category     Category `json:"category"`
	Cuisine      string   `json:"cuisine,omitempty"`
	CapacityHint *int     `json:"capacity_hint,omitempty"`
	RadiusMeters float64  `json:"radius_meters,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	// LocationOnly drops places the providers could not geocode.
	LocationOnly bool `json:"location_only,omitempty"`
}
