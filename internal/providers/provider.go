package providers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Capability flags what kind of search an adapter can serve.
type Capability uint8

const (
	// CapNearby means the provider can search around a coordinate.
	CapNearby Capability = 1 << iota
	// CapQuery means the provider can run a free-text query.
	CapQuery
)

func (c Capability) Has(other Capability) bool {
	return c&other != 0
}

// Query carries the caller's filters into an adapter invocation.
type Query struct {
	Category     types.Category
	Cuisine      string
	CapacityHint *int
	Limit        int
}

// Adapter is the uniform capability every provider exposes: find candidate
// places for an area and query. Search never returns an error; transport
// failures, malformed responses and missing credentials are recorded on the
// outcome instead. The adapter boundary is failure-isolating.
type Adapter interface {
	Source() types.Source
	Capabilities() Capability
	Search(ctx context.Context, area types.SearchArea, q Query) types.ProviderOutcome
}

func failedOutcome(source types.Source, kind types.ErrorKind, msg string, start time.Time) types.ProviderOutcome {
	return types.ProviderOutcome{
		Source:  source,
		Err:     &types.ProviderError{Kind: kind, Message: msg},
		Elapsed: time.Since(start),
	}
}

func successOutcome(source types.Source, places []types.Place, start time.Time) types.ProviderOutcome {
	return types.ProviderOutcome{
		Source:  source,
		Places:  places,
		Elapsed: time.Since(start),
	}
}

func ptrTo[T any](v T) *T {
	return &v
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// classify sorts an adapter-internal error into the warning taxonomy:
// parse failures are malformed responses, everything else (transport,
// timeout, credentials) is provider unavailability.
func classify(err error) types.ErrorKind {
	var perr *types.ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return types.ErrorKindUnavailable
}

// viewbox renders a Nominatim-style lon1,lat1,lon2,lat2 bounding box
// approximating the search area.
func viewbox(area types.SearchArea) string {
	// One degree of latitude is ~111.32 km; longitude shrinks with latitude
	// but the box is only a coarse pre-filter, radius filtering happens in
	// the ranker.
	d := area.RadiusMeters / 111_320
	return fmt.Sprintf("%f,%f,%f,%f",
		area.Center.Longitude-d, area.Center.Latitude-d,
		area.Center.Longitude+d, area.Center.Latitude+d)
}

// osmSourceID stamps the cross-provider identifier for an OSM object. Node,
// way and relation ids live in independent id spaces, so the object type is
// part of the identity. Photon abbreviates types to N/W/R.
func osmSourceID(osmType, id string) string {
	switch strings.ToLower(strings.TrimSpace(osmType)) {
	case "w", "way":
		return "osm_way_" + id
	case "r", "relation":
		return "osm_relation_" + id
	default:
		return "osm_node_" + id
	}
}

func firstSegment(displayName string) string {
	name, _, _ := strings.Cut(displayName, ",")
	return strings.TrimSpace(name)
}

func parseLatLon(lat, lon string) (*types.GeoPoint, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", lon, err)
	}
	pt := types.GeoPoint{Latitude: la, Longitude: lo}
	if !pt.Valid() {
		return nil, fmt.Errorf("coordinates out of range: %s", pt)
	}
	return &pt, nil
}
