// Package locations turns free-text location input into a concrete search
// area. Resolution is layered so a search always gets a usable center.
package locations

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Geocoder is the forward-geocoding slice of the Nominatim adapter.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*types.GeoPoint, error)
}

// Service resolves location text into a search area.
type Service interface {
	Resolve(ctx context.Context, locationText string, radiusMeters float64) (types.SearchArea, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	geocoder      Geocoder
	cache         *cache.Cache
	centroids     map[string]config.LatLon
	defaultCenter types.GeoPoint
	defaultRadius float64
}

func NewServiceImpl(geocoder Geocoder, cfg config.SearchConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		geocoder:      geocoder,
		cache:         cache.New(30*time.Minute, 10*time.Minute),
		centroids:     cfg.CityCentroids,
		defaultCenter: types.GeoPoint{Latitude: cfg.DefaultCenter.Lat, Longitude: cfg.DefaultCenter.Lon},
		defaultRadius: cfg.DefaultRadiusMeters,
	}
}

// Resolve maps location text to a search area: cached result, then live
// geocoding, then the well-known city centroid table, then the configured
// default center. The chain bottoms out at the default, so resolution only
// fails if the configuration itself is broken.
func (s *ServiceImpl) Resolve(ctx context.Context, locationText string, radiusMeters float64) (types.SearchArea, error) {
	ctx, span := otel.Tracer("LocationService").Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("location.text", locationText))

	if radiusMeters <= 0 {
		radiusMeters = s.defaultRadius
	}

	key := normalizeKey(locationText)
	if key != "" {
		if cached, found := s.cache.Get(key); found {
			center := cached.(types.GeoPoint)
			return types.SearchArea{Center: center, RadiusMeters: radiusMeters}, nil
		}

		if s.geocoder != nil {
			if pt, err := s.geocoder.Geocode(ctx, locationText); err == nil && pt != nil && pt.Valid() {
				s.cache.Set(key, *pt, cache.DefaultExpiration)
				return types.SearchArea{Center: *pt, RadiusMeters: radiusMeters}, nil
			} else if err != nil {
				s.logger.DebugContext(ctx, "Geocoding failed, falling back to centroid table",
					slog.String("location", locationText), slog.Any("error", err))
			}
		}

		if ll, ok := s.centroids[key]; ok {
			center := types.GeoPoint{Latitude: ll.Lat, Longitude: ll.Lon}
			s.cache.Set(key, center, cache.DefaultExpiration)
			return types.SearchArea{Center: center, RadiusMeters: radiusMeters}, nil
		}
	}

	if !s.defaultCenter.Valid() {
		// Only reachable with a broken default center in config.
		return types.SearchArea{}, types.ErrLocationUnresolvable
	}
	s.logger.InfoContext(ctx, "Location not resolvable, using default center",
		slog.String("location", locationText), slog.String("center", s.defaultCenter.String()))
	return types.SearchArea{Center: s.defaultCenter, RadiusMeters: radiusMeters}, nil
}

func normalizeKey(locationText string) string {
	return strings.ToLower(strings.TrimSpace(locationText))
}
