package locations

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*types.GeoPoint, error) {
	args := m.Called(ctx, address)
	pt, _ := args.Get(0).(*types.GeoPoint)
	return pt, args.Error(1)
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultRadiusMeters: 10_000,
		CityCentroids: map[string]config.LatLon{
			"new york": {Lat: 40.7128, Lon: -74.0060},
		},
		DefaultCenter: config.LatLon{Lat: 37.7749, Lon: -122.4194},
	}
}

func TestResolve_GeocoderHit(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Geocode", mock.Anything, "123 Market St, San Francisco").
		Return(&types.GeoPoint{Latitude: 37.7936, Longitude: -122.3958}, nil).Once()

	svc := NewServiceImpl(geocoder, testSearchConfig(), slog.Default())
	area, err := svc.Resolve(context.Background(), "123 Market St, San Francisco", 5_000)

	require.NoError(t, err)
	assert.InDelta(t, 37.7936, area.Center.Latitude, 1e-9)
	assert.Equal(t, 5_000.0, area.RadiusMeters)
	geocoder.AssertExpectations(t)
}

func TestResolve_CachesGeocodedResult(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Geocode", mock.Anything, "Oakland").
		Return(&types.GeoPoint{Latitude: 37.8044, Longitude: -122.2712}, nil).Once()

	svc := NewServiceImpl(geocoder, testSearchConfig(), slog.Default())

	_, err := svc.Resolve(context.Background(), "Oakland", 0)
	require.NoError(t, err)
	area, err := svc.Resolve(context.Background(), "Oakland", 0)
	require.NoError(t, err)

	assert.InDelta(t, 37.8044, area.Center.Latitude, 1e-9)
	geocoder.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestResolve_CentroidFallback(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Geocode", mock.Anything, "New York").
		Return(nil, errors.New("nominatim unreachable")).Once()

	svc := NewServiceImpl(geocoder, testSearchConfig(), slog.Default())
	area, err := svc.Resolve(context.Background(), "New York", 0)

	require.NoError(t, err)
	assert.InDelta(t, 40.7128, area.Center.Latitude, 1e-9)
	assert.InDelta(t, -74.0060, area.Center.Longitude, 1e-9)
	assert.Equal(t, 10_000.0, area.RadiusMeters, "default radius applied")
}

func TestResolve_DefaultCenterFallback(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Geocode", mock.Anything, "Nowhereville").
		Return(nil, errors.New("no results")).Once()

	svc := NewServiceImpl(geocoder, testSearchConfig(), slog.Default())
	area, err := svc.Resolve(context.Background(), "Nowhereville", 0)

	require.NoError(t, err)
	assert.InDelta(t, 37.7749, area.Center.Latitude, 1e-9)
	assert.InDelta(t, -122.4194, area.Center.Longitude, 1e-9)
}

func TestResolve_EmptyTextUsesDefault(t *testing.T) {
	svc := NewServiceImpl(nil, testSearchConfig(), slog.Default())
	area, err := svc.Resolve(context.Background(), "   ", 0)

	require.NoError(t, err)
	assert.InDelta(t, 37.7749, area.Center.Latitude, 1e-9)
}

func TestResolve_UnresolvableOnlyWithBrokenConfig(t *testing.T) {
	cfg := testSearchConfig()
	cfg.DefaultCenter = config.LatLon{Lat: 999, Lon: 999}

	svc := NewServiceImpl(nil, cfg, slog.Default())
	_, err := svc.Resolve(context.Background(), "", 0)

	assert.ErrorIs(t, err, types.ErrLocationUnresolvable)
}
