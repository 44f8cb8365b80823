package catalog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

func TestUpsertPlace(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRepository(mockPool, slog.Default())

	rating := 4.5
	price := 55.0
	cuisine := "Italian"
	lat, lon := 37.7750, -122.4195
	place := types.Place{
		SourceID:    "y1",
		Source:      types.SourceYelp,
		Name:        "Luigi's Ristorante",
		Category:    types.CategoryCaterer,
		Location:    &types.GeoPoint{Latitude: lat, Longitude: lon},
		Rating:      &rating,
		ReviewCount: 120,
		PriceSignal: &price,
		Cuisine:     &cuisine,
		Amenities:   []string{"wifi"},
	}

	wantID := uuid.New()
	mockPool.ExpectQuery("INSERT INTO places").
		WithArgs(
			place.Source, place.SourceID, place.Name, place.Category,
			&lat, &lon, place.Address, place.Rating, place.ReviewCount,
			place.PriceSignal, place.Capacity, place.Cuisine,
			place.Amenities, place.Phone, place.Website,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(wantID))

	id, err := repo.UpsertPlace(context.Background(), place)
	require.NoError(t, err)
	assert.Equal(t, wantID, id)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestUpsertPlace_NilAmenitiesStoredAsEmptyArray(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRepository(mockPool, slog.Default())

	place := types.Place{
		SourceID: "osm_node_1",
		Source:   types.SourceOverpassOSM,
		Name:     "Harbor Hall",
		Category: types.CategoryVenue,
	}

	mockPool.ExpectQuery("INSERT INTO places").
		WithArgs(
			place.Source, place.SourceID, place.Name, place.Category,
			(*float64)(nil), (*float64)(nil), place.Address, place.Rating,
			place.ReviewCount, place.PriceSignal, place.Capacity, place.Cuisine,
			[]string{}, place.Phone, place.Website,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	_, err = repo.UpsertPlace(context.Background(), place)
	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCountBySource(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPostgresRepository(mockPool, slog.Default())

	mockPool.ExpectQuery("SELECT source, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"source", "count"}).
			AddRow(types.SourceOverpassOSM, 12).
			AddRow(types.SourceYelp, 7))

	counts, err := repo.CountBySource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[types.Source]int{
		types.SourceOverpassOSM: 12,
		types.SourceYelp:        7,
	}, counts)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
