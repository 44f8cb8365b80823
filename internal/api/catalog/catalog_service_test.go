package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertPlace(ctx context.Context, place types.Place) (uuid.UUID, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) CountBySource(ctx context.Context) (map[types.Source]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[types.Source]int)
	return counts, args.Error(1)
}

type stubAggregator struct {
	results map[types.Category]*types.AggregationResult
	err     error
}

func (s *stubAggregator) Aggregate(_ context.Context, req types.SearchRequest) (*types.AggregationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[req.Category], nil
}

func TestSync_UpsertsAggregatedPlaces(t *testing.T) {
	venue := types.Place{SourceID: "osm_node_1", Source: types.SourceOverpassOSM, Name: "Grand Hall", Category: types.CategoryVenue}
	cater := types.Place{SourceID: "y1", Source: types.SourceYelp, Name: "Pasta Palace", Category: types.CategoryCaterer}

	aggregator := &stubAggregator{results: map[types.Category]*types.AggregationResult{
		types.CategoryVenue: {Places: []types.Place{venue}},
		types.CategoryCaterer: {
			Places: []types.Place{cater},
			Warnings: []types.Warning{
				{Source: types.SourceGooglePlaces, Kind: types.ErrorKindUnavailable, Message: "no key"},
			},
			Partial: true,
		},
	}}

	repo := new(MockRepository)
	repo.On("UpsertPlace", mock.Anything, venue).Return(uuid.New(), nil).Once()
	repo.On("UpsertPlace", mock.Anything, cater).Return(uuid.New(), nil).Once()
	repo.On("CountBySource", mock.Anything).
		Return(map[types.Source]int{types.SourceYelp: 1, types.SourceOverpassOSM: 1}, nil).Once()

	svc := NewServiceImpl(repo, aggregator, slog.Default())
	report, err := svc.Sync(context.Background(), SyncRequest{Location: "san francisco"})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Upserted)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, report.Warnings, 1, "provider warnings pass through")
	assert.Equal(t, 1, report.CatalogCounts[types.SourceYelp])
	repo.AssertExpectations(t)
}

func TestSync_CountsFailedUpserts(t *testing.T) {
	place := types.Place{SourceID: "y1", Source: types.SourceYelp, Name: "Pasta Palace", Category: types.CategoryCaterer}
	aggregator := &stubAggregator{results: map[types.Category]*types.AggregationResult{
		types.CategoryVenue:   {},
		types.CategoryCaterer: {Places: []types.Place{place}},
	}}

	repo := new(MockRepository)
	repo.On("UpsertPlace", mock.Anything, place).Return(uuid.Nil, errors.New("connection reset")).Once()
	repo.On("CountBySource", mock.Anything).Return(map[types.Source]int{}, nil).Once()

	svc := NewServiceImpl(repo, aggregator, slog.Default())
	report, err := svc.Sync(context.Background(), SyncRequest{Location: "san francisco"})

	require.NoError(t, err, "a failed row does not abort the run")
	assert.Equal(t, 0, report.Upserted)
	assert.Equal(t, 1, report.Failed)
	repo.AssertExpectations(t)
}

func TestSync_AggregationErrorAborts(t *testing.T) {
	aggregator := &stubAggregator{err: types.ErrNoProvidersSelected}
	repo := new(MockRepository)

	svc := NewServiceImpl(repo, aggregator, slog.Default())
	_, err := svc.Sync(context.Background(), SyncRequest{Location: "san francisco"})

	assert.ErrorIs(t, err, types.ErrNoProvidersSelected)
	repo.AssertNotCalled(t, "UpsertPlace", mock.Anything, mock.Anything)
}
