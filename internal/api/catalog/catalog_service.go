package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/internal/api/discovery"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// SyncRequest scopes one catalog refresh run.
type SyncRequest struct {
	Location     string   `json:"location"`
	RadiusMeters float64  `json:"radius_meters,omitempty"`
	Cuisines     []string `json:"cuisines,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// SyncReport summarizes what one refresh run wrote.
type SyncReport struct {
	Upserted      int                  `json:"upserted"`
	Failed        int                  `json:"failed"`
	Warnings      []types.Warning      `json:"warnings"`
	CatalogCounts map[types.Source]int `json:"catalog_counts"`
}

// Service refreshes the place catalog from live provider data.
type Service interface {
	Sync(ctx context.Context, req SyncRequest) (*SyncReport, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	repository Repository
	aggregator discovery.Service
	metrics    *metrics.AppMetrics
}

func NewServiceImpl(repository Repository, aggregator discovery.Service, logger *slog.Logger) *ServiceImpl {
	metrics.InitAppMetrics()
	return &ServiceImpl{
		logger:     logger,
		repository: repository,
		aggregator: aggregator,
		metrics:    metrics.Get(),
	}
}

// Sync aggregates both categories (venues once, caterers once per requested
// cuisine) concurrently and upserts every deduplicated place. Provider
// warnings pass through to the report; storage failures are counted in the
// report and the run continues.
func (s *ServiceImpl) Sync(ctx context.Context, req SyncRequest) (*SyncReport, error) {
	ctx, span := otel.Tracer("CatalogService").Start(ctx, "Sync")
	defer span.End()
	span.SetAttributes(attribute.String("sync.location", req.Location))

	searches := []types.SearchRequest{
		{Location: req.Location, Category: types.CategoryVenue, RadiusMeters: req.RadiusMeters, Limit: req.Limit},
	}
	if len(req.Cuisines) == 0 {
		searches = append(searches, types.SearchRequest{
			Location: req.Location, Category: types.CategoryCaterer,
			RadiusMeters: req.RadiusMeters, Limit: req.Limit,
		})
	}
	for _, cuisine := range req.Cuisines {
		searches = append(searches, types.SearchRequest{
			Location: req.Location, Category: types.CategoryCaterer, Cuisine: cuisine,
			RadiusMeters: req.RadiusMeters, Limit: req.Limit,
		})
	}

	results := make([]*types.AggregationResult, len(searches))
	g, gctx := errgroup.WithContext(ctx)
	for i, search := range searches {
		g.Go(func() error {
			result, err := s.aggregator.Aggregate(gctx, search)
			if err != nil {
				return fmt.Errorf("aggregating %s %q: %w", search.Category, search.Cuisine, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	report := &SyncReport{}
	for _, result := range results {
		report.Warnings = append(report.Warnings, result.Warnings...)
		for _, place := range result.Places {
			if _, err := s.repository.UpsertPlace(ctx, place); err != nil {
				s.metrics.CatalogUpsertErrorsTotal.Add(ctx, 1)
				report.Failed++
				s.logger.ErrorContext(ctx, "Failed to upsert place",
					slog.String("source", string(place.Source)),
					slog.String("source_id", place.SourceID),
					slog.Any("error", err),
				)
				continue
			}
			s.metrics.CatalogUpsertsTotal.Add(ctx, 1)
			report.Upserted++
		}
	}

	counts, err := s.repository.CountBySource(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to count catalog rows", slog.Any("error", err))
	} else {
		report.CatalogCounts = counts
	}

	s.logger.InfoContext(ctx, "Catalog sync completed",
		slog.Int("upserted", report.Upserted),
		slog.Int("failed", report.Failed),
		slog.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}
