// Package discovery hosts the aggregation orchestrator: one search request
// fans out to every configured provider, and whatever comes back is merged
// into a single ranked answer with per-provider warnings.
package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/api/locations"
	"github.com/FACorreiaa/go-event-scout/internal/dedupe"
	"github.com/FACorreiaa/go-event-scout/internal/providers"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the business logic contract for place discovery.
type Service interface {
	Aggregate(ctx context.Context, req types.SearchRequest) (*types.AggregationResult, error)
}

type ServiceImpl struct {
	logger          *slog.Logger
	resolver        locations.Service
	adapters        []providers.Adapter
	metrics         *metrics.AppMetrics
	providerTimeout time.Duration
	overallTimeout  time.Duration
	defaultLimit    int
}

func NewServiceImpl(resolver locations.Service, adapters []providers.Adapter, cfg *config.Config, logger *slog.Logger) *ServiceImpl {
	metrics.InitAppMetrics()
	return &ServiceImpl{
		logger:          logger,
		resolver:        resolver,
		adapters:        adapters,
		metrics:         metrics.Get(),
		providerTimeout: cfg.Providers.Timeout,
		overallTimeout:  cfg.Providers.OverallTimeout,
		defaultLimit:    cfg.Search.DefaultLimit,
	}
}

// Aggregate resolves the search area once, fans the query out to every
// selected provider concurrently and reduces the outcomes into a single
// deduplicated, ranked list. Provider failures become warnings on the
// result; the only error returns are an unresolvable location and an empty
// provider selection.
func (s *ServiceImpl) Aggregate(ctx context.Context, req types.SearchRequest) (*types.AggregationResult, error) {
	ctx, span := otel.Tracer("DiscoveryService").Start(ctx, "Aggregate")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.category", string(req.Category)),
		attribute.String("search.location", req.Location),
	)
	start := time.Now()
	defer func() {
		s.metrics.AggregateDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	selected := s.selectAdapters(req)
	if len(selected) == 0 {
		span.SetStatus(codes.Error, types.ErrNoProvidersSelected.Error())
		return nil, types.ErrNoProvidersSelected
	}

	area, err := s.resolver.Resolve(ctx, req.Location, req.RadiusMeters)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	query := providers.Query{
		Category:     req.Category,
		Cuisine:      req.Cuisine,
		CapacityHint: req.CapacityHint,
		Limit:        limit,
	}

	outcomes := s.fanOut(ctx, selected, area, query)

	var all []types.Place
	var warnings []types.Warning
	// Selection order is fixed at construction, so the merge input order
	// never depends on which goroutine finished first.
	for _, adapter := range selected {
		source := adapter.Source()
		out, ok := outcomes[source]
		if !ok {
			warnings = append(warnings, types.Warning{
				Source:  source,
				Kind:    types.ErrorKindUnavailable,
				Message: "provider did not respond before the overall deadline",
			})
			s.metrics.ProviderFailuresTotal.Add(ctx, 1)
			continue
		}
		s.metrics.ProviderDurationSeconds.Record(ctx, out.Elapsed.Seconds())
		if out.Err != nil {
			warnings = append(warnings, types.Warning{
				Source:  source,
				Kind:    out.Err.Kind,
				Message: out.Err.Message,
			})
			s.metrics.ProviderFailuresTotal.Add(ctx, 1)
			s.logger.WarnContext(ctx, "Provider search failed",
				slog.String("source", string(source)),
				slog.String("kind", string(out.Err.Kind)),
				slog.String("message", out.Err.Message),
			)
			continue
		}
		all = append(all, out.Places...)
	}

	merged := dedupe.MergeAndRank(all, area, 0, req.LocationOnly)
	if req.Category == types.CategoryVenue && req.CapacityHint != nil {
		merged = filterByCapacity(merged, *req.CapacityHint)
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	result := &types.AggregationResult{
		Places:   merged,
		Warnings: warnings,
		Partial:  len(warnings) > 0,
		Area:     area,
	}
	s.logger.InfoContext(ctx, "Aggregation completed",
		slog.Int("providers", len(selected)),
		slog.Int("places", len(result.Places)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Bool("partial", result.Partial),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// selectAdapters keeps every configured adapter that can serve the request
// at all: proximity search always applies, and free-text-only providers
// still contribute through their query capability.
func (s *ServiceImpl) selectAdapters(req types.SearchRequest) []providers.Adapter {
	selected := make([]providers.Adapter, 0, len(s.adapters))
	for _, adapter := range s.adapters {
		caps := adapter.Capabilities()
		if !caps.Has(providers.CapNearby) && !caps.Has(providers.CapQuery) {
			continue
		}
		selected = append(selected, adapter)
	}
	return selected
}

// fanOut runs every adapter concurrently, each under its own per-provider
// timeout, and collects outcomes until all report or the overall deadline
// expires. Stragglers are abandoned; their goroutines drain into the
// buffered channel and exit on their own context.
func (s *ServiceImpl) fanOut(ctx context.Context, selected []providers.Adapter, area types.SearchArea, query providers.Query) map[types.Source]types.ProviderOutcome {
	resultCh := make(chan types.ProviderOutcome, len(selected))
	var wg sync.WaitGroup
	for _, adapter := range selected {
		wg.Add(1)
		s.metrics.ProviderRequestsTotal.Add(ctx, 1)
		go func(adapter providers.Adapter) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
			defer cancel()
			resultCh <- adapter.Search(callCtx, area, query)
		}(adapter)
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make(map[types.Source]types.ProviderOutcome, len(selected))
	deadline := time.NewTimer(s.overallTimeout)
	defer deadline.Stop()
	for len(outcomes) < len(selected) {
		select {
		case out, ok := <-resultCh:
			if !ok {
				return outcomes
			}
			outcomes[out.Source] = out
		case <-deadline.C:
			return outcomes
		case <-ctx.Done():
			return outcomes
		}
	}
	return outcomes
}

// filterByCapacity drops venues whose known capacity is below the hint.
// Unknown capacity passes: presence beats precision at this stage.
func filterByCapacity(places []types.Place, hint int) []types.Place {
	kept := places[:0]
	for _, p := range places {
		if p.Capacity != nil && *p.Capacity < hint {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
