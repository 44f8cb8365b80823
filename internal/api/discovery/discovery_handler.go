package discovery

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/api"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

type Handler struct {
	logger    *slog.Logger
	service   Service
	searchCfg config.SearchConfig
}

func NewHandler(service Service, searchCfg config.SearchConfig, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		searchCfg: searchCfg,
	}
}

// CaterersRequest is the POST /discovery/caterers body.
type CaterersRequest struct {
	Location     string  `json:"location"`
	Guests       int     `json:"guests"`
	Cuisine      string  `json:"cuisine,omitempty"`
	RadiusMeters float64 `json:"radius_meters,omitempty"`
	Limit        int     `json:"limit,omitempty"`
	LocationOnly bool    `json:"location_only,omitempty"`
}

// VenuesRequest is the POST /discovery/venues body.
type VenuesRequest struct {
	Location     string  `json:"location"`
	Guests       int     `json:"guests"`
	Capacity     *int    `json:"capacity,omitempty"`
	RadiusMeters float64 `json:"radius_meters,omitempty"`
	Limit        int     `json:"limit,omitempty"`
	LocationOnly bool    `json:"location_only,omitempty"`
}

// CaterersResponse pairs the ranked places with the grouped cuisine summary.
type CaterersResponse struct {
	Places   []types.Place         `json:"places"`
	Summary  types.CateringSummary `json:"summary"`
	Partial  bool                  `json:"partial"`
	Warnings []types.Warning       `json:"warnings"`
	Area     types.SearchArea      `json:"area"`
}

// VenuesResponse pairs the ranked places with per-venue rental estimates.
type VenuesResponse struct {
	Places   []types.Place      `json:"places"`
	Summary  types.VenueSummary `json:"summary"`
	Partial  bool               `json:"partial"`
	Warnings []types.Warning    `json:"warnings"`
	Area     types.SearchArea   `json:"area"`
}

// SearchCaterers handles POST /discovery/caterers.
func (h *Handler) SearchCaterers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DiscoveryHandler").Start(r.Context(), "SearchCaterers")
	defer span.End()

	l := h.logger.With(slog.String("method", "SearchCaterers"))

	var body CaterersRequest
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Aggregate(ctx, types.SearchRequest{
		Location:     body.Location,
		Category:     types.CategoryCaterer,
		Cuisine:      body.Cuisine,
		RadiusMeters: body.RadiusMeters,
		Limit:        body.Limit,
		LocationOnly: body.LocationOnly,
	})
	if err != nil {
		h.writeAggregateError(ctx, w, r, span, err)
		return
	}

	resp := CaterersResponse{
		Places:   result.Places,
		Summary:  BuildCateringSummary(result.Places, body.Guests, h.searchCfg),
		Partial:  result.Partial,
		Warnings: result.Warnings,
		Area:     result.Area,
	}
	l.InfoContext(ctx, "Caterer search completed",
		slog.Int("places", len(resp.Places)), slog.Bool("partial", resp.Partial))
	span.SetStatus(codes.Ok, "Caterers returned successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// SearchVenues handles POST /discovery/venues.
func (h *Handler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DiscoveryHandler").Start(r.Context(), "SearchVenues")
	defer span.End()

	l := h.logger.With(slog.String("method", "SearchVenues"))

	var body VenuesRequest
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	capacityHint := body.Capacity
	if capacityHint == nil && body.Guests > 0 {
		capacityHint = &body.Guests
	}

	result, err := h.service.Aggregate(ctx, types.SearchRequest{
		Location:     body.Location,
		Category:     types.CategoryVenue,
		CapacityHint: capacityHint,
		RadiusMeters: body.RadiusMeters,
		Limit:        body.Limit,
		LocationOnly: body.LocationOnly,
	})
	if err != nil {
		h.writeAggregateError(ctx, w, r, span, err)
		return
	}

	resp := VenuesResponse{
		Places:   result.Places,
		Summary:  BuildVenueSummary(result.Places, h.searchCfg),
		Partial:  result.Partial,
		Warnings: result.Warnings,
		Area:     result.Area,
	}
	l.InfoContext(ctx, "Venue search completed",
		slog.Int("places", len(resp.Places)), slog.Bool("partial", resp.Partial))
	span.SetStatus(codes.Ok, "Venues returned successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *Handler) writeAggregateError(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "Aggregation failed")
	switch {
	case errors.Is(err, types.ErrNoProvidersSelected):
		h.logger.ErrorContext(ctx, "No providers configured for category", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, types.ErrLocationUnresolvable):
		h.logger.ErrorContext(ctx, "Location could not be resolved", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.ErrorContext(ctx, "Aggregation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "search failed")
	}
}
