package catalog

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-event-scout/internal/api"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Sync handles POST /catalog/sync - refreshes the catalog for a location.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CatalogHandler").Start(r.Context(), "Sync")
	defer span.End()

	l := h.logger.With(slog.String("method", "Sync"))

	var body SyncRequest
	if err := api.DecodeJSONBody(w, r, &body); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Sync(ctx, body)
	if err != nil {
		l.ErrorContext(ctx, "Catalog sync failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalog sync failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "catalog sync failed")
		return
	}

	l.InfoContext(ctx, "Catalog sync succeeded", slog.Int("upserted", report.Upserted))
	span.SetStatus(codes.Ok, "Catalog synced successfully")
	api.WriteJSONResponse(w, r, http.StatusOK, report)
}
