package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	ProviderRequestsTotal    metric.Int64Counter
	ProviderFailuresTotal    metric.Int64Counter
	ProviderDurationSeconds  metric.Float64Histogram
	AggregateDurationSeconds metric.Float64Histogram
	CatalogUpsertsTotal      metric.Int64Counter
	CatalogUpsertErrorsTotal metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("EventScout")
		var err error
		m := &AppMetrics{}

		m.ProviderRequestsTotal, err = meter.Int64Counter(
			"provider_requests_total",
			metric.WithDescription("Total number of provider search calls issued"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_requests_total: %v", err)
		}

		m.ProviderFailuresTotal, err = meter.Int64Counter(
			"provider_failures_total",
			metric.WithDescription("Total number of provider search calls that ended in a warning"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_failures_total: %v", err)
		}

		m.ProviderDurationSeconds, err = meter.Float64Histogram(
			"provider_duration_seconds",
			metric.WithDescription("Duration of individual provider search calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_duration_seconds: %v", err)
		}

		m.AggregateDurationSeconds, err = meter.Float64Histogram(
			"aggregate_duration_seconds",
			metric.WithDescription("End-to-end duration of aggregation calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create aggregate_duration_seconds: %v", err)
		}

		m.CatalogUpsertsTotal, err = meter.Int64Counter(
			"catalog_upserts_total",
			metric.WithDescription("Total number of places written to the catalog"),
			metric.WithUnit("{row}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create catalog_upserts_total: %v", err)
		}

		m.CatalogUpsertErrorsTotal, err = meter.Int64Counter(
			"catalog_upsert_errors_total",
			metric.WithDescription("Total number of failed catalog writes"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create catalog_upsert_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
