package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/FACorreiaa/go-event-scout/app/db"
	appLogger "github.com/FACorreiaa/go-event-scout/app/logger"
	"github.com/FACorreiaa/go-event-scout/app/tracer"
	"github.com/FACorreiaa/go-event-scout/internal/api/catalog"
	"github.com/FACorreiaa/go-event-scout/internal/api/discovery"
	"github.com/FACorreiaa/go-event-scout/internal/api/locations"
	"github.com/FACorreiaa/go-event-scout/internal/providers"
	api "github.com/FACorreiaa/go-event-scout/internal/router"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	// --- Initial Loading ---
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	// --- Logger Setup ---
	logger := setupLogger()
	slog.SetDefault(logger)

	// --- Observability ---
	tracer.InitTracingAndMetrics()

	// --- Application Context & Shutdown ---
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Provider Adapters ---
	nominatim := providers.NewNominatim(
		cfg.Providers.Nominatim.BaseURL,
		cfg.Providers.Nominatim.UserAgent,
		cfg.Providers.Nominatim.RequestsPerSecond,
		cfg.Providers.Timeout,
		logger,
	)
	photon := providers.NewPhoton(cfg.Providers.Photon.BaseURL, cfg.Providers.Timeout, logger)
	googlePlaces, err := providers.NewGooglePlaces(os.Getenv("GOOGLE_MAPS_API_KEY"), "", cfg.Providers.Timeout, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Places adapter", slog.Any("error", err))
		os.Exit(1)
	}
	overpass := providers.NewOverpass(
		cfg.Providers.Overpass.BaseURL,
		cfg.Providers.Overpass.RequestsPerSecond,
		cfg.Providers.Timeout,
		logger,
	)
	yelp := providers.NewYelp(cfg.Providers.Yelp.BaseURL, os.Getenv("YELP_API_KEY"), cfg.Providers.Timeout, logger)

	adapters := []providers.Adapter{nominatim, photon, googlePlaces, overpass, yelp}

	// --- Dependency Injection ---
	resolver := locations.NewServiceImpl(nominatim, cfg.Search, logger)
	discoveryService := discovery.NewServiceImpl(resolver, adapters, &cfg, logger)
	discoveryHandler := discovery.NewHandler(discoveryService, cfg.Search, logger)

	// --- Optional Database / Catalog Setup ---
	// The catalog needs Postgres; discovery works without it.
	var catalogHandler *catalog.Handler
	if cfg.Repositories.Postgres.Host != "" {
		dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			os.Exit(1)
		}

		// Run migrations *before* initializing the main pool
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			os.Exit(1)
		}

		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()

		if !database.WaitForDB(ctx, pool, logger) {
			logger.Error("Database not ready after waiting, exiting.")
			os.Exit(1)
		}

		catalogRepo := catalog.NewPostgresRepository(pool, logger)
		catalogService := catalog.NewServiceImpl(catalogRepo, discoveryService, logger)
		catalogHandler = catalog.NewHandler(catalogService, logger)
	} else {
		logger.Info("Postgres not configured, catalog routes disabled")
	}

	// --- Router Setup ---
	routerConfig := &api.Config{
		DiscoveryHandler: discoveryHandler,
		CatalogHandler:   catalogHandler,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	// --- Start Server Goroutine ---
	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	// --- Wait for Shutdown Signal ---
	<-ctx.Done()

	// --- Graceful Shutdown ---
	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" { // Default to development if not set
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
