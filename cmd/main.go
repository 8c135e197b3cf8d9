package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ritogk/roadscan/internal/config"
	"github.com/ritogk/roadscan/internal/geocoding"
	"github.com/ritogk/roadscan/internal/loader"
	"github.com/ritogk/roadscan/internal/metrics"
	"github.com/ritogk/roadscan/internal/report"
	"github.com/ritogk/roadscan/internal/repository"
	"github.com/ritogk/roadscan/internal/service"
	"github.com/ritogk/roadscan/internal/streetview"
	"github.com/ritogk/roadscan/internal/vision"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	if cfg.MapsAPIKey == "" {
		log.Fatal("ROADSCAN_MAPS_KEY is required")
	}
	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is required")
	}

	// Load the coordinate list up front; a bad source file is fatal before
	// any request is made.
	coords, err := loader.Load(cfg.LocationsFile, loader.Selection{
		Mode:  loader.SelectionMode(cfg.SelectMode),
		Count: cfg.SelectCount,
	})
	if err != nil {
		log.Fatalf("Failed to load coordinates: %v", err)
	}
	logger.InfoContext(ctx, "Coordinates loaded", "file", cfg.LocationsFile, "count", len(coords))

	// Create a separate registry for application metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	fetcher := streetview.NewClient(cfg.MapsAPIKey, cfg.SnapshotDir, cfg.RateLimit, logger)

	pricing := vision.Pricing{
		InputUSDPerMTok:  cfg.InputUSDPerMTok,
		OutputUSDPerMTok: cfg.OutputUSDPerMTok,
		JPYPerUSD:        cfg.JPYPerUSD,
	}
	analyzer := vision.NewClient(cfg.AnthropicAPIKey, cfg.Model, cfg.MaxTokens, pricing, logger)

	// Address enrichment is optional and shares the Maps API key.
	var resolver geocoding.Resolver
	if cfg.ReverseGeocode {
		googleResolver, rErr := geocoding.NewGoogleResolverFromKey(cfg.MapsAPIKey, cfg.RateLimit, logger)
		if rErr != nil {
			log.Fatalf("Failed to create geocoding resolver: %v", rErr)
		}
		resolver = googleResolver
		logger.InfoContext(ctx, "Address enrichment enabled")
	}

	// The Postgres sink is optional; the JSON report is always written.
	var repo repository.Interface
	if cfg.Database.Enabled() {
		dtb, dbErr := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if dbErr != nil {
			log.Fatalf("Failed to connect to DB: %v", dbErr)
		}
		defer dtb.Close()
		repo = repository.NewRepository(dtb, logger)
		logger.InfoContext(ctx, "Database persistence enabled", "host", cfg.Database.Host)
	}

	store := report.NewStore(cfg.OutputDir, logger)

	analysisService := service.NewAnalysisService(
		logger,
		fetcher,
		analyzer,
		resolver,
		store,
		repo,
		appMetrics,
		os.Stdout,
	)

	// Start the monitoring server when a port is configured; long batches can
	// then be observed while they run.
	if cfg.Port > 0 {
		go startMonitoringServer(ctx, logger, reg, cfg.Port)
	}

	logger.InfoContext(ctx, "Analysis started", "locations", len(coords), "model", cfg.Model)

	if _, err = analysisService.Run(ctx, coords); err != nil {
		logger.ErrorContext(ctx, "Analysis batch failed", "error", err)
		os.Exit(1)
	}
}

// startMonitoringServer starts an HTTP server that provides health check and
// metrics endpoints. It listens on the specified port and logs the server's
// status and any errors encountered.
func startMonitoringServer(ctx context.Context, log *slog.Logger, reg *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
