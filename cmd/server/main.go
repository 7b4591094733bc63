package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"safetypal/internal/config"
	"safetypal/internal/database/boltstore"
	"safetypal/internal/database/sqlitestore"
	"safetypal/internal/handlers"
	"safetypal/internal/metrics"
	"safetypal/internal/report"
	"safetypal/internal/routing"
	"safetypal/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	configureLogging(cfg)
	log.Info().Msg("Starting SafetyPal moderation service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional tracing export
	if cfg.TracingEnabled {
		tp, err := tracing.Init(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracing")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Tracer shutdown failed")
			}
		}()
		log.Info().Msg("Tracing initialized")
	}

	// Open the selected storage backend
	var (
		reports  report.Store
		zones    report.SafeZoneStore
		settings report.SettingsStore
		closer   interface{ Close() error }
	)
	switch cfg.StoreBackend {
	case "sqlite":
		store, err := sqlitestore.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
		}
		reports = store.ReportStore()
		zones = store.SafeZoneStore()
		settings = store.SettingsStore()
		closer = store
	case "bolt":
		store, err := boltstore.Open(boltstore.Options{Path: boltPath(cfg)})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open database")
		}
		reports = store.ReportStore()
		zones = store.SafeZoneStore()
		settings = store.SettingsStore()
		closer = store
	default:
		log.Fatal().Str("backend", cfg.StoreBackend).Msg("Unknown store backend")
	}
	defer closer.Close()
	log.Info().Str("backend", cfg.StoreBackend).Msg("Database opened")

	engine := report.NewEngine(reports, cfg.RequestTimeout)
	agg := report.NewAggregator(reports)

	// Periodic gauge collection for the dashboard metrics
	metrics.StartCollector(ctx, metrics.StatsSource{
		ReportsByStatus: func() map[string]int {
			counts, err := reports.StatusCounts(context.Background())
			if err != nil {
				log.Warn().Err(err).Msg("Status counter read failed")
				return nil
			}
			byStatus := make(map[string]int, len(counts))
			for status, n := range counts {
				byStatus[string(status)] = n
			}
			return byStatus
		},
		ActiveSafeZones: func() int {
			all, err := zones.ListSafeZones(context.Background())
			if err != nil {
				return 0
			}
			active := 0
			for _, zone := range all {
				if zone.Active {
					active++
				}
			}
			return active
		},
	}, cfg.MetricsInterval)

	h := handlers.NewHandler(engine, reports, zones, settings, agg, handlers.Config{
		DefaultAdminID: cfg.DefaultAdminID,
	})

	handler := routing.SetupRouter(routing.Config{
		Handlers:       h,
		Logger:         log.Logger,
		TracingEnabled: cfg.TracingEnabled,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Stopped")
}

// configureLogging applies the log level and format from config.
func configureLogging(cfg *config.Config) {
	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Use pretty console logging in development, JSON in production
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// boltPath resolves the database location, defaulting to the XDG data
// directory so the binary works when run from read-only locations.
func boltPath(cfg *config.Config) string {
	if cfg.DBPath != "" {
		return cfg.DBPath
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get home directory")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "safetypal", "safetypal.db")
}
