// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tarunkumar2005/fomi/internal/api/auth"
	"github.com/tarunkumar2005/fomi/internal/api/forms"
	"github.com/tarunkumar2005/fomi/internal/api/themes"
	"github.com/tarunkumar2005/fomi/internal/cache"
	"github.com/tarunkumar2005/fomi/internal/config"
	"github.com/tarunkumar2005/fomi/internal/db"
	"github.com/tarunkumar2005/fomi/internal/models"
	"github.com/tarunkumar2005/fomi/internal/ratelimit"
	"github.com/tarunkumar2005/fomi/internal/scheduler"
	"github.com/tarunkumar2005/fomi/internal/theming"
)

func configPath() string {
	fallback := "config/app.yaml"
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		fallback = value
	}
	path := flag.String("config", fallback, "path to the YAML configuration file")
	flag.Parse()
	return *path
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = os.Stderr
	if cfg.IsDevelopment() {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if cfg.Logging.File == "" {
		log.Logger = log.Output(console)
		return
	}
	file := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(console, file))
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	if cfg.Theming.SeedOnStart {
		n, err := db.SeedBuiltInThemes(context.Background(), database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed built-in themes")
		}
		log.Info().Int("themes", n).Msg("Seeded built-in themes")
	}

	catalogCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create catalog cache")
	}
	if catalogCache != nil {
		defer catalogCache.Close()
	}

	store := models.NewStore(database.Queries, catalogCache, time.Duration(cfg.Cache.TTL)*time.Second)
	// Seeding may have changed the built-in list behind a shared cache.
	store.InvalidateBuiltIn(context.Background())

	var registry *prometheus.Registry
	var metrics *theming.Metrics
	if cfg.Features.EnableMetrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = theming.NewMetrics(registry)
	}

	library := theming.NewService(store, cfg.Theming.MaxThemesPerOwner)
	editors := theming.NewSessions(theming.SessionsConfig{
		Store:         store,
		Library:       library,
		AutosaveDelay: cfg.Theming.AutosaveDelay(),
		SaveTimeout:   cfg.Theming.SaveTimeout(),
		Metrics:       metrics,
	})

	auth.Init(cfg)
	themes.InitHandlers(library)
	forms.InitHandlers(store, editors)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(&ratelimit.Config{
			Window:     time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			MaxPerUser: cfg.RateLimit.MaxPerUser,
			MaxPerIP:   cfg.RateLimit.MaxPerIP,
			TrustProxy: cfg.RateLimit.TrustProxy,
		})
		defer limiter.Close()
	}

	if err := scheduler.Init(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterSessionSweep(editors, cfg.Theming.SweepCron, cfg.Theming.SessionIdle(), cfg.Theming.SaveTimeout()); err != nil {
		log.Fatal().Err(err).Msg("Failed to register session sweep")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Create server instance
	server := newServer(cfg, serverDeps{limiter: limiter, registry: registry})

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Run server
	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		// Requests are drained; write whatever the editors still hold.
		if err := editors.Close(shutdownCtx); err != nil {
			return fmt.Errorf("flush editor sessions: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
