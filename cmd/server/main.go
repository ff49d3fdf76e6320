package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soultrack/followup/internal/api"
	"soultrack/followup/internal/common"
	"soultrack/followup/internal/config"
	"soultrack/followup/internal/db"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/logging"
	"soultrack/followup/internal/metrics"
	"soultrack/followup/internal/notify"
	"soultrack/followup/internal/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("SoulTrack starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"handoff_mode", cfg.HandoffMode,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, sdb, err := db.Open(cfg)
	if err != nil {
		logging.Fatal("Failed to open data store", "error", err)
	}
	defer sdb.Close()
	logging.Info("Connected to data store", "driver", cfg.DBDriver)

	cache := openCache(cfg)
	defer cache.Close()

	publisher := openPublisher(cfg)
	defer publisher.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	deps, err := api.InitDependencies(ctx, cfg, gdb, sdb, cache, notify.NewNotifier(cfg.SMTP), publisher, metricsReg)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(ctx, deps, upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router) // Mount Chi router at root
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
	if err := deps.Services.Transfer.WaitNotifications(shutdownCtx); err != nil {
		logging.Warn("Pending notifications abandoned", "error", err)
	}
}

func openCache(cfg *config.Config) common.CacheInterface {
	if cfg.CacheDriver == "redis" {
		return common.NewRedisCacheService(common.NewRedisClient(cfg.Redis), "soultrack:")
	}
	logging.Info("Using in-memory cache")
	return common.NewCacheService(5*time.Minute, 10*time.Minute)
}

// openPublisher falls back to the no-op publisher when the broker is not
// configured or unreachable; lifecycle writes never depend on it.
func openPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		return events.NoopPublisher{}
	}
	p, err := events.NewRabbitMQPublisher(cfg.AMQPURL)
	if err != nil {
		logging.Warn("RabbitMQ unavailable, lifecycle events disabled", "error", err)
		return events.NoopPublisher{}
	}
	logging.Info("Connected to RabbitMQ")
	return p
}
