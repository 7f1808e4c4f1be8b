package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/veracare-health/booking-platform/internal/api/router"
	"github.com/veracare-health/booking-platform/internal/appointments"
	"github.com/veracare-health/booking-platform/internal/availability"
	appconfig "github.com/veracare-health/booking-platform/internal/config"
	"github.com/veracare-health/booking-platform/internal/observability/metrics"
	"github.com/veracare-health/booking-platform/internal/schedule"
	"github.com/veracare-health/booking-platform/internal/sessions"
	"github.com/veracare-health/booking-platform/pkg/logging"
)

func main() {
	// Load .env in development; real environments set variables directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}

	// "Today" for the rolling window is taken in the clinic's timezone.
	clinicLoc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		logger.Error("invalid clinic timezone", "error", err, "tz", cfg.ClinicTimezone)
		os.Exit(1)
	}
	clinicNow := func() time.Time { return time.Now().In(clinicLoc) }

	// Stores and repositories
	catalogStore := schedule.NewStore(redisClient)
	apptRepo := appointments.NewPostgresRepository(pool)
	sessionRepo := sessions.NewPostgresRepository(pool)

	// Availability engine with read-path cache and metrics
	availabilityMetrics := metrics.NewAvailabilityMetrics(prometheus.DefaultRegisterer)
	slotCache := availability.NewSlotCache(redisClient, cfg.SlotCacheTTL)
	engine := availability.NewEngine(catalogStore, apptRepo, sessionRepo, cfg.BookingWindowDays, logger,
		availability.WithCache(slotCache),
		availability.WithMetrics(availabilityMetrics),
		availability.WithClock(clinicNow),
	)

	// Services and handlers
	bookingService := appointments.NewService(apptRepo, catalogStore, engine, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(engine, logger),
		AppointmentsHandler: appointments.NewHandler(bookingService, apptRepo, logger),
		SessionsHandler:     sessions.NewHandler(sessionRepo, logger),
		CatalogHandler:      schedule.NewHandler(catalogStore, slotCache, logger),
		AdminToken:          cfg.AdminAPIToken,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
