package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/slot_planner/internal/app"
	"github.com/Freeeeeet/slot_planner/internal/calendar"
	"github.com/Freeeeeet/slot_planner/internal/config"
	"github.com/Freeeeeet/slot_planner/internal/controller/api"
	"github.com/Freeeeeet/slot_planner/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	health := app.NewHealthMonitor(storage.Backend, storage.Pingers(), cfg.HealthInterval, logger)
	health.Start(ctx)
	defer health.Stop()

	srv := newServer(cfg, storage, calendar.SystemClock{}, health, logger)

	logger.Info("Starting slot planner",
		zap.String("environment", cfg.Environment),
		zap.String("addr", srv.Addr),
		zap.String("backend", storage.Backend),
		zap.String("mode", string(cfg.StorageMode)),
		zap.String("policy", string(cfg.ReservationPolicy)))

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server stopped gracefully")
}

// newServer собирает сервисы и роутер поверх открытого хранилища
func newServer(cfg *config.Config, storage *app.Storage, clock calendar.Clock, health api.HealthReporter, logger *zap.Logger) *http.Server {
	boards := service.NewBoardService(storage.Reservations, storage.FixedSlots, clock, cfg.BoardCacheTTL, logger)
	reservations := service.NewReservationService(storage.Reservations, service.ReservationOptions{
		Mode:               cfg.StorageMode,
		Policy:             cfg.ReservationPolicy,
		LegacyMonthDefault: cfg.LegacyMonthDefault,
		Clock:              clock,
		Invalidator:        boards,
	}, logger)
	fixedSlots := service.NewFixedSlotService(storage.FixedSlots, boards, logger)

	handler := api.NewHandler(reservations, fixedSlots, boards, health, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		StaticDir:       cfg.StaticDir,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
