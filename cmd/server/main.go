// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/safetystock/internal/api"
	"github.com/andresuchdata/safetystock/internal/cache"
	"github.com/andresuchdata/safetystock/internal/config"
	"github.com/andresuchdata/safetystock/internal/metrics"
	"github.com/andresuchdata/safetystock/internal/safetystock"
	"github.com/andresuchdata/safetystock/internal/service"
	"github.com/andresuchdata/safetystock/internal/simulator"
	"github.com/andresuchdata/safetystock/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.File)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	model, err := safetystock.NewModel(cfg.Model.Floors())
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid model configuration")
	}
	floors := model.Floors()
	logger.Log.Info().
		Float64("min_service_level", floors.MinServiceLevel).
		Float64("max_service_level", floors.MaxServiceLevel).
		Float64("min_demand_rate", floors.MinDemandRate).
		Float64("min_lead_time", floors.MinLeadTime).
		Msg("Safety stock model ready")

	client, err := simulator.NewClient(cfg.Simulator)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid simulator configuration")
	}

	simCache, err := cache.NewSimulationCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Simulation cache unavailable, continuing without it")
		simCache = cache.NewNoopSimulationCache()
	}

	var m *metrics.Metrics
	services := &api.Services{}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		services.MetricsHandler = m.Handler()
	}

	// Initialize services
	services.WhatIfService = service.NewWhatIfService(model, simulator.NewCached(client, simCache), m).
		WithSweepLimits(cfg.Sweep.Workers, cfg.Sweep.MaxPoints)

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("simulator", cfg.Simulator.BaseURL).
			Bool("cache", cfg.Cache.Enabled).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
