// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/safetystock/internal/api/handlers"
	"github.com/andresuchdata/safetystock/internal/api/middleware"
	"github.com/andresuchdata/safetystock/internal/service"
)

type Services struct {
	WhatIfService *service.WhatIfService
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(services.MetricsHandler))
	}

	apiGroup := router.Group("/api/v1")

	if services.WhatIfService != nil {
		whatIfHandler := handlers.NewWhatIfHandler(services.WhatIfService)
		whatIfGroup := apiGroup.Group("/whatif")
		{
			whatIfGroup.POST("/quantile", whatIfHandler.Quantile)
			whatIfGroup.POST("/evaluate", whatIfHandler.Evaluate)
			whatIfGroup.POST("/reconcile", whatIfHandler.Reconcile)
			whatIfGroup.POST("/sweep", whatIfHandler.Sweep)
			whatIfGroup.DELETE("/cache", whatIfHandler.ClearCache)

			sessionGroup := whatIfGroup.Group("/sessions")
			{
				sessionGroup.POST("", whatIfHandler.CreateSession)
				sessionGroup.GET("/:id", whatIfHandler.GetSession)
				sessionGroup.PUT("/:id/inputs", whatIfHandler.UpdateInputs)
				sessionGroup.POST("/:id/simulate", whatIfHandler.Simulate)
				sessionGroup.DELETE("/:id", whatIfHandler.DeleteSession)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
