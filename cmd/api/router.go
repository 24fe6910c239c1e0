package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"menucms-backend/internal/shared/middleware"
	"menucms-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	// Locally persisted assets are served straight from disk under the same
	// URL prefix their StoredAsset records carry.
	router.Static(c.Config.Storage.BaseURL, c.LocalStorage.Root())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupUploadRoutes(v1, c)
	}

	return router
}

func setupUploadRoutes(v1 *gin.RouterGroup, c *container.Container) {
	uploads := v1.Group("/uploads")
	{
		uploads.POST("/:category", c.UploadHandler.Upload)
		uploads.GET("", c.UploadHandler.ListAssets)
		uploads.GET("/:id", c.UploadHandler.GetAsset)
		uploads.DELETE("/:id", c.UploadHandler.DeleteAsset)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{
			"database": "ok",
			"redis":    "ok",
		}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			checks["redis"] = err.Error()
			// Redis being down degrades caching, it does not make the API
			// unhealthy.
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
