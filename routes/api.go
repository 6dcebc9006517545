package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/address-extractor/app/config"
	"github.com/address-extractor/app/controllers"
	"github.com/address-extractor/helpers/utils"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes registers the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/extract", addressController.Extract)
			addresses.POST("/jobs", addressController.BatchExtract)
			addresses.GET("/jobs/:jobID/status", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
		}

		geo := v1.Group("/geo")
		{
			geo.POST("/validate", addressController.ValidateLocation)
			geo.GET("/postal/predict", addressController.PredictPostal)
			geo.GET("/postal/:postalCode/hierarchy", addressController.GetHierarchy)
			geo.GET("/places/search", adminController.SearchPlaces)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", adminController.GetStats)
			admin.GET("/cache/stats", adminController.GetCacheStats)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.POST("/indexes/build", adminController.BuildSearchIndexes)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes registers the unversioned probe endpoints.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupAllRoutes wires middleware and every route group.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(requestID())
	router.Use(requestTimeout(config.RequestTimeout()))
}

// requestID tags every request, honoring an ID the caller already set.
// Error responses echo it back.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateShortID()
		}
		c.Set(controllers.RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// requestTimeout bounds each request's context.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
