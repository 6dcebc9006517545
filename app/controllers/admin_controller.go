package controllers

import (
	"net/http"
	"time"

	"github.com/address-extractor/app/requests"
	"github.com/address-extractor/app/responses"
	"github.com/address-extractor/app/services"
	"github.com/address-extractor/internal/geo"
	"github.com/address-extractor/internal/search"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminController handles the operational endpoints: stats, cache
// invalidation and the place search index.
type AdminController struct {
	extractionService *services.ExtractionService
	cacheService      services.ICacheService
	searcher          *search.PlaceSearcher
	placeStore        *geo.PlaceStore
	logger            *zap.Logger
}

// NewAdminController wires the admin endpoints. cacheService and
// searcher may be nil when the corresponding backend is not configured.
func NewAdminController(extractionService *services.ExtractionService, cacheService services.ICacheService, searcher *search.PlaceSearcher, placeStore *geo.PlaceStore, logger *zap.Logger) *AdminController {
	return &AdminController{
		extractionService: extractionService,
		cacheService:      cacheService,
		searcher:          searcher,
		placeStore:        placeStore,
		logger:            logger,
	}
}

// GetStats reports engine, cache and uptime counters.
func (ac *AdminController) GetStats(c *gin.Context) {
	engineStats := ac.extractionService.EngineStats()

	avgTimeMs := 0.0
	if engineStats.TotalProcessed > 0 {
		avgTimeMs = engineStats.TotalTimeMs / float64(engineStats.TotalProcessed)
	}

	hitRate := 0.0
	if total := engineStats.CacheHits + engineStats.CacheMisses; total > 0 {
		hitRate = float64(engineStats.CacheHits) / float64(total)
	}

	c.JSON(http.StatusOK, responses.StatsResponse{
		TotalProcessed:   engineStats.TotalProcessed,
		TotalTimeMs:      engineStats.TotalTimeMs,
		AvgTimeMs:        avgTimeMs,
		Errors:           engineStats.Errors,
		CacheHits:        engineStats.CacheHits,
		CacheMisses:      engineStats.CacheMisses,
		CacheHitRate:     hitRate,
		ResultCacheSize:  ac.extractionService.ResultCacheSize(),
		GazetteerVersion: ac.extractionService.GazetteerVersion(),
		UptimeSeconds:    int64(time.Since(ac.extractionService.GetStartTime()).Seconds()),
	})
}

// GetCacheStats reports the shared cache tier's counters.
func (ac *AdminController) GetCacheStats(c *gin.Context) {
	stats, err := ac.extractionService.CacheStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("cache stats failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "STATS_ERROR", "cache stats failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "cache stats retrieved",
		Data:      stats,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// InvalidateCache clears cached results from older gazetteer builds.
// Without an explicit gazetteer_version, the current build is kept.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	gazetteerVersion := c.Query("gazetteer_version")
	if gazetteerVersion == "" {
		gazetteerVersion = ac.extractionService.GazetteerVersion()
	}

	startTime := time.Now()
	if err := ac.extractionService.InvalidateCache(c.Request.Context(), gazetteerVersion); err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "INVALIDATE_ERROR", "cache invalidation failed: "+err.Error())
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("cache invalidated",
		zap.String("gazetteer_version", gazetteerVersion),
		zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "cache invalidated",
		Data: map[string]interface{}{
			"gazetteer_version":  gazetteerVersion,
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// SearchPlaces queries the Meilisearch place index.
func (ac *AdminController) SearchPlaces(c *gin.Context) {
	if ac.searcher == nil {
		apiError(c, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "place search is not configured")
		return
	}

	var req requests.SearchPlacesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	docs, err := ac.searcher.Search(req.Query, req.District, req.Type, req.Limit)
	if err != nil {
		ac.logger.Error("place search failed", zap.Error(err), zap.String("query", req.Query))
		apiError(c, http.StatusInternalServerError, "SEARCH_ERROR", "place search failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "search complete",
		Data:      docs,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// BuildSearchIndexes reconfigures the place index and reseeds it from
// the geographic hierarchy.
func (ac *AdminController) BuildSearchIndexes(c *gin.Context) {
	if ac.searcher == nil {
		apiError(c, http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "place search is not configured")
		return
	}

	startTime := time.Now()

	if err := ac.searcher.BuildIndexes(); err != nil {
		ac.logger.Error("index configuration failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "BUILD_ERROR", "index configuration failed: "+err.Error())
		return
	}
	if err := ac.searcher.SeedPlaces(ac.placeStore); err != nil {
		ac.logger.Error("place seeding failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "SEED_ERROR", "place seeding failed: "+err.Error())
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("search indexes rebuilt", zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "search indexes rebuilt",
		Data: map[string]interface{}{
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
