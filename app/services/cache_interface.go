package services

import (
	"context"
	"time"

	"github.com/address-extractor/app/models"
)

// CacheStats summarizes a cache backend's effectiveness.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService is the API-layer result cache. It sits above the engine's
// small in-process FIFO cache and survives restarts when backed by Redis
// or Mongo.
type ICacheService interface {
	// Get returns the cached extraction result for a key.
	Get(ctx context.Context, key string) (*models.ExtractionResult, bool, error)

	// Set stores an extraction result.
	Set(ctx context.Context, key string, result *models.ExtractionResult) error

	// Delete removes one key.
	Delete(ctx context.Context, key string) error

	// Clear removes every cached result.
	Clear(ctx context.Context) error

	// InvalidateByGazetteerVersion drops entries computed against an
	// older gazetteer build.
	InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error

	// GetStats reports hit/miss counters and item count.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists checks for a key without fetching it.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL returns the remaining lifetime of a key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases backend connections.
	Close() error
}
