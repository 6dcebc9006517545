package services

import (
	"context"
	"sync"
	"time"

	"github.com/address-extractor/app/models"
)

// CacheService is the in-memory ICacheService fallback used when neither
// Redis nor Mongo is reachable. TTL-evicted, unbounded otherwise.
type CacheService struct {
	cache      map[string]*models.ExtractionResult
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration

	hits   int64
	misses int64
}

func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		cache:      make(map[string]*models.ExtractionResult),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

func (cs *CacheService) Get(ctx context.Context, key string) (*models.ExtractionResult, bool, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	result, exists := cs.cache[key]
	if !exists || cs.isExpired(key) {
		if exists {
			delete(cs.cache, key)
			delete(cs.timestamps, key)
		}
		cs.misses++
		return nil, false, nil
	}

	cs.hits++
	return result.Clone(), true, nil
}

func (cs *CacheService) Set(ctx context.Context, key string, result *models.ExtractionResult) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.timestamps[key] = time.Now()
	cs.cache[key] = result.Clone()
	return nil
}

func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
	delete(cs.timestamps, key)
	return nil
}

func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string]*models.ExtractionResult)
	cs.timestamps = make(map[string]time.Time)
	return nil
}

// InvalidateByGazetteerVersion drops everything: the in-memory backend
// does not track the gazetteer version per entry.
func (cs *CacheService) InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error {
	return cs.Clear(ctx)
}

func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	total := cs.hits + cs.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cs.hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  cs.hits,
		TotalMiss:  cs.misses,
		TotalItems: int64(len(cs.cache)),
	}, nil
}

func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, exists := cs.cache[key]
	return exists && !cs.isExpired(key), nil
}

func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	timestamp, exists := cs.timestamps[key]
	if !exists {
		return 0, nil
	}
	remaining := cs.ttl - time.Since(timestamp)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// CleanupExpired removes expired entries.
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if cs.isExpired(key) {
			delete(cs.cache, key)
			delete(cs.timestamps, key)
		}
	}
}

// StartCleanupWorker periodically sweeps expired entries.
func (cs *CacheService) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			cs.CleanupExpired()
		}
	}()
}

func (cs *CacheService) Close() error { return nil }

// isExpired assumes the caller holds at least a read lock.
func (cs *CacheService) isExpired(key string) bool {
	timestamp, exists := cs.timestamps[key]
	if !exists {
		return true
	}
	return time.Since(timestamp) > cs.ttl
}
