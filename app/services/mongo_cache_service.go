package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/address-extractor/app/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoCacheService is the persistent ICacheService: an in-memory LRU in
// front of a MongoDB collection, so verified extractions survive restarts.
type MongoCacheService struct {
	db               *mongo.Database
	collection       *mongo.Collection
	l1Cache          *lru.Cache[string, *models.ExtractionResult]
	gazetteerVersion string
	logger           *zap.Logger

	totalHits int64
	totalMiss int64
	l1Hits    int64
	l1Miss    int64
	mongoHits int64
	mongoMiss int64
}

func NewMongoCacheService(db *mongo.Database, l1Size int, gazetteerVersion string, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.ExtractionResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("creating L1 cache: %w", err)
	}

	collection := db.Collection("extraction_cache")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "raw_fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{bson.E{Key: "gazetteer_version", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "created_at", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "manually_verified", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("could not create extraction_cache indexes", zap.Error(err))
	}

	return &MongoCacheService{
		db:               db,
		collection:       collection,
		l1Cache:          l1Cache,
		gazetteerVersion: gazetteerVersion,
		logger:           logger,
	}, nil
}

// Get checks the L1 LRU first, then MongoDB. A Mongo hit is promoted
// into L1 and its access stats bumped asynchronously.
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ExtractionResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		atomic.AddInt64(&mcs.l1Hits, 1)
		atomic.AddInt64(&mcs.totalHits, 1)
		return result, true, nil
	}
	atomic.AddInt64(&mcs.l1Miss, 1)

	fingerprint := mcs.generateFingerprint(key)

	var entry models.ExtractionCache
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": fingerprint}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			atomic.AddInt64(&mcs.mongoMiss, 1)
			atomic.AddInt64(&mcs.totalMiss, 1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	// Stale entries from an older gazetteer build are not served.
	if !entry.IsValidGazetteerVersion(mcs.gazetteerVersion) {
		atomic.AddInt64(&mcs.mongoMiss, 1)
		atomic.AddInt64(&mcs.totalMiss, 1)
		return nil, false, nil
	}

	atomic.AddInt64(&mcs.mongoHits, 1)
	atomic.AddInt64(&mcs.totalHits, 1)

	go mcs.updateAccessStats(context.Background(), entry.ID)

	mcs.l1Cache.Add(key, &entry.Result)
	return &entry.Result, true, nil
}

// Set writes through to both tiers.
func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.ExtractionResult) error {
	mcs.l1Cache.Add(key, result)

	fingerprint := mcs.generateFingerprint(key)
	entry := models.ExtractionCache{
		RawFingerprint:    fingerprint,
		RawAddress:        result.OriginalAddress,
		NormalizedAddress: result.NormalizedAddress,
		Result:            *result,
		Confidence:        result.OverallConfidence,
		GazetteerVersion:  mcs.gazetteerVersion,
		ManuallyVerified:  false,
		CreatedAt:         time.Now(),
		LastAccessed:      time.Now(),
		AccessCount:       1,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"raw_fingerprint": fingerprint}, entry, opts); err != nil {
		mcs.logger.Error("cache write failed", zap.Error(err), zap.String("fingerprint", fingerprint))
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	fingerprint := mcs.generateFingerprint(key)
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"raw_fingerprint": fingerprint}); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	atomic.StoreInt64(&mcs.totalHits, 0)
	atomic.StoreInt64(&mcs.totalMiss, 0)
	atomic.StoreInt64(&mcs.l1Hits, 0)
	atomic.StoreInt64(&mcs.l1Miss, 0)
	atomic.StoreInt64(&mcs.mongoHits, 0)
	atomic.StoreInt64(&mcs.mongoMiss, 0)
	return nil
}

// InvalidateByGazetteerVersion drops every entry not built against the
// given version, and starts serving new writes under it.
func (mcs *MongoCacheService) InvalidateByGazetteerVersion(ctx context.Context, gazetteerVersion string) error {
	mcs.l1Cache.Purge()
	mcs.gazetteerVersion = gazetteerVersion

	result, err := mcs.collection.DeleteMany(ctx, bson.M{"gazetteer_version": bson.M{"$ne": gazetteerVersion}})
	if err != nil {
		return fmt.Errorf("invalidating cache by gazetteer version: %w", err)
	}

	mcs.logger.Info("cache invalidated",
		zap.String("gazetteer_version", gazetteerVersion),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("counting cache documents: %w", err)
	}

	hits := atomic.LoadInt64(&mcs.totalHits)
	misses := atomic.LoadInt64(&mcs.totalMiss)
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: mongoCount,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	fingerprint := mcs.generateFingerprint(key)
	count, err := mcs.collection.CountDocuments(ctx, bson.M{"raw_fingerprint": fingerprint})
	if err != nil {
		return false, fmt.Errorf("checking cache entry: %w", err)
	}
	return count > 0, nil
}

// GetTTL always reports zero: the persistent tier has no expiry.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close releases nothing: the Mongo client belongs to the caller.
func (mcs *MongoCacheService) Close() error { return nil }

func (mcs *MongoCacheService) generateFingerprint(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x", hash)
}

func (mcs *MongoCacheService) updateAccessStats(ctx context.Context, id primitive.ObjectID) {
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		mcs.logger.Warn("access stats update failed", zap.Error(err))
	}
}

// GetL1Stats reports the per-tier counters.
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    atomic.LoadInt64(&mcs.l1Hits),
		"l1_miss":    atomic.LoadInt64(&mcs.l1Miss),
		"mongo_hits": atomic.LoadInt64(&mcs.mongoHits),
		"mongo_miss": atomic.LoadInt64(&mcs.mongoMiss),
		"total_hits": atomic.LoadInt64(&mcs.totalHits),
		"total_miss": atomic.LoadInt64(&mcs.totalMiss),
	}
}

// WarmUp preloads the most frequently accessed entries into L1.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{"gazetteer_version": mcs.gazetteerVersion}, opts)
	if err != nil {
		return fmt.Errorf("warming up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.ExtractionCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("skipping undecodable cache entry", zap.Error(err))
			continue
		}
		mcs.l1Cache.Add(entry.RawAddress, &entry.Result)
		count++
	}

	mcs.logger.Info("cache warm up complete",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return nil
}
