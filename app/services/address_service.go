package services

import (
	"context"
	"errors"
	"time"

	"github.com/address-extractor/app/models"
	"github.com/address-extractor/app/requests"
	"github.com/address-extractor/internal/engine"
	"go.uber.org/zap"
)

// ErrJobNotFound is returned for unknown batch job IDs.
var ErrJobNotFound = errors.New("job not found")

// ExtractionService fronts the extraction engine for the API: it adds
// the shared (Redis/Mongo) cache tier, batch job management and service
// statistics on top of Engine.Extract.
type ExtractionService struct {
	engine    *engine.Engine
	cache     ICacheService
	logger    *zap.Logger
	startTime time.Time

	jobs jobStore
}

// JobStatus is one batch job's progress record.
type JobStatus struct {
	JobID              string    `json:"job_id"`
	Status             string    `json:"status"`
	Progress           float64   `json:"progress"`
	Processed          int       `json:"processed"`
	Total              int       `json:"total"`
	EstimatedRemaining int       `json:"estimated_remaining"`
	Message            string    `json:"message"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewExtractionService wires the engine to the API cache tier. The cache
// may be nil; extraction then relies on the engine's own result cache.
func NewExtractionService(eng *engine.Engine, cache ICacheService, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		engine:    eng,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
		jobs:      newJobStore(),
	}
}

// Extract runs one address through the shared cache and the engine.
func (es *ExtractionService) Extract(ctx context.Context, rawAddress string, opts requests.ExtractOptions) (*models.ExtractionResult, error) {
	if rawAddress == "" {
		return nil, errors.New("address must not be empty")
	}

	key := engine.CacheKey(rawAddress)

	if opts.UseCache && es.cache != nil {
		cached, found, err := es.cache.Get(ctx, key)
		if err != nil {
			es.logger.Warn("shared cache lookup failed", zap.Error(err))
		} else if found {
			cached.Cached = true
			if !opts.IncludeMetadata {
				cached.Metadata = nil
			}
			return cached, nil
		}
	}

	result := es.engine.Extract(rawAddress)

	// Low-confidence results are served but not shared: they get
	// recomputed once the gazetteer improves.
	if opts.UseCache && es.cache != nil && !result.Cached &&
		result.Error == "" && result.OverallConfidence >= opts.MinConfidence {
		if err := es.cache.Set(ctx, key, result); err != nil {
			es.logger.Warn("shared cache write failed", zap.Error(err))
		}
	}

	if !opts.IncludeMetadata {
		result = result.Clone()
		result.Metadata = nil
	}
	return result, nil
}

// EstimateBatchProcessingTime estimates batch duration in seconds,
// assuming a few milliseconds per address.
func (es *ExtractionService) EstimateBatchProcessingTime(addressCount int) int {
	estimatedMs := addressCount * 5
	seconds := estimatedMs / 1000
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// ProcessBatchJob runs a batch in the calling goroutine, updating the
// job record as it goes. Start it with `go`.
func (es *ExtractionService) ProcessBatchJob(jobID string, addresses []string, opts requests.ExtractOptions) {
	es.jobs.create(jobID, len(addresses))

	results := make([]*models.ExtractionResult, len(addresses))
	for i, address := range addresses {
		result, err := es.Extract(context.Background(), address, opts)
		if err != nil {
			result = &models.ExtractionResult{
				OriginalAddress: address,
				Error:           err.Error(),
			}
		}
		results[i] = result
		es.jobs.progress(jobID, i+1)
	}

	es.jobs.complete(jobID, results)
	es.logger.Info("batch job completed",
		zap.String("job_id", jobID),
		zap.Int("total_addresses", len(addresses)))
}

// GetJobStatus returns a batch job's progress.
func (es *ExtractionService) GetJobStatus(jobID string) (*JobStatus, error) {
	return es.jobs.status(jobID)
}

// GetJobResults returns a finished batch job's results.
func (es *ExtractionService) GetJobResults(jobID string) ([]*models.ExtractionResult, error) {
	return es.jobs.resultsFor(jobID)
}

// GetJobResultsStream returns the job's results as a channel, for NDJSON
// streaming responses.
func (es *ExtractionService) GetJobResultsStream(jobID string) (<-chan *models.ExtractionResult, error) {
	results, err := es.GetJobResults(jobID)
	if err != nil {
		return nil, err
	}

	ch := make(chan *models.ExtractionResult, 100)
	go func() {
		defer close(ch)
		for _, result := range results {
			ch <- result
		}
	}()
	return ch, nil
}

// GetStartTime reports when the service came up.
func (es *ExtractionService) GetStartTime() time.Time {
	return es.startTime
}

// EngineStats exposes the engine counters.
func (es *ExtractionService) EngineStats() engine.Stats {
	return es.engine.Stats()
}

// ResultCacheSize reports the engine's in-process cache size.
func (es *ExtractionService) ResultCacheSize() int {
	return es.engine.CacheLen()
}

// GazetteerVersion identifies the gazetteer build in use.
func (es *ExtractionService) GazetteerVersion() string {
	return es.engine.GazetteerVersion()
}

// CacheStats reports the shared cache tier's counters, if one is wired.
func (es *ExtractionService) CacheStats(ctx context.Context) (*CacheStats, error) {
	if es.cache == nil {
		return &CacheStats{}, nil
	}
	return es.cache.GetStats(ctx)
}

// InvalidateCache clears both cache tiers after a gazetteer rebuild.
func (es *ExtractionService) InvalidateCache(ctx context.Context, gazetteerVersion string) error {
	es.engine.ClearCache()
	if es.cache == nil {
		return nil
	}
	return es.cache.InvalidateByGazetteerVersion(ctx, gazetteerVersion)
}
