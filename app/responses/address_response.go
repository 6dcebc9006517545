package responses

import (
	"github.com/address-extractor/app/models"
)

// ExtractAddressResponse is the envelope for one extraction result.
type ExtractAddressResponse struct {
	Result           *models.ExtractionResult `json:"result"`
	GazetteerVersion string                   `json:"gazetteer_version"`
	ProcessingTimeMs float64                  `json:"processing_time_ms"`
	CacheHit         bool                     `json:"cache_hit"`
}

// BatchExtractResponse acknowledges an accepted batch job.
type BatchExtractResponse struct {
	JobID            string `json:"job_id"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	TotalAddresses   int    `json:"total_addresses"`
	Message          string `json:"message"`
}

// JobStatusResponse reports batch job progress.
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`
	Progress           float64 `json:"progress"`
	Processed          int     `json:"processed"`
	Total              int     `json:"total"`
	EstimatedRemaining int     `json:"estimated_remaining"`
	Message            string  `json:"message"`
}

// Job status constants.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// ValidateLocationResponse reports geographic consistency checks.
type ValidateLocationResponse struct {
	Valid       bool              `json:"valid"`
	Conflicts   []string          `json:"conflicts"`
	Suggestions map[string]string `json:"suggestions,omitempty"`
}

// PredictPostalResponse is the postal prediction envelope.
type PredictPostalResponse struct {
	Prediction *models.PostalPrediction `json:"prediction"`
	Found      bool                     `json:"found"`
}

// HierarchyResponse is the postal-to-hierarchy lookup envelope.
type HierarchyResponse struct {
	Hierarchy *models.LocationHierarchy `json:"hierarchy"`
	Found     bool                      `json:"found"`
}

// StatsResponse reports engine and cache counters.
type StatsResponse struct {
	TotalProcessed   uint64  `json:"total_processed"`
	TotalTimeMs      float64 `json:"total_time_ms"`
	AvgTimeMs        float64 `json:"avg_time_ms"`
	Errors           uint64  `json:"errors"`
	CacheHits        uint64  `json:"cache_hits"`
	CacheMisses      uint64  `json:"cache_misses"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	ResultCacheSize  int     `json:"result_cache_size"`
	GazetteerVersion string  `json:"gazetteer_version"`
	UptimeSeconds    int64   `json:"uptime_seconds"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SuccessResponse is the uniform success envelope for admin actions.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse reports component liveness.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
