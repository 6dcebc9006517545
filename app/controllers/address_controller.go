package controllers

import (
	"compress/gzip"
	"encoding/json"
	"net/http"
	"time"

	"github.com/address-extractor/app/requests"
	"github.com/address-extractor/app/responses"
	"github.com/address-extractor/app/services"
	"github.com/address-extractor/helpers/utils"
	"github.com/address-extractor/internal/geo"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressController handles the extraction and geography endpoints.
type AddressController struct {
	extractionService *services.ExtractionService
	placeStore        *geo.PlaceStore
	logger            *zap.Logger
}

func NewAddressController(extractionService *services.ExtractionService, placeStore *geo.PlaceStore, logger *zap.Logger) *AddressController {
	return &AddressController{
		extractionService: extractionService,
		placeStore:        placeStore,
		logger:            logger,
	}
}

// RequestIDKey is the gin context key the request-ID middleware sets.
const RequestIDKey = "request_id"

func apiError(c *gin.Context, status int, code, message string) {
	c.JSON(status, responses.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Extract runs a single address through the pipeline.
func (ac *AddressController) Extract(c *gin.Context) {
	var req requests.ExtractAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	opts := req.Options
	if opts == (requests.ExtractOptions{}) {
		opts = requests.DefaultExtractOptions()
	}

	startTime := time.Now()
	result, err := ac.extractionService.Extract(c.Request.Context(), req.Address, opts)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "EXTRACT_ERROR", "extraction failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.ExtractAddressResponse{
		Result:           result,
		GazetteerVersion: ac.extractionService.GazetteerVersion(),
		ProcessingTimeMs: float64(time.Since(startTime).Microseconds()) / 1000.0,
		CacheHit:         result.Cached,
	})
}

// BatchExtract accepts a batch and processes it asynchronously. Results
// are fetched by job ID.
func (ac *AddressController) BatchExtract(c *gin.Context) {
	var req requests.BatchExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	opts := req.Options
	if opts == (requests.ExtractOptions{}) {
		opts = requests.DefaultExtractOptions()
	}

	jobID := utils.GenerateUUID()
	estimatedTime := ac.extractionService.EstimateBatchProcessingTime(len(req.Addresses))

	go ac.extractionService.ProcessBatchJob(jobID, req.Addresses, opts)

	c.JSON(http.StatusAccepted, responses.BatchExtractResponse{
		JobID:            jobID,
		EstimatedSeconds: estimatedTime,
		TotalAddresses:   len(req.Addresses),
		Message:          "job accepted and processing",
	})
}

// GetJobStatus reports a batch job's progress.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	if jobID == "" {
		apiError(c, http.StatusBadRequest, "MISSING_JOB_ID", "job ID is required")
		return
	}

	status, err := ac.extractionService.GetJobStatus(jobID)
	if err != nil {
		apiError(c, http.StatusNotFound, "JOB_NOT_FOUND", "job not found: "+jobID)
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              jobID,
		Status:             status.Status,
		Progress:           status.Progress,
		Processed:          status.Processed,
		Total:              status.Total,
		EstimatedRemaining: status.EstimatedRemaining,
		Message:            status.Message,
	})
}

// GetJobResults returns a finished job's results, either as a JSON
// envelope or as NDJSON (optionally gzipped) with format=ndjson.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	if jobID == "" {
		apiError(c, http.StatusBadRequest, "MISSING_JOB_ID", "job ID is required")
		return
	}

	if c.Query("format") == "ndjson" {
		ac.streamNDJSONResults(c, jobID, c.Query("gzip") == "1")
		return
	}

	results, err := ac.extractionService.GetJobResults(jobID)
	if err != nil {
		apiError(c, http.StatusNotFound, "JOB_NOT_FOUND", "job not found: "+jobID)
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "results retrieved",
		Data:      results,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ValidateLocation checks a set of components for geographic consistency
// without running extraction.
func (ac *AddressController) ValidateLocation(c *gin.Context) {
	var req requests.ValidateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	validation := ac.placeStore.ValidateLocation(req.Area, req.District, req.Division, req.PostalCode)

	c.JSON(http.StatusOK, responses.ValidateLocationResponse{
		Valid:       validation.Valid,
		Conflicts:   validation.Conflicts,
		Suggestions: validation.Suggestions,
	})
}

// PredictPostal predicts a postal code from area/district/division.
func (ac *AddressController) PredictPostal(c *gin.Context) {
	area := c.Query("area")
	district := c.Query("district")
	division := c.Query("division")
	if area == "" && district == "" {
		apiError(c, http.StatusBadRequest, "MISSING_LOCATION", "area or district is required")
		return
	}

	prediction := ac.placeStore.PredictPostalCode(area, district, division)

	c.JSON(http.StatusOK, responses.PredictPostalResponse{
		Prediction: prediction,
		Found:      prediction != nil,
	})
}

// GetHierarchy resolves a postal code to its full geographic ancestry.
func (ac *AddressController) GetHierarchy(c *gin.Context) {
	postalCode := c.Param("postalCode")
	if postalCode == "" {
		apiError(c, http.StatusBadRequest, "MISSING_POSTAL_CODE", "postal code is required")
		return
	}

	hierarchy := ac.placeStore.FullHierarchy(postalCode)
	if hierarchy == nil {
		c.JSON(http.StatusNotFound, responses.HierarchyResponse{Found: false})
		return
	}

	c.JSON(http.StatusOK, responses.HierarchyResponse{
		Hierarchy: hierarchy,
		Found:     true,
	})
}

// HealthCheck reports service liveness.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.extractionService.GetStartTime())

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"extraction_engine": "healthy",
			"gazetteer":         ac.extractionService.GazetteerVersion(),
		},
	})
}

// streamNDJSONResults streams job results one JSON document per line,
// optionally gzip-compressed.
func (ac *AddressController) streamNDJSONResults(c *gin.Context, jobID string, gzipEnabled bool) {
	resultChannel, err := ac.extractionService.GetJobResultsStream(jobID)
	if err != nil {
		apiError(c, http.StatusNotFound, "JOB_NOT_FOUND", "job not found: "+jobID)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
	}

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}

	encoder := json.NewEncoder(writer)
	for result := range resultChannel {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("ndjson encode failed", zap.Error(err), zap.String("job_id", jobID))
			break
		}
		if flusher, ok := writer.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
