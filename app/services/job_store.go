package services

import (
	"sync"
	"time"

	"github.com/address-extractor/app/models"
	"github.com/address-extractor/app/responses"
)

// jobStore tracks batch jobs and their results in memory. Jobs live for
// the process lifetime; batch callers are expected to collect results
// promptly.
type jobStore struct {
	mu      sync.RWMutex
	jobs    map[string]*JobStatus
	results map[string][]*models.ExtractionResult
}

func newJobStore() jobStore {
	return jobStore{
		jobs:    make(map[string]*JobStatus),
		results: make(map[string][]*models.ExtractionResult),
	}
}

func (s *jobStore) create(jobID string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Status:    responses.JobStatusRunning,
		Total:     total,
		Message:   "processing",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *jobStore) progress(jobID string, processed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Processed = processed
	job.Progress = float64(processed) / float64(job.Total)
	job.UpdatedAt = time.Now()
}

func (s *jobStore) complete(jobID string, results []*models.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[jobID] = results
	if job, ok := s.jobs[jobID]; ok {
		job.Status = responses.JobStatusDone
		job.Progress = 1.0
		job.Message = "completed"
		job.UpdatedAt = time.Now()
	}
}

func (s *jobStore) status(jobID string) (*JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *jobStore) resultsFor(jobID string) ([]*models.ExtractionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results, ok := s.results[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return results, nil
}
