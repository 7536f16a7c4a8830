// Package cache holds the (job kind, normalized requirement) pair between
// the negotiation and delivery phases of one job.
package cache

import (
	"sync"

	"github.com/quantrelay/trade-advisor/internal/advisor/domain"
)

// Store is an in-memory job cache keyed by job id. Entries persist for the
// process lifetime; there is no eviction policy.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]domain.CachedJob
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{jobs: map[string]domain.CachedJob{}}
}

// Set stores the cached job for a job id, overwriting any prior entry.
func (s *Store) Set(jobID string, job domain.CachedJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.JobID = jobID
	s.jobs[jobID] = job
}

// Get returns the cached job for an id. A miss returns the empty default
// (unknown kind, empty requirement) and found=false; it never errors.
func (s *Store) Get(jobID string) (domain.CachedJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if job, ok := s.jobs[jobID]; ok {
		return job, true
	}
	return domain.CachedJob{
		JobID:       jobID,
		Kind:        domain.KindUnknown,
		Requirement: domain.Requirement{},
	}, false
}

// Snapshot copies the current entries for inspection.
func (s *Store) Snapshot() []domain.CachedJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CachedJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out
}

// Len reports the number of cached jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
