// Package cache holds the two client-side views that must stay coherent
// under optimistic mutations: the selected-job working copy and the
// paginated job-list cache.
package cache

import (
	"sync"

	"bitbucket.org/rewixxcloud/jobs_client/models"
)

// SelectedJob is the single mutable cell for the job currently open for
// details. It is passed to every collaborator explicitly instead of living
// as ambient state, so writers are ordered through one lock and the cell is
// testable in isolation.
type SelectedJob struct {
	mu      sync.Mutex
	job     *models.Job
	version int64
}

func NewSelectedJob() *SelectedJob {
	return &SelectedJob{}
}

// Get returns a copy of the held job (nil when nothing is selected). The
// copy carries the cell version current at read time, for use with
// ReplaceIfCurrent.
func (s *SelectedJob) Get() *models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return nil
	}
	out := s.job.Clone()
	out.Version = s.version
	return &out
}

func (s *SelectedJob) Set(job models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := job.Clone()
	s.version++
	clone.Version = s.version
	s.job = &clone
}

func (s *SelectedJob) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = nil
}

// Patch applies fn to the held job if and only if its id matches. Returns
// false (a no-op) when nothing is selected or another job is open; the
// caller may still patch the list cache.
func (s *SelectedJob) Patch(jobId int, fn func(*models.Job)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil || s.job.ID != jobId {
		return false
	}
	fn(s.job)
	s.version++
	s.job.Version = s.version
	return true
}

// ReplaceIfCurrent swaps the held copy only when the cell has not moved
// since the caller read version via Get. A false return means a newer local
// patch landed while the replacement (typically a slow refetch) was in
// flight; the stale snapshot is discarded.
func (s *SelectedJob) ReplaceIfCurrent(version int64, job models.Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return false
	}
	clone := job.Clone()
	s.version++
	clone.Version = s.version
	s.job = &clone
	return true
}
