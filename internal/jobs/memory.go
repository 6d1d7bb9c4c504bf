package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store with the same transition rules as the
// SQLite store. Useful for tests and single-process deployments that do
// not need job history to survive restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]EncodeJob
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]EncodeJob)}
}

// Create records a new pending job.
func (s *MemoryStore) Create(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; ok {
		return fmt.Errorf("job %s: %w", id, ErrDuplicate)
	}
	now := time.Now().UTC()
	s.jobs[id] = EncodeJob{ID: id, State: StatePending, CreatedAt: now, UpdatedAt: now}
	return nil
}

// SetState advances the job, enforcing the monotonic transition order.
func (s *MemoryStore) SetState(ctx context.Context, id string, state State, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if !job.State.validNext(state) {
		return fmt.Errorf("job %s: %s -> %s: %w", id, job.State, state, ErrInvalidTransition)
	}
	job.State = state
	job.Message = message
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

// Get returns the job record by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (EncodeJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return EncodeJob{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, nil
}
