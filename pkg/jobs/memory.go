package jobs

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process job store for single-instance serving.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore creates an empty in-memory job store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if job.IsExpired() {
		s.mu.Lock()
		delete(s.jobs, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job.Clone()
	return nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	all := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if job.IsExpired() {
			continue
		}
		all = append(all, job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, id)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if job.IsExpired() {
			delete(s.jobs, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
