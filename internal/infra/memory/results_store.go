package memory

import (
	"context"
	"sync"

	"timed-exam-service/internal/domain"
)

// ResultsStore keeps exam results in process memory, in append order.
type ResultsStore struct {
	mu      sync.RWMutex
	results []domain.ExamResult
}

func NewResultsStore() *ResultsStore {
	return &ResultsStore{}
}

func (s *ResultsStore) Append(_ context.Context, result domain.ExamResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *ResultsStore) ListAll(_ context.Context) ([]domain.ExamResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ExamResult(nil), s.results...), nil
}

func (s *ResultsStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	return nil
}

// AttemptRegistry records official attempts in process memory.
type AttemptRegistry struct {
	mu    sync.RWMutex
	taken map[string]struct{}
}

func NewAttemptRegistry() *AttemptRegistry {
	return &AttemptRegistry{taken: make(map[string]struct{})}
}

func (r *AttemptRegistry) HasTaken(_ context.Context, collegiateNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.taken[collegiateNumber]
	return ok, nil
}

func (r *AttemptRegistry) MarkTaken(_ context.Context, collegiateNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taken[collegiateNumber] = struct{}{}
	return nil
}

func (r *AttemptRegistry) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taken = make(map[string]struct{})
	return nil
}
