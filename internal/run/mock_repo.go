package run

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockRepository is a hand-written, in-memory implementation of Repository
// used in unit tests.
type MockRepository struct {
	mu   sync.Mutex
	runs map[string]*domain.Run

	CreateErr  error
	GetErr     error
	AdvanceErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{runs: make(map[string]*domain.Run)}
}

func (m *MockRepository) Create(_ context.Context, r *domain.Run) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *r
	m.runs[r.ID] = &clone
	return nil
}

func (m *MockRepository) Get(_ context.Context, id string) (*domain.Run, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (m *MockRepository) List(_ context.Context) ([]*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []*domain.Run
	for _, r := range m.runs {
		clone := *r
		runs = append(runs, &clone)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	return runs, nil
}

func (m *MockRepository) Advance(_ context.Context, id string, cursor int) error {
	if m.AdvanceErr != nil {
		return m.AdvanceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		r.Status = domain.RunInProgress
		r.Cursor = cursor
		r.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRepository) Complete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		r.Status = domain.RunCompleted
		r.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRepository) Fail(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		r.Status = domain.RunFailed
		r.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MockRepository) FindStalled(_ context.Context, cutoff time.Time) ([]*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []*domain.Run
	for _, r := range m.runs {
		if !r.Status.Terminal() && r.UpdatedAt.Before(cutoff) {
			clone := *r
			runs = append(runs, &clone)
		}
	}
	return runs, nil
}

var _ Repository = (*MockRepository)(nil)
