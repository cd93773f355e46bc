package repository

import (
	"context"
	"sync"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockConfigRepository is a hand-written, in-memory implementation of
// ConfigRepository used in unit tests.
type MockConfigRepository struct {
	mu          sync.RWMutex
	checks      map[string]*domain.CheckConfig
	subscribers map[int64][]string

	GetCheckErr error
}

func NewMockConfigRepository() *MockConfigRepository {
	return &MockConfigRepository{
		checks:      make(map[string]*domain.CheckConfig),
		subscribers: make(map[int64][]string),
	}
}

// AddCheck seeds a check configuration.
func (m *MockConfigRepository) AddCheck(c *domain.CheckConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *c
	m.checks[c.Name] = &clone
}

// AddSubscribers seeds recipient emails for a check.
func (m *MockConfigRepository) AddSubscribers(checkID int64, emails ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[checkID] = append(m.subscribers[checkID], emails...)
}

func (m *MockConfigRepository) GetCheckByName(_ context.Context, name string) (*domain.CheckConfig, error) {
	if m.GetCheckErr != nil {
		return nil, m.GetCheckErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.checks[name]
	if !ok {
		return nil, domain.ErrCheckNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockConfigRepository) ListChecks(_ context.Context) ([]*domain.CheckConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var checks []*domain.CheckConfig
	for _, c := range m.checks {
		clone := *c
		checks = append(checks, &clone)
	}
	return checks, nil
}

func (m *MockConfigRepository) Subscribers(_ context.Context, checkID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.subscribers[checkID]...), nil
}

var _ ConfigRepository = (*MockConfigRepository)(nil)
