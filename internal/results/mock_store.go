package results

import (
	"context"
	"sort"
	"sync"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockStore is an in-memory Store for unit tests.
type MockStore struct {
	mu   sync.Mutex
	runs map[string]map[string]*domain.Item // run id -> barcode -> item

	UpsertErr error
}

func NewMockStore() *MockStore {
	return &MockStore{runs: make(map[string]map[string]*domain.Item)}
}

func (m *MockStore) Upsert(_ context.Context, runID string, item *domain.Item) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs[runID] == nil {
		m.runs[runID] = make(map[string]*domain.Item)
	}
	clone := *item
	m.runs[runID][item.Barcode] = &clone
	return nil
}

func (m *MockStore) List(_ context.Context, runID string) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*domain.Item
	for _, item := range m.runs[runID] {
		clone := *item
		items = append(items, &clone)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Barcode < items[j].Barcode })
	return items, nil
}

func (m *MockStore) DeleteRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, runID)
	return nil
}

// Count reports the number of results recorded for a run.
func (m *MockStore) Count(runID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs[runID])
}

var _ Store = (*MockStore)(nil)
