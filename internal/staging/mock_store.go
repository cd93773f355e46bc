package staging

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockStore is an in-memory Store for unit tests.
type MockStore struct {
	mu    sync.Mutex
	items map[string]map[string]time.Time // check name -> barcode -> staged at

	UpsertErr error
	ListErr   error
	DeleteErr error
}

func NewMockStore() *MockStore {
	return &MockStore{items: make(map[string]map[string]time.Time)}
}

func (m *MockStore) Upsert(_ context.Context, checkName, barcode string) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[checkName] == nil {
		m.items[checkName] = make(map[string]time.Time)
	}
	m.items[checkName][barcode] = time.Now().UTC()
	return nil
}

func (m *MockStore) List(_ context.Context, checkName string) ([]domain.StagedItem, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []domain.StagedItem
	for barcode, at := range m.items[checkName] {
		items = append(items, domain.StagedItem{CheckName: checkName, Barcode: barcode, StagedAt: at})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Barcode < items[j].Barcode })
	return items, nil
}

func (m *MockStore) DeleteBatch(_ context.Context, checkName string, barcodes []string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range barcodes {
		delete(m.items[checkName], b)
	}
	return nil
}

// Count reports the number of staged barcodes for a check.
func (m *MockStore) Count(checkName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items[checkName])
}

var _ Store = (*MockStore)(nil)
