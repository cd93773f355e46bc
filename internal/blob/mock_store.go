package blob

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockStore is an in-memory Store for unit tests. TTLs are ignored.
type MockStore struct {
	mu   sync.Mutex
	data map[string][]byte

	PutErr error
	GetErr error
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]byte)}
}

func (m *MockStore) PutJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *MockStore) GetJSON(_ context.Context, key string, dest any) error {
	if m.GetErr != nil {
		return m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return domain.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *MockStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Has reports whether a key is present, for cleanup assertions.
func (m *MockStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

var _ Store = (*MockStore)(nil)
