package ims

import (
	"context"
	"sync"

	"github.com/shelfcheck/item-audit/internal/domain"
)

// MockClient is a hand-written, in-memory implementation of Client used in
// unit tests. No mock-generation library needed.
type MockClient struct {
	mu    sync.Mutex
	items map[string]*domain.Item

	// Updates records every item passed to Update, in call order.
	Updates []*domain.Item

	// FailFetches makes the next N Fetch calls return TransientErr before
	// succeeding, to exercise the bounded retry policy.
	FailFetches  int
	TransientErr error

	UpdateErr error
}

func NewMockClient() *MockClient {
	return &MockClient{items: make(map[string]*domain.Item)}
}

// Put seeds the mock with an item, keyed by barcode.
func (m *MockClient) Put(item *domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *item
	m.items[item.Barcode] = &clone
}

func (m *MockClient) Fetch(_ context.Context, _, barcode string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailFetches > 0 {
		m.FailFetches--
		return nil, m.TransientErr
	}

	item, ok := m.items[barcode]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *MockClient) Update(_ context.Context, _ string, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	clone := *item
	m.items[item.Barcode] = &clone
	m.Updates = append(m.Updates, &clone)
	return nil
}

var _ Client = (*MockClient)(nil)
