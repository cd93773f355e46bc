package staging

import "context"

// InstrumentedStore decorates a Store with an upsert callback so the
// staging metric lives in main's wiring, keeping checks metrics-agnostic.
type InstrumentedStore struct {
	Store
	onUpsert func(checkName string)
}

func NewInstrumentedStore(inner Store, onUpsert func(checkName string)) *InstrumentedStore {
	if onUpsert == nil {
		onUpsert = func(string) {}
	}
	return &InstrumentedStore{Store: inner, onUpsert: onUpsert}
}

func (s *InstrumentedStore) Upsert(ctx context.Context, checkName, barcode string) error {
	if err := s.Store.Upsert(ctx, checkName, barcode); err != nil {
		return err
	}
	s.onUpsert(checkName)
	return nil
}
