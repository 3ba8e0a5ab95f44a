package service_test

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockProductsStorage struct {
	mock.Mock
}

func (m *MockProductsStorage) FindCandidates(
	ctx context.Context, q domain.CandidateQuery,
) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

func (m *MockProductsStorage) FindBrands(
	ctx context.Context, term string, limit int,
) ([]domain.Brand, error) {
	args := m.Called(ctx, term, limit)
	bs, _ := args.Get(0).([]domain.Brand)
	return bs, args.Error(1)
}

func (m *MockProductsStorage) FindCategories(
	ctx context.Context, term string, limit int,
) ([]domain.Category, error) {
	args := m.Called(ctx, term, limit)
	cs, _ := args.Get(0).([]domain.Category)
	return cs, args.Error(1)
}

func (m *MockProductsStorage) ListCatalog(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}

type MockSearchEventsStorage struct {
	mock.Mock
}

func (m *MockSearchEventsStorage) StoreSearchEvents(
	ctx context.Context, evts []domain.SearchEvent,
) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

type MockQueryStats struct {
	mock.Mock
}

func (m *MockQueryStats) Searches(query string) (int64, error) {
	args := m.Called(query)
	return args.Get(0).(int64), args.Error(1)
}

type RecordingSink struct {
	mu   sync.Mutex
	evts []domain.SearchEvent
}

func (s *RecordingSink) Submit(evt domain.SearchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evts = append(s.evts, evt)
}

func (s *RecordingSink) Events() []domain.SearchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SearchEvent(nil), s.evts...)
}
