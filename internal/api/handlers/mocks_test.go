package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/price-compare/internal/api/handlers"
	"github.com/donaldgifford/price-compare/internal/gateway"
	domain "github.com/donaldgifford/price-compare/pkg/types"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Search(
	ctx context.Context,
	query string,
	hints *domain.SearchHints,
	lang domain.Language,
) (*domain.SearchResponse, error) {
	args := m.Called(ctx, query, hints, lang)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockBackend) Suggestions(ctx context.Context, query string, lang domain.Language) []string {
	out, _ := m.Called(ctx, query, lang).Get(0).([]string)
	return out
}

func (m *mockBackend) PopularSearches(ctx context.Context, lang domain.Language) []string {
	out, _ := m.Called(ctx, lang).Get(0).([]string)
	return out
}

func (m *mockBackend) Retailers(ctx context.Context) ([]domain.Retailer, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Retailer)
	return out, args.Error(1)
}

func (m *mockBackend) Health(ctx context.Context) (*gateway.HealthStatus, time.Duration, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*gateway.HealthStatus)
	return out, time.Millisecond, args.Error(1)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) List(ctx context.Context) []string {
	out, _ := m.Called(ctx).Get(0).([]string)
	return out
}

func (m *mockHistory) Add(ctx context.Context, query string) {
	m.Called(ctx, query)
}

func (m *mockHistory) Clear(ctx context.Context) {
	m.Called(ctx)
}

// clientHistories hands out one mockHistory per client id.
type clientHistories map[string]*mockHistory

func (c clientHistories) ForClient(id string) handlers.HistoryList {
	return c[id]
}

type staticCache struct {
	retailers []domain.Retailer
	at        time.Time
}

func (s staticCache) Retailers() ([]domain.Retailer, time.Time) {
	return s.retailers, s.at
}
