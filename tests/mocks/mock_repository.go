package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

type MockAdRepository struct {
	mock.Mock
}

func (m *MockAdRepository) ListByPosition(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error) {
	args := m.Called(ctx, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Advertisement), args.Error(1)
}

func (m *MockAdRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Advertisement), args.Error(1)
}

type MockSharedAdCache struct {
	mock.Mock
}

func (m *MockSharedAdCache) GetPositionAds(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error) {
	args := m.Called(ctx, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Advertisement), args.Error(1)
}

func (m *MockSharedAdCache) SetPositionAds(ctx context.Context, position domain.Position, ads []*domain.Advertisement, ttl time.Duration) error {
	args := m.Called(ctx, position, ads, ttl)
	return args.Error(0)
}

func (m *MockSharedAdCache) DeletePosition(ctx context.Context, position domain.Position) error {
	args := m.Called(ctx, position)
	return args.Error(0)
}

type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) RecordEvent(ctx context.Context, event *domain.PerformanceEvent) (int64, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPerformanceRepository) GetPerformance(ctx context.Context, adID uuid.UUID, days int) (*domain.AdPerformance, error) {
	args := m.Called(ctx, adID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdPerformance), args.Error(1)
}

func (m *MockPerformanceRepository) GetEventHistory(ctx context.Context, adID uuid.UUID, page, pageSize int) (*domain.EventHistory, error) {
	args := m.Called(ctx, adID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventHistory), args.Error(1)
}
