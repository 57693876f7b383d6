package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

type MockAdSelector struct {
	mock.Mock
}

var _ interface {
	Select(ctx context.Context, position domain.Position, req domain.RequestContext, maxAds int) []*domain.Advertisement
} = (*MockAdSelector)(nil)

func (m *MockAdSelector) Select(ctx context.Context, position domain.Position, req domain.RequestContext, maxAds int) []*domain.Advertisement {
	args := m.Called(ctx, position, req, maxAds)
	if args.Get(0) == nil {
		return []*domain.Advertisement{}
	}
	return args.Get(0).([]*domain.Advertisement)
}

type MockTrackingService struct {
	mock.Mock
}

var _ interface {
	Track(ctx context.Context, adID uuid.UUID, req *domain.TrackEventRequest, userAgent string) error
	Click(ctx context.Context, adID uuid.UUID, meta domain.EventMeta) (string, error)
	RecordImpressions(ads []*domain.Advertisement, meta domain.EventMeta)
} = (*MockTrackingService)(nil)

func (m *MockTrackingService) Track(ctx context.Context, adID uuid.UUID, req *domain.TrackEventRequest, userAgent string) error {
	args := m.Called(ctx, adID, req, userAgent)
	return args.Error(0)
}

func (m *MockTrackingService) Click(ctx context.Context, adID uuid.UUID, meta domain.EventMeta) (string, error) {
	args := m.Called(ctx, adID, meta)
	return args.String(0), args.Error(1)
}

func (m *MockTrackingService) RecordImpressions(ads []*domain.Advertisement, meta domain.EventMeta) {
	m.Called(ads, meta)
}

type MockEventRecorder struct {
	mock.Mock
}

func (m *MockEventRecorder) Record(adID uuid.UUID, eventType domain.EventType, meta domain.EventMeta) bool {
	args := m.Called(adID, eventType, meta)
	return args.Bool(0)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetPerformance(ctx context.Context, adID uuid.UUID, days int) (*domain.AdPerformance, error) {
	args := m.Called(ctx, adID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdPerformance), args.Error(1)
}

func (m *MockAnalyticsService) GetEventHistory(ctx context.Context, adID uuid.UUID, page, pageSize int) (*domain.EventHistory, error) {
	args := m.Called(ctx, adID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventHistory), args.Error(1)
}
