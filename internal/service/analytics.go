package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

// MaxHistoryPage bounds the event history offset.
const MaxHistoryPage = 10000

type PerformanceReader interface {
	GetPerformance(ctx context.Context, adID uuid.UUID, days int) (*domain.AdPerformance, error)
	GetEventHistory(ctx context.Context, adID uuid.UUID, page, pageSize int) (*domain.EventHistory, error)
}

type AnalyticsService struct {
	repo PerformanceReader
}

func NewAnalyticsService(repo PerformanceReader) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) GetPerformance(ctx context.Context, adID uuid.UUID, days int) (*domain.AdPerformance, error) {
	if days <= 0 || days > 365 {
		return nil, fmt.Errorf("%w: days must be between 1 and 365", ErrValidation)
	}

	perf, err := s.repo.GetPerformance(ctx, adID, days)
	if err != nil {
		if errors.Is(err, domain.ErrAdNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get ad performance: %w", err)
	}

	return perf, nil
}

func (s *AnalyticsService) GetEventHistory(ctx context.Context, adID uuid.UUID, page, pageSize int) (*domain.EventHistory, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxHistoryPage {
		return nil, fmt.Errorf("%w: page must not exceed %d", ErrValidation, MaxHistoryPage)
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	history, err := s.repo.GetEventHistory(ctx, adID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get event history: %w", err)
	}

	return history, nil
}
